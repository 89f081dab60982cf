package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/types"
)

func bytesOfI32(vals ...int32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		out[i*4] = byte(v)
		out[i*4+1] = byte(v >> 8)
		out[i*4+2] = byte(v >> 16)
		out[i*4+3] = byte(v >> 24)
	}
	return out
}

func invertPerm(perm []int32) []int32 {
	inv := make([]int32, len(perm))
	for i, p := range perm {
		inv[p] = int32(i)
	}
	return inv
}

func TestTransposeInversePermRoundTrips(t *testing.T) {
	src := bytesOfI32(1, 2, 3, 4, 5, 6) // shape [2,3]
	shape := types.Shape{2, 3}
	perm := []int32{1, 0}

	mid := make([]byte, len(src))
	require.NoError(t, Transpose(4, mid, src, shape, perm))

	permShape := TransposedShape(shape, perm)
	back := make([]byte, len(src))
	require.NoError(t, Transpose(4, back, mid, permShape, invertPerm(perm)))

	require.Equal(t, src, back)
}

func TestReverseIsSelfInverse(t *testing.T) {
	src := bytesOfI32(1, 2, 3, 4, 5, 6, 7, 8)
	shape := types.Shape{2, 4}
	dims := []int32{1}

	mid := make([]byte, len(src))
	require.NoError(t, Reverse(4, mid, src, shape, dims))
	back := make([]byte, len(src))
	require.NoError(t, Reverse(4, back, mid, shape, dims))

	require.Equal(t, src, back)
}

func TestTileRepeatsContent(t *testing.T) {
	src := bytesOfI32(1, 2)
	shape := types.Shape{2}
	repeats := []int32{3}

	dstShape := TiledShape(shape, repeats)
	require.Equal(t, types.Shape{6}, dstShape)

	dst := make([]byte, dstShape.ElementCount()*4)
	require.NoError(t, Tile(4, dst, src, shape, repeats))
	require.Equal(t, bytesOfI32(1, 2, 1, 2, 1, 2), dst)
}

func TestTileRejectsZeroRepeat(t *testing.T) {
	src := bytesOfI32(1, 2)
	dst := make([]byte, 0)
	err := Tile(4, dst, src, types.Shape{2}, []int32{0})
	require.Error(t, err)
}

func TestBroadcastExtendsUnitDimension(t *testing.T) {
	src := bytesOfI32(7)
	dst := make([]byte, 3*4)
	require.NoError(t, Broadcast(4, dst, src, types.Shape{1}, types.Shape{3}))
	require.Equal(t, bytesOfI32(7, 7, 7), dst)
}

func TestPadFillsEdgesWithPaddingValue(t *testing.T) {
	src := bytesOfI32(1, 2)
	shape := types.Shape{2}
	dstShape := PaddedShape(shape, []int32{1}, []int32{1}, []int32{0})
	require.Equal(t, types.Shape{4}, dstShape)

	dst := make([]byte, dstShape.ElementCount()*4)
	require.NoError(t, Pad(4, dst, src, shape, []int32{1}, []int32{1}, []int32{0}, bytesOfI32(0)))
	require.Equal(t, bytesOfI32(0, 1, 2, 0), dst)
}

func TestCopyRegionHonorsOffsets(t *testing.T) {
	src := bytesOfI32(1, 2, 3, 4) // shape [4]
	dst := make([]byte, 4*4)
	srcShape := types.Shape{4}
	dstShape := types.Shape{4}
	require.NoError(t, Copy(4, dst, src, srcShape, dstShape, []int32{1}, []int32{2}, []int32{2}))
	require.Equal(t, bytesOfI32(0, 0, 2, 3), dst)
}
