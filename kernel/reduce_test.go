package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/types"
)

func TestReduceSumAlongLastDimension(t *testing.T) {
	// shape [2,3]: [[1,2,3],[4,5,6]], reduce dim 1 -> [6, 15]
	src := bytesOfI32(1, 2, 3, 4, 5, 6)
	dst := make([]byte, 2*4)
	require.NoError(t, Reduce(ReduceSum, types.I32, dst, src, bytesOfI32(0), types.Shape{2, 3}, 1))
	require.Equal(t, bytesOfI32(6, 15), dst)
}

func TestReduceMinMax(t *testing.T) {
	src := bytesOfI32(3, -1, 7, 2)
	dstMin := make([]byte, 4)
	dstMax := make([]byte, 4)
	require.NoError(t, Reduce(ReduceMin, types.I32, dstMin, src, bytesOfI32(2147483647), types.Shape{4}, 0))
	require.NoError(t, Reduce(ReduceMax, types.I32, dstMax, src, bytesOfI32(-2147483648), types.Shape{4}, 0))
	require.Equal(t, bytesOfI32(-1), dstMin)
	require.Equal(t, bytesOfI32(7), dstMax)
}

func TestReduceRejectsOutOfRangeDimension(t *testing.T) {
	src := bytesOfI32(1, 2)
	dst := make([]byte, 4)
	err := Reduce(ReduceSum, types.I32, dst, src, bytesOfI32(0), types.Shape{2}, 5)
	require.Error(t, err)
}

func TestReduceHonorsNonIdentityInit(t *testing.T) {
	// A non-zero sum init must fold into every output element, not just
	// be ignored in favor of the operator's natural identity.
	src := bytesOfI32(1, 2, 3, 4, 5, 6)
	dst := make([]byte, 2*4)
	require.NoError(t, Reduce(ReduceSum, types.I32, dst, src, bytesOfI32(100), types.Shape{2, 3}, 1))
	require.Equal(t, bytesOfI32(106, 115), dst)
}
