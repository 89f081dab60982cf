package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/types"
)

func TestConvertSameTypeIsIdentity(t *testing.T) {
	src := bytesOfI32(1, -2, 3)
	dst := make([]byte, len(src))
	require.NoError(t, Convert(types.I32, types.I32, dst, src))
	require.Equal(t, src, dst)
}

func TestConvertNarrowingSaturates(t *testing.T) {
	src := bytesOfI32(300, -300, 10)
	dst := make([]byte, 3)
	require.NoError(t, Convert(types.I32, types.I8, dst, src))
	require.Equal(t, []byte{127, byte(int8(-128)), 10}, dst)
}

func TestConvertFloatToIntTruncatesTowardZero(t *testing.T) {
	src := make([]byte, 8)
	spanOf[float32](src)[0] = 3.9
	spanOf[float32](src)[1] = -3.9
	dst := make([]byte, 8)
	require.NoError(t, Convert(types.F32, types.I32, dst, src))
	got := spanOf[int32](dst)
	require.Equal(t, int32(3), got[0])
	require.Equal(t, int32(-3), got[1])
}

func TestConvertUnknownDestinationTypeFails(t *testing.T) {
	src := bytesOfI32(1)
	dst := make([]byte, 1)
	err := Convert(types.I32, types.Type(255), dst, src)
	require.Error(t, err)
}
