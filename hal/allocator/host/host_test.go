package host

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/buffer"
)

func TestAllocateUseDropReturnsToBaseline(t *testing.T) {
	a := New()
	baseline := a.Statistics()

	b, err := a.Allocate(buffer.HostLocal|buffer.HostVisible, buffer.UsageDispatch, 256)
	require.NoError(t, err)
	require.Equal(t, baseline.OutstandingBuffers+1, a.Statistics().OutstandingBuffers)
	require.Equal(t, baseline.OutstandingBytes+256, a.Statistics().OutstandingBytes)

	copy(b.Bytes(), []byte("hello"))
	b.Release()

	require.Equal(t, baseline, a.Statistics())
}

func TestAllocateAboveMmapThreshold(t *testing.T) {
	a := New()
	b, err := a.Allocate(buffer.HostLocal|buffer.HostVisible, buffer.UsageDispatch, pageThreshold+1)
	require.NoError(t, err)
	require.Equal(t, int(pageThreshold+1), b.Length())
	b.Release()
	require.Equal(t, int64(0), a.Statistics().OutstandingBuffers)
}

func TestAllocateRejectsDeviceLocalOnly(t *testing.T) {
	a := New()
	_, err := a.Allocate(buffer.DeviceLocal, buffer.UsageDispatch, 64)
	require.Error(t, err)
}

func TestRetainDefersRelease(t *testing.T) {
	a := New()
	b, err := a.Allocate(buffer.HostLocal|buffer.HostVisible, buffer.UsageDispatch, 64)
	require.NoError(t, err)

	b.Retain()
	b.Release()
	require.Equal(t, int64(1), a.Statistics().OutstandingBuffers)

	b.Release()
	require.Equal(t, int64(0), a.Statistics().OutstandingBuffers)
}
