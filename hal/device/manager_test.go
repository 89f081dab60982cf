package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/allocator"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/executable"
)

type fakeCache struct {
	formats map[executable.Format]bool
}

func (c *fakeCache) CanPrepareFormat(f executable.Format) bool { return c.formats[f] }
func (c *fakeCache) PrepareExecutable(executable.CachingMode, executable.Spec) (executable.Executable, error) {
	return nil, nil
}

type fakeAllocator struct{}

func (fakeAllocator) Allocate(memoryType buffer.MemoryType, usage buffer.BufferUsage, size int64) (*buffer.Buffer, error) {
	return buffer.New(memoryType, usage, make([]byte, size), nil), nil
}
func (fakeAllocator) CanUseBufferLike(allocator.Allocator, buffer.MemoryType, buffer.BufferUsage, buffer.BufferUsage) bool {
	return true
}
func (fakeAllocator) Statistics() allocator.Statistics { return allocator.Statistics{} }

type fakeDevice struct {
	id    string
	cache *fakeCache
}

func (d *fakeDevice) Info() Info                { return Info{ID: d.id, Name: d.id} }
func (d *fakeDevice) Allocator() allocator.Allocator { return fakeAllocator{} }
func (d *fakeDevice) ExecutableCache() executable.Cache { return d.cache }
func (d *fakeDevice) QueueCount() int            { return 1 }
func (d *fakeDevice) Queue(int) (CommandQueue, error) { return nil, nil }

const (
	formatA executable.Format = 1
	formatB executable.Format = 2
)

func TestResolvePlacementPrefersHigherRankedFormat(t *testing.T) {
	m := NewManager()
	devA := &fakeDevice{id: "a", cache: &fakeCache{formats: map[executable.Format]bool{formatB: true}}}
	devB := &fakeDevice{id: "b", cache: &fakeCache{formats: map[executable.Format]bool{formatA: true}}}
	require.NoError(t, m.RegisterDevice(devA))
	require.NoError(t, m.RegisterDevice(devB))

	p, err := m.ResolvePlacement(PlacementSpec{AvailableFormats: []executable.Format{formatA, formatB}})
	require.NoError(t, err)
	require.Equal(t, "b", p.Device.Info().ID)
}

func TestResolvePlacementTiesFavorFirstRegistered(t *testing.T) {
	m := NewManager()
	devA := &fakeDevice{id: "a", cache: &fakeCache{formats: map[executable.Format]bool{formatA: true}}}
	devB := &fakeDevice{id: "b", cache: &fakeCache{formats: map[executable.Format]bool{formatA: true}}}
	require.NoError(t, m.RegisterDevice(devA))
	require.NoError(t, m.RegisterDevice(devB))

	p, err := m.ResolvePlacement(PlacementSpec{AvailableFormats: []executable.Format{formatA}})
	require.NoError(t, err)
	require.Equal(t, "a", p.Device.Info().ID)
}

func TestResolvePlacementNoQualifyingDevice(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterDevice(&fakeDevice{id: "a", cache: &fakeCache{}}))
	_, err := m.ResolvePlacement(PlacementSpec{AvailableFormats: []executable.Format{formatA}})
	require.Error(t, err)
}

func TestRegisterDeviceRejectsDuplicate(t *testing.T) {
	m := NewManager()
	d := &fakeDevice{id: "a", cache: &fakeCache{}}
	require.NoError(t, m.RegisterDevice(d))
	require.Error(t, m.RegisterDevice(d))
}

func TestUnregisterDeviceIsIdempotent(t *testing.T) {
	m := NewManager()
	d := &fakeDevice{id: "a", cache: &fakeCache{}}
	require.NoError(t, m.RegisterDevice(d))
	m.UnregisterDevice(d)
	require.Empty(t, m.Devices())
	m.UnregisterDevice(d) // no-op, must not panic
}
