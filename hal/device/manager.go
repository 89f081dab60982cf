package device

import (
	"sync"

	"github.com/monkeyking/iree/hal/allocator"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/executable"
	"github.com/monkeyking/iree/internal/status"
)

// Placement is the opaque (Device, queue_index, score) hint produced by
// Manager.ResolvePlacement and consumed by sequencer dispatch. It must
// not outlive the Device it names.
type Placement struct {
	Device     Device
	QueueIndex int
	Score      int
}

// PlacementSpec describes a placement request. AvailableFormats is an
// ordered list; earlier-listed formats outrank later ones when more
// than one device qualifies.
type PlacementSpec struct {
	AvailableFormats []executable.Format
}

// Manager is the thread-safe registry of devices described in §4.3. All
// reads take a shared lock; all writes take an exclusive one.
type Manager struct {
	mu      sync.RWMutex
	devices []Device
}

// NewManager constructs an empty device manager.
func NewManager() *Manager {
	return &Manager{}
}

// RegisterDevice adds d to the registry. Registering an already
// registered device is idempotent and reports AlreadyExists.
func (m *Manager) RegisterDevice(d Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.devices {
		if existing == d {
			return status.New(status.AlreadyExists, "device %q already registered", d.Info().ID)
		}
	}
	m.devices = append(m.devices, d)
	return nil
}

// UnregisterDevice removes d from the registry. It is idempotent:
// unregistering a device not present is a no-op, not an error.
func (m *Manager) UnregisterDevice(d Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.devices {
		if existing == d {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return
		}
	}
}

// Devices returns a snapshot of the currently registered devices, for
// diagnostics and tests. Mutating the returned slice has no effect on
// the registry.
func (m *Manager) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Device, len(m.devices))
	copy(out, m.devices)
	return out
}

// ResolvePlacement implements the resolution policy of §4.3: iterate
// registered devices in registration order; for each, ask its
// executable cache whether it can prepare any listed format, with
// earlier-listed formats outranking later ones; ties go to the
// first-registered device.
func (m *Manager) ResolvePlacement(spec PlacementSpec) (Placement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bestRank := -1
	var best Device
	for _, d := range m.devices {
		cache := d.ExecutableCache()
		for rank, format := range spec.AvailableFormats {
			if !cache.CanPrepareFormat(format) {
				continue
			}
			// Lower rank index outranks higher; only replace best if
			// strictly better since ties favor the first-registered
			// device already encountered.
			if bestRank == -1 || rank < bestRank {
				bestRank = rank
				best = d
			}
			break
		}
	}

	if best == nil {
		return Placement{}, status.New(status.NotFound, "no registered device can prepare any of the requested executable formats")
	}
	return Placement{Device: best, QueueIndex: 0, Score: len(spec.AvailableFormats) - bestRank}, nil
}

// FindCompatibleAllocator returns an allocator whose buffers satisfy
// every placement's device, or FailedPrecondition if none exists.
func (m *Manager) FindCompatibleAllocator(memoryType buffer.MemoryType, usage buffer.BufferUsage, placements []Placement) (allocator.Allocator, error) {
	if len(placements) == 0 {
		return nil, status.New(status.InvalidArgument, "FindCompatibleAllocator requires at least one placement")
	}

	candidate := placements[0].Device.Allocator()
	for _, p := range placements[1:] {
		other := p.Device.Allocator()
		if !candidate.CanUseBufferLike(other, memoryType, usage, usage) {
			return nil, status.New(status.FailedPrecondition, "no allocator satisfies every given placement")
		}
	}
	return candidate, nil
}

// TryAllocateDeviceVisibleBuffer is the best-effort allocation: it
// always returns a buffer, falling back to host memory when no device
// visibility is possible.
func (m *Manager) TryAllocateDeviceVisibleBuffer(placements []Placement, usage buffer.BufferUsage, size int64, hostFallback allocator.Allocator) (*buffer.Buffer, error) {
	b, err := m.AllocateDeviceVisibleBuffer(placements, usage, size)
	if err == nil {
		return b, nil
	}
	return hostFallback.Allocate(buffer.HostLocal|buffer.HostVisible, usage, size)
}

// AllocateDeviceVisibleBuffer is the strict version: it errors when no
// device-visible allocation is possible across all placements.
func (m *Manager) AllocateDeviceVisibleBuffer(placements []Placement, usage buffer.BufferUsage, size int64) (*buffer.Buffer, error) {
	a, err := m.FindCompatibleAllocator(buffer.DeviceVisible, usage, placements)
	if err != nil {
		return nil, err
	}
	return a.Allocate(buffer.DeviceVisible, usage, size)
}

// AllocateDeviceLocalBuffer is strict and device-local only.
func (m *Manager) AllocateDeviceLocalBuffer(placements []Placement, usage buffer.BufferUsage, size int64) (*buffer.Buffer, error) {
	a, err := m.FindCompatibleAllocator(buffer.DeviceLocal, usage, placements)
	if err != nil {
		return nil, err
	}
	return a.Allocate(buffer.DeviceLocal, usage, size)
}
