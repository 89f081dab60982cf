// Package buffer implements the reference-counted Buffer and the
// non-owning BufferView overlay (C2). Buffers are opaque byte regions
// annotated with MemoryType/BufferUsage bitfields; views add an element
// type, shape, and byte range on top of a buffer without owning it.
package buffer

import (
	"sync/atomic"

	"github.com/monkeyking/iree/internal/status"
)

// MemoryType is a bitfield describing where and how a buffer's memory
// can be accessed.
type MemoryType uint32

const (
	HostLocal MemoryType = 1 << iota
	DeviceLocal
	DeviceVisible
	HostVisible
	HostCoherent
	HostCached
)

func (m MemoryType) Has(bit MemoryType) bool { return m&bit != 0 }

// BufferUsage is a bitfield describing what a buffer may be used for.
type BufferUsage uint32

const (
	UsageTransfer BufferUsage = 1 << iota
	UsageMapping
	UsageDispatch
	UsageConstant
)

func (u BufferUsage) Has(bit BufferUsage) bool { return u&bit != 0 }

// Releaser is implemented by whatever minted a Buffer's memory; Release
// is invoked exactly once, when the buffer's reference count reaches
// zero. The host allocator (hal/allocator/host) implements this.
type Releaser interface {
	ReleaseBuffer(b *Buffer)
}

// Buffer is an owned byte region of known length, shared by reference
// count. The last holder to release it triggers memory reclamation
// through the allocator that minted it.
type Buffer struct {
	memoryType MemoryType
	usage      BufferUsage
	data       []byte

	allocator Releaser
	device    any // *device.Device, kept as any to avoid an import cycle

	refs atomic.Int64
}

// New wraps data (already sized to device_size_t length) as a Buffer
// with one outstanding reference, owned for release purposes by
// allocator.
func New(memoryType MemoryType, usage BufferUsage, data []byte, allocator Releaser) *Buffer {
	b := &Buffer{memoryType: memoryType, usage: usage, data: data, allocator: allocator}
	b.refs.Store(1)
	return b
}

// MemoryType reports the buffer's memory-type bitfield.
func (b *Buffer) MemoryType() MemoryType { return b.memoryType }

// Usage reports the buffer's usage bitfield.
func (b *Buffer) Usage() BufferUsage { return b.usage }

// Length reports the buffer's byte length.
func (b *Buffer) Length() int { return len(b.data) }

// Bytes exposes the raw backing storage. Callers must respect the usage
// flags established at creation; the buffer enforces no synchronization
// itself.
func (b *Buffer) Bytes() []byte { return b.data }

// Device returns the owning device, if any. It is typed any to avoid
// hal/buffer depending on hal/device; callers type-assert.
func (b *Buffer) Device() any { return b.device }

// SetDevice records the owning device pointer. The host allocator does
// not call it, so buffers it mints report a nil Device.
func (b *Buffer) SetDevice(d any) { b.device = d }

// Retain increments the reference count and returns b for chaining.
func (b *Buffer) Retain() *Buffer {
	b.refs.Add(1)
	return b
}

// Release decrements the reference count. When it reaches zero the
// buffer's memory is returned to its allocator.
func (b *Buffer) Release() {
	if b.refs.Add(-1) == 0 && b.allocator != nil {
		b.allocator.ReleaseBuffer(b)
	}
}

// RefCount reports the current outstanding reference count, primarily
// for tests and diagnostics.
func (b *Buffer) RefCount() int64 { return b.refs.Load() }

// Slice returns a sub-range of the buffer's bytes, validating bounds.
func (b *Buffer) Slice(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(b.data) {
		return nil, status.New(status.OutOfRange, "buffer slice [%d:%d] out of bounds for length %d", offset, offset+length, len(b.data))
	}
	return b.data[offset : offset+length], nil
}
