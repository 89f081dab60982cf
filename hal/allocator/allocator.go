// Package allocator defines the Allocator interface (C3) that produces
// Buffers satisfying a memory/usage requirement, plus the compatibility
// query the DeviceManager uses when resolving placements across devices.
package allocator

import (
	"github.com/monkeyking/iree/hal/buffer"
)

// Statistics reports outstanding allocation counts, a supplement beyond
// the base spec added to make "allocate -> use -> drop returns to
// pre-call baseline" (testable property 8.5) mechanically checkable.
type Statistics struct {
	OutstandingBuffers int64
	OutstandingBytes   int64
}

// Allocator produces buffers satisfying a memory/usage requirement.
type Allocator interface {
	// Allocate returns a new buffer of the given size satisfying
	// memoryType/usage, or a ResourceExhausted/InvalidArgument Status.
	Allocate(memoryType buffer.MemoryType, usage buffer.BufferUsage, size int64) (*buffer.Buffer, error)

	// CanUseBufferLike reports whether a buffer minted by src with the
	// given memory/usage could satisfy intendedUsage on this allocator
	// without a copy.
	CanUseBufferLike(src Allocator, srcMemory buffer.MemoryType, srcUsage buffer.BufferUsage, intendedUsage buffer.BufferUsage) bool

	// Statistics reports current outstanding allocation counts.
	Statistics() Statistics
}
