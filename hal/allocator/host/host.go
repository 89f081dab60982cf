// Package host implements a HostLocal/HostVisible hal/allocator.Allocator
// backed by the process's own address space. Buffers at or above
// pageThreshold are backed by an anonymous golang.org/x/sys/unix mmap
// region (grounded on ehrlich-b-go-ublk's direct use of golang.org/x/sys
// for low-level memory mapping); smaller buffers come from a plain Go
// byte slice to avoid a syscall per small constant materialization.
package host

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/monkeyking/iree/hal/allocator"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/internal/status"
)

// pageThreshold is the size at or above which allocations go through
// mmap instead of make([]byte, n).
const pageThreshold = 64 * 1024

// Allocator is the host-memory allocator. It is safe for concurrent use.
type Allocator struct {
	mu      sync.Mutex
	mmapped map[*buffer.Buffer]bool

	outstandingBuffers atomic.Int64
	outstandingBytes   atomic.Int64
}

// New constructs a host allocator.
func New() *Allocator {
	return &Allocator{mmapped: make(map[*buffer.Buffer]bool)}
}

// Allocate satisfies hal/allocator.Allocator. It only ever produces
// HostLocal|HostVisible|HostCoherent memory; callers asking for
// DeviceLocal-only memory from this allocator get InvalidArgument since
// a host allocator has no device-local backing store.
func (a *Allocator) Allocate(memoryType buffer.MemoryType, usage buffer.BufferUsage, size int64) (*buffer.Buffer, error) {
	if size < 0 {
		return nil, status.New(status.InvalidArgument, "negative allocation size %d", size)
	}
	if memoryType.Has(buffer.DeviceLocal) && !memoryType.Has(buffer.HostVisible) {
		return nil, status.New(status.InvalidArgument, "host allocator cannot satisfy device-local-only memory type")
	}

	var data []byte
	useMmap := size >= pageThreshold
	if useMmap {
		mapped, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, status.Wrap(status.ResourceExhausted, err, "mmap %d bytes", size)
		}
		data = mapped
	} else {
		data = make([]byte, size)
	}

	b := buffer.New(memoryType|buffer.HostLocal|buffer.HostVisible|buffer.HostCoherent, usage, data, a)

	a.mu.Lock()
	if useMmap {
		a.mmapped[b] = true
	}
	a.mu.Unlock()

	a.outstandingBuffers.Add(1)
	a.outstandingBytes.Add(size)
	return b, nil
}

// ReleaseBuffer implements buffer.Releaser. It is invoked by Buffer.Release
// when the last reference is dropped.
func (a *Allocator) ReleaseBuffer(b *buffer.Buffer) {
	a.mu.Lock()
	wasMmapped := a.mmapped[b]
	delete(a.mmapped, b)
	a.mu.Unlock()

	if wasMmapped {
		_ = unix.Munmap(b.Bytes())
	}

	a.outstandingBuffers.Add(-1)
	a.outstandingBytes.Add(-int64(b.Length()))
}

// CanUseBufferLike reports true whenever the source is also host
// memory; host buffers are always mutually compatible with this
// allocator's usages.
func (a *Allocator) CanUseBufferLike(_ allocator.Allocator, srcMemory buffer.MemoryType, _ buffer.BufferUsage, _ buffer.BufferUsage) bool {
	return srcMemory.Has(buffer.HostVisible)
}

// Statistics reports outstanding allocation counts.
func (a *Allocator) Statistics() allocator.Statistics {
	return allocator.Statistics{
		OutstandingBuffers: a.outstandingBuffers.Load(),
		OutstandingBytes:   a.outstandingBytes.Load(),
	}
}

var _ allocator.Allocator = (*Allocator)(nil)
