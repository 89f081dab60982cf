package device

import (
	"sync"
	"time"

	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/internal/status"
)

// CommandKind enumerates the HAL command types a sequencer may batch
// into a SubmissionBatch.
type CommandKind int

const (
	CommandAllocate CommandKind = iota
	CommandCopy
	CommandDispatch
	CommandBarrier
)

// Command is a single HAL work item: a dispatch's executable+workload,
// a copy's src/dst, or a barrier marker. Fields not relevant to Kind are
// left zero.
type Command struct {
	Kind CommandKind

	// Dispatch fields.
	ExecutableFormat uint32
	ExportOrdinal    uint16
	Workload         []int64
	Inputs           []buffer.View
	Outputs          []buffer.View

	// Copy fields.
	Src buffer.View
	Dst buffer.View
}

// SubmissionBatch is a group of commands with no intervening
// synchronization, submitted to a single queue together.
type SubmissionBatch struct {
	Commands []Command
}

// CommandQueue accepts submissions from any thread; ordering within a
// single queue follows submission order. Fences enforce cross-queue
// ordering.
type CommandQueue interface {
	// Submit enqueues batches, to be signaled complete at fenceValue.
	Submit(batches []SubmissionBatch, fenceValue uint64) error
	// Flush forces any buffered submissions out to the device.
	Flush() error
	// WaitIdle blocks until the queue has drained, or deadline passes.
	WaitIdle(deadline time.Time) error
	// CurrentFenceValue reports the highest fence value known complete.
	CurrentFenceValue() uint64
}

// Fence is a HAL ordering primitive over a monotonically increasing
// uint64 value, with a deadline-bearing wait.
type Fence interface {
	Signal(value uint64)
	Wait(value uint64, deadline time.Time) error
}

// NewLocalFence returns a Fence implementation suitable for an
// in-process HAL backend (the interpreter-backed executable cache):
// signaling stores the value under a mutex, and waiting polls it every
// millisecond until it is reached or the deadline passes, rather than
// using a real device interrupt.
func NewLocalFence() Fence {
	return &localFence{}
}

type localFence struct {
	mu      sync.Mutex
	current uint64
}

func (f *localFence) Signal(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value > f.current {
		f.current = value
	}
}

func (f *localFence) Wait(value uint64, deadline time.Time) error {
	for {
		f.mu.Lock()
		cur := f.current
		f.mu.Unlock()
		if cur >= value {
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return status.New(status.DeadlineExceeded, "fence wait for value %d timed out", value)
		}
		time.Sleep(time.Millisecond)
	}
}
