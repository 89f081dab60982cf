package local

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/vm/interp"
)

// Queue runs every submitted batch synchronously on the calling
// goroutine: Submit does the work itself rather than enqueueing it for
// a worker, so Flush/WaitIdle are trivial once Submit returns.
type Queue struct {
	module *bytecode.Module
	interp *interp.Interpreter

	mu          sync.Mutex
	fenceValue  atomic.Uint64
}

func newQueue(module *bytecode.Module, it *interp.Interpreter) *Queue {
	return &Queue{module: module, interp: it}
}

// Submit executes every command in every batch, in order, then records
// fenceValue as complete.
func (q *Queue) Submit(batches []device.SubmissionBatch, fenceValue uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, batch := range batches {
		for _, cmd := range batch.Commands {
			if err := q.execCommand(cmd); err != nil {
				return err
			}
		}
	}
	if fenceValue > q.fenceValue.Load() {
		q.fenceValue.Store(fenceValue)
	}
	return nil
}

func (q *Queue) execCommand(cmd device.Command) error {
	switch cmd.Kind {
	case device.CommandCopy:
		src, err := cmd.Src.Bytes()
		if err != nil {
			return err
		}
		dst, err := cmd.Dst.Bytes()
		if err != nil {
			return err
		}
		if len(src) != len(dst) {
			return status.New(status.InvalidArgument, "hal.copy length mismatch: src %d dst %d", len(src), len(dst))
		}
		copy(dst, src)
		return nil

	case device.CommandDispatch:
		ordinal, err := q.exportedFunctionOrdinal(cmd.ExportOrdinal)
		if err != nil {
			return err
		}
		fn, err := q.module.FunctionTable.Function(ordinal)
		if err != nil {
			return err
		}
		results, err := q.interp.Invoke(context.Background(), fn, cmd.Inputs)
		if err != nil {
			return err
		}
		if len(results) != len(cmd.Outputs) {
			return status.New(status.InvalidArgument, "dispatch export %d produced %d results, %d output slots provided", cmd.ExportOrdinal, len(results), len(cmd.Outputs))
		}
		for i, r := range results {
			rb, err := r.Bytes()
			if err != nil {
				return err
			}
			ob, err := cmd.Outputs[i].Bytes()
			if err != nil {
				return err
			}
			copy(ob, rb)
		}
		return nil

	case device.CommandBarrier:
		return nil

	case device.CommandAllocate:
		// Allocation is serviced directly by the sequencer against the
		// device allocator; it never reaches the queue as a Command in
		// this backend.
		return status.New(status.FailedPrecondition, "unexpected Allocate command reached the local queue")

	default:
		return status.New(status.Unimplemented, "unknown command kind %d", cmd.Kind)
	}
}

func (q *Queue) exportedFunctionOrdinal(exportOrdinal uint16) (uint32, error) {
	if int(exportOrdinal) >= len(q.module.FunctionTable.Exports) {
		return 0, status.New(status.OutOfRange, "export ordinal %d out of range", exportOrdinal)
	}
	return q.module.FunctionTable.Exports[exportOrdinal], nil
}

// Flush is a no-op: Submit already ran every command synchronously.
func (q *Queue) Flush() error { return nil }

// WaitIdle is a no-op for the same reason.
func (q *Queue) WaitIdle(deadline time.Time) error { return nil }

// CurrentFenceValue reports the highest fence value passed to Submit.
func (q *Queue) CurrentFenceValue() uint64 { return q.fenceValue.Load() }

var _ device.CommandQueue = (*Queue)(nil)
