// Package sequencer implements the HAL command sequencer (C10): it
// receives the resource opcodes the bytecode interpreter does not
// execute itself (hal.allocate, hal.copy, dispatch, hal.barrier,
// hal.signal_fence, hal.wait_fence) and submits them to a
// hal/device.CommandQueue, batching consecutive dispatch/copy commands
// that have no intervening synchronization point into a single
// SubmissionBatch the way a real command buffer would.
package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/ireelog"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/vm/interp"
)

// byteElementType is the element type hal.allocate's raw buffers are
// viewed as: I8 gives a 1-byte element size so Shape directly names a
// byte count.
const byteElementType = types.I8

// Sequencer implements interp.Sequencer against a single device queue.
// It satisfies the interface by value of its pointer receiver methods;
// vm/interp never imports this package (the dependency runs the other
// way), keeping the split between C9 and C10 a one-way seam.
type Sequencer struct {
	dev   device.Device
	queue device.CommandQueue

	mu      sync.Mutex
	pending []device.Command
	fenceN  uint64

	fencesMu sync.Mutex
	fences   map[*buffer.Buffer]device.Fence
}

// New returns a Sequencer submitting to queueIndex on dev.
func New(dev device.Device, queueIndex int) (*Sequencer, error) {
	q, err := dev.Queue(queueIndex)
	if err != nil {
		return nil, err
	}
	return &Sequencer{
		dev:    dev,
		queue:  q,
		fences: make(map[*buffer.Buffer]device.Fence),
	}, nil
}

var _ interp.Sequencer = (*Sequencer)(nil)

// Allocate services hal.allocate. Allocation is synchronous host-side
// work regardless of queue backend, so it bypasses the pending batch
// entirely rather than waiting for the next flush.
func (s *Sequencer) Allocate(ctx context.Context, typeIndex uint8) (buffer.View, error) {
	const defaultAllocationBytes = 4096
	buf, err := s.dev.Allocator().Allocate(buffer.DeviceVisible|buffer.HostVisible, buffer.UsageDispatch, defaultAllocationBytes)
	if err != nil {
		return buffer.View{}, err
	}
	return buffer.View{Buf: buf, ElementType: byteElementType, Shape: []int32{defaultAllocationBytes}, ByteOffset: 0, ByteLength: defaultAllocationBytes}, nil
}

func (s *Sequencer) enqueue(cmd device.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, cmd)
}

// DeviceCopy services hal.copy, appending one Command per transfer to
// the pending batch.
func (s *Sequencer) DeviceCopy(ctx context.Context, transfers []interp.CopyTransfer) error {
	for _, t := range transfers {
		s.enqueue(device.Command{Kind: device.CommandCopy, Src: t.Src, Dst: t.Dst})
	}
	return nil
}

// Dispatch services dispatch, appending a Command to the pending batch.
func (s *Sequencer) Dispatch(ctx context.Context, dispatchOrdinal uint32, exportOrdinal uint16, workload []int64, inputs, outputs []buffer.View) error {
	s.enqueue(device.Command{
		Kind:          device.CommandDispatch,
		ExportOrdinal: exportOrdinal,
		Workload:      workload,
		Inputs:        inputs,
		Outputs:       outputs,
	})
	return nil
}

// Barrier services hal.barrier: it flushes the pending batch to the
// queue and waits for it to drain, the sequencer's synchronization
// point.
func (s *Sequencer) Barrier(ctx context.Context) error {
	return s.flush(ctx)
}

func (s *Sequencer) flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := device.SubmissionBatch{Commands: s.pending}
	s.pending = nil
	s.fenceN++
	fenceValue := s.fenceN
	s.mu.Unlock()

	ireelog.Default().Debugf("sequencer: submitting batch of %d commands at fence %d", len(batch.Commands), fenceValue)
	if err := s.queue.Submit([]device.SubmissionBatch{batch}, fenceValue); err != nil {
		return err
	}
	if err := s.queue.Flush(); err != nil {
		return err
	}
	deadline := time.Time{}
	if dl, ok := ctx.Deadline(); ok {
		deadline = dl
	}
	return s.queue.WaitIdle(deadline)
}

func (s *Sequencer) fenceFor(v buffer.View) device.Fence {
	s.fencesMu.Lock()
	defer s.fencesMu.Unlock()
	f, ok := s.fences[v.Buf]
	if !ok {
		f = device.NewLocalFence()
		s.fences[v.Buf] = f
	}
	return f
}

// SignalFence services hal.signal_fence.
func (s *Sequencer) SignalFence(ctx context.Context, slot buffer.View, value uint64) error {
	s.fenceFor(slot).Signal(value)
	return nil
}

// WaitFence services hal.wait_fence, the sequencer's blocking yield
// point: it flushes anything pending first so the wait cannot deadlock
// on work this fiber itself hasn't submitted yet.
func (s *Sequencer) WaitFence(ctx context.Context, slot buffer.View, value uint64) error {
	if err := s.flush(ctx); err != nil {
		return err
	}
	fence := s.fenceFor(slot)
	for {
		if err := ctx.Err(); err != nil {
			return status.Wrap(status.Cancelled, err, "wait_fence cancelled")
		}
		err := fence.Wait(value, time.Now().Add(10*time.Millisecond))
		if err == nil {
			return nil
		}
		if status.Is(err, status.DeadlineExceeded) {
			continue
		}
		return err
	}
}
