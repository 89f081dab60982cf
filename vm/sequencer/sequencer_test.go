package sequencer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/allocator"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/hal/executable"
	"github.com/monkeyking/iree/vm/interp"
)

type recordingQueue struct {
	submitted []device.SubmissionBatch
	flushes   int
	waits     int
}

func (q *recordingQueue) Submit(batches []device.SubmissionBatch, fenceValue uint64) error {
	q.submitted = append(q.submitted, batches...)
	return nil
}
func (q *recordingQueue) Flush() error                     { q.flushes++; return nil }
func (q *recordingQueue) WaitIdle(time.Time) error         { q.waits++; return nil }
func (q *recordingQueue) CurrentFenceValue() uint64        { return 0 }

type fakeAllocator struct{}

func (fakeAllocator) Allocate(memoryType buffer.MemoryType, usage buffer.BufferUsage, size int64) (*buffer.Buffer, error) {
	return buffer.New(memoryType, usage, make([]byte, size), nil), nil
}
func (fakeAllocator) CanUseBufferLike(allocator.Allocator, buffer.MemoryType, buffer.BufferUsage, buffer.BufferUsage) bool {
	return true
}
func (fakeAllocator) Statistics() allocator.Statistics { return allocator.Statistics{} }

type fakeDevice struct {
	queue *recordingQueue
	alloc allocator.Allocator
}

func (d *fakeDevice) Info() device.Info                   { return device.Info{ID: "fake"} }
func (d *fakeDevice) Allocator() allocator.Allocator       { return d.alloc }
func (d *fakeDevice) ExecutableCache() executable.Cache    { return nil }
func (d *fakeDevice) QueueCount() int                      { return 1 }
func (d *fakeDevice) Queue(int) (device.CommandQueue, error) { return d.queue, nil }

func newTestSequencer(t *testing.T) (*Sequencer, *recordingQueue) {
	t.Helper()
	q := &recordingQueue{}
	dev := &fakeDevice{queue: q, alloc: fakeAllocator{}}
	seq, err := New(dev, 0)
	require.NoError(t, err)
	return seq, q
}

func TestDispatchAndCopyBatchUntilBarrier(t *testing.T) {
	seq, q := newTestSequencer(t)
	ctx := context.Background()

	require.NoError(t, seq.Dispatch(ctx, 0, 0, nil, nil, nil))
	require.NoError(t, seq.Dispatch(ctx, 0, 1, nil, nil, nil))
	require.NoError(t, seq.DeviceCopy(ctx, []interp.CopyTransfer{{}}))
	require.Empty(t, q.submitted, "commands must not reach the queue before a sync point")

	require.NoError(t, seq.Barrier(ctx))
	require.Len(t, q.submitted, 1)
	require.Len(t, q.submitted[0].Commands, 3)
	require.Equal(t, 1, q.flushes)
	require.Equal(t, 1, q.waits)
}

func TestBarrierWithNoPendingWorkIsNoop(t *testing.T) {
	seq, q := newTestSequencer(t)
	require.NoError(t, seq.Barrier(context.Background()))
	require.Empty(t, q.submitted)
	require.Equal(t, 0, q.flushes)
}

func TestSignalAndWaitFence(t *testing.T) {
	seq, _ := newTestSequencer(t)
	ctx := context.Background()

	buf, err := seq.Allocate(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, seq.SignalFence(ctx, buf, 5))
	require.NoError(t, seq.WaitFence(ctx, buf, 5))
}

func TestWaitFenceRespectsCancellation(t *testing.T) {
	seq, _ := newTestSequencer(t)
	buf, err := seq.Allocate(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = seq.WaitFence(ctx, buf, 1)
	require.Error(t, err)
}
