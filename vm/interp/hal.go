package interp

import (
	"context"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/vm/stack"
)

func (it *Interpreter) execAllocate(ctx context.Context, frame *stack.Frame, instr bytecode.Instruction) error {
	if it.seq == nil {
		return status.New(status.FailedPrecondition, "hal.allocate requires a sequencer")
	}
	typeIndex := instr.Operands[0].Index
	resultSlot := instr.Operands[1].Slot

	view, err := it.seq.Allocate(ctx, uint8(typeIndex))
	if err != nil {
		return err
	}
	return it.setView(frame, resultSlot, view)
}

func (it *Interpreter) execDeviceCopy(ctx context.Context, frame *stack.Frame, instr bytecode.Instruction) error {
	if it.seq == nil {
		return status.New(status.FailedPrecondition, "hal.copy requires a sequencer")
	}
	pairs := instr.Operands[0].Transfers
	transfers := make([]CopyTransfer, len(pairs))
	for i, pair := range pairs {
		src, err := it.getView(frame, pair[0])
		if err != nil {
			return err
		}
		dst, err := it.getView(frame, pair[1])
		if err != nil {
			return err
		}
		transfers[i] = CopyTransfer{Src: src, Dst: dst}
	}
	return it.seq.DeviceCopy(ctx, transfers)
}

func (it *Interpreter) execDispatch(ctx context.Context, frame *stack.Frame, instr bytecode.Instruction) error {
	if it.seq == nil {
		return status.New(status.FailedPrecondition, "dispatch requires a sequencer")
	}
	if instr.Opcode == bytecode.OpDispatchIndirect {
		return status.New(status.Unimplemented, "dispatch.indirect is not supported: no device-local indirection buffer backend is wired")
	}

	dispatchOrdinal := instr.Operands[0].DispatchOrdinal
	exportOrdinal := instr.Operands[0].ExportOrdinal
	workloadSlots := instr.Operands[1].Slots
	inputSlots := instr.Operands[2].Slots
	outputSlots := instr.Operands[3].Slots

	workload := make([]int64, len(workloadSlots))
	for i, slot := range workloadSlots {
		v, err := it.getView(frame, slot)
		if err != nil {
			return err
		}
		b, err := v.Bytes()
		if err != nil {
			return err
		}
		workload[i] = readI64(b)
	}

	inputs, err := it.readSlots(frame, inputSlots)
	if err != nil {
		return err
	}
	outputs, err := it.readSlots(frame, outputSlots)
	if err != nil {
		return err
	}

	return it.seq.Dispatch(ctx, dispatchOrdinal, exportOrdinal, workload, inputs, outputs)
}

func readI64(b []byte) int64 {
	var v int64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= int64(b[i]) << (8 * i)
	}
	return v
}

func (it *Interpreter) execSignalFence(ctx context.Context, frame *stack.Frame, instr bytecode.Instruction) error {
	if it.seq == nil {
		return status.New(status.FailedPrecondition, "hal.signal_fence requires a sequencer")
	}
	fenceSlot := instr.Operands[0].Slot
	value := instr.Operands[1].Index

	fence, err := it.getView(frame, fenceSlot)
	if err != nil {
		return err
	}
	return it.seq.SignalFence(ctx, fence, uint64(value))
}

func (it *Interpreter) execWaitFence(ctx context.Context, frame *stack.Frame, instr bytecode.Instruction) error {
	if it.seq == nil {
		return status.New(status.FailedPrecondition, "hal.wait_fence requires a sequencer")
	}
	fenceSlot := instr.Operands[0].Slot
	value := instr.Operands[1].Index

	fence, err := it.getView(frame, fenceSlot)
	if err != nil {
		return err
	}
	return it.seq.WaitFence(ctx, fence, uint64(value))
}
