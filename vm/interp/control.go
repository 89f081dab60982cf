package interp

import (
	"context"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/kernel"
	"github.com/monkeyking/iree/vm/stack"
)

func (it *Interpreter) execCmpI(frame *stack.Frame, instr bytecode.Instruction) error {
	pred := instr.Operands[0].CmpIPred
	lhsSlot := instr.Operands[1].Slot
	rhsSlot := instr.Operands[2].Slot
	resultSlot := instr.Operands[3].Slot
	return it.cmpPredicate(frame, kernel.CmpOp(pred), lhsSlot, rhsSlot, resultSlot)
}

func (it *Interpreter) execCmpF(frame *stack.Frame, instr bytecode.Instruction) error {
	pred := instr.Operands[0].CmpFPred
	lhsSlot := instr.Operands[1].Slot
	rhsSlot := instr.Operands[2].Slot
	resultSlot := instr.Operands[3].Slot
	return it.cmpPredicate(frame, kernel.CmpOp(pred), lhsSlot, rhsSlot, resultSlot)
}

func (it *Interpreter) cmpPredicate(frame *stack.Frame, op kernel.CmpOp, lhsSlot, rhsSlot, resultSlot uint16) error {
	lhs, err := it.getView(frame, lhsSlot)
	if err != nil {
		return err
	}
	rhs, err := it.getView(frame, rhsSlot)
	if err != nil {
		return err
	}
	dstView, err := it.allocView(types.I8, lhs.Shape)
	if err != nil {
		return err
	}
	lb, err := lhs.Bytes()
	if err != nil {
		return err
	}
	rb, err := rhs.Bytes()
	if err != nil {
		return err
	}
	db, err := dstView.Bytes()
	if err != nil {
		return err
	}
	if err := kernel.Compare(op, lhs.ElementType, db, lb, rb); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execCall(ctx context.Context, st *stack.Stack, frame *stack.Frame, instr bytecode.Instruction) error {
	ordinal := instr.Operands[0].FunctionOrdinal
	argSlots := instr.Operands[1].Slots
	resultSlots := instr.Operands[2].Slots

	callee, err := it.module.FunctionTable.Function(ordinal)
	if err != nil {
		return err
	}
	return it.doCall(ctx, st, frame, callee, argSlots, resultSlots)
}

func (it *Interpreter) execCallIndirect(ctx context.Context, st *stack.Stack, frame *stack.Frame, instr bytecode.Instruction) error {
	fnSlot := instr.Operands[0].Slot
	argSlots := instr.Operands[1].Slots
	resultSlots := instr.Operands[2].Slots

	fnView, err := it.getView(frame, fnSlot)
	if err != nil {
		return err
	}
	b, err := fnView.Bytes()
	if err != nil {
		return err
	}
	if len(b) < 4 {
		return status.New(status.InvalidArgument, "call.indirect target slot does not hold a 32-bit function ordinal")
	}
	ordinal := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	callee, err := it.module.FunctionTable.Function(ordinal)
	if err != nil {
		return err
	}
	return it.doCall(ctx, st, frame, callee, argSlots, resultSlots)
}

func (it *Interpreter) execCallImport(ctx context.Context, frame *stack.Frame, instr bytecode.Instruction) error {
	ordinal := instr.Operands[0].ImportOrdinal
	argSlots := instr.Operands[1].Slots
	resultSlots := instr.Operands[2].Slots

	imp, err := it.module.FunctionTable.Import(ordinal)
	if err != nil {
		return err
	}
	args, err := it.readSlots(frame, argSlots)
	if err != nil {
		return err
	}

	cb, ok := it.imports[imp.Name]
	if !ok {
		return status.New(status.Unimplemented, "no host binding registered for import %q", imp.Name)
	}
	results, err := cb(ctx, args)
	if err != nil {
		return err
	}
	return it.writeResults(frame, resultSlots, results)
}

func (it *Interpreter) doCall(ctx context.Context, st *stack.Stack, frame *stack.Frame, callee *bytecode.FunctionDef, argSlots, resultSlots []uint16) error {
	args, err := it.readSlots(frame, argSlots)
	if err != nil {
		return err
	}
	results, err := it.invokeOn(ctx, st, callee, args)
	if err != nil {
		return err
	}
	return it.writeResults(frame, resultSlots, results)
}

func (it *Interpreter) writeResults(frame *stack.Frame, slots []uint16, views []buffer.View) error {
	if len(slots) != len(views) {
		return status.New(status.InvalidArgument, "call site expects %d results, callee returned %d", len(slots), len(views))
	}
	for i, slot := range slots {
		if err := it.setView(frame, slot, views[i]); err != nil {
			return err
		}
	}
	return nil
}
