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

// execInstruction executes one already-decoded, non-Return instruction
// against frame. It reports whether frame.PC was rewritten by a branch
// (so the caller's sequential advance should be skipped).
func (it *Interpreter) execInstruction(ctx context.Context, st *stack.Stack, frame *stack.Frame, instr bytecode.Instruction) (bool, error) {
	switch instr.Opcode {
	case bytecode.OpNop:
		return false, nil

	case bytecode.OpConst:
		view, err := it.materializeConstant(instr.Operands[0].Constant)
		if err != nil {
			return false, err
		}
		return false, it.setView(frame, instr.Operands[1].Slot, view)

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv,
		bytecode.OpMin, bytecode.OpMax, bytecode.OpAnd, bytecode.OpOr, bytecode.OpXor,
		bytecode.OpShl, bytecode.OpShr, bytecode.OpAtan2:
		return false, it.execBinary(frame, instr)

	case bytecode.OpAbs, bytecode.OpNot, bytecode.OpExp, bytecode.OpLog, bytecode.OpRsqrt,
		bytecode.OpCos, bytecode.OpSin, bytecode.OpTanh, bytecode.OpFloor, bytecode.OpCeil,
		bytecode.OpCopy:
		return false, it.execUnary(frame, instr)

	case bytecode.OpMulAdd, bytecode.OpClamp, bytecode.OpSelect:
		return false, it.execTernary(frame, instr)

	case bytecode.OpConvert:
		return false, it.execConvert(frame, instr)

	case bytecode.OpCompareEQ, bytecode.OpCompareNE, bytecode.OpCompareLT,
		bytecode.OpCompareLE, bytecode.OpCompareGT, bytecode.OpCompareGE:
		return false, it.execCompare(frame, instr)

	case bytecode.OpTranspose:
		return false, it.execTranspose(frame, instr)
	case bytecode.OpReverse:
		return false, it.execReverse(frame, instr)
	case bytecode.OpPad:
		return false, it.execPad(frame, instr)
	case bytecode.OpBroadcast:
		return false, it.execBroadcast(frame, instr)
	case bytecode.OpTile:
		return false, it.execTile(frame, instr)

	case bytecode.OpReduceSum, bytecode.OpReduceMin, bytecode.OpReduceMax:
		return false, it.execReduce(frame, instr)

	case bytecode.OpMatMul:
		return false, it.execMatMul(frame, instr)

	case bytecode.OpBranch:
		frame.PC = int(instr.Operands[0].BlockOffset)
		return true, nil

	case bytecode.OpCondBranch:
		return it.execCondBranch(frame, instr)

	case bytecode.OpCmpI:
		return false, it.execCmpI(frame, instr)
	case bytecode.OpCmpF:
		return false, it.execCmpF(frame, instr)

	case bytecode.OpCall:
		return false, it.execCall(ctx, st, frame, instr)
	case bytecode.OpCallIndirect:
		return false, it.execCallIndirect(ctx, st, frame, instr)
	case bytecode.OpCallImport:
		return false, it.execCallImport(ctx, frame, instr)

	case bytecode.OpDispatch, bytecode.OpDispatchIndirect:
		return false, it.execDispatch(ctx, frame, instr)
	case bytecode.OpAllocate:
		return false, it.execAllocate(ctx, frame, instr)
	case bytecode.OpDeviceCopy:
		return false, it.execDeviceCopy(ctx, frame, instr)
	case bytecode.OpBarrier:
		if it.seq == nil {
			return false, status.New(status.FailedPrecondition, "hal.barrier requires a sequencer")
		}
		return false, it.seq.Barrier(ctx)
	case bytecode.OpSignalFence:
		return false, it.execSignalFence(ctx, frame, instr)
	case bytecode.OpWaitFence:
		return false, it.execWaitFence(ctx, frame, instr)

	default:
		return false, status.New(status.Unimplemented, "opcode %s not implemented by the interpreter", instr.Opcode.Mnemonic())
	}
}

type elementwiseFn func(typ types.Type, dst, lhs, rhs []byte) error

var binaryKernels = map[bytecode.Opcode]elementwiseFn{
	bytecode.OpAdd:  kernel.Add,
	bytecode.OpSub:  kernel.Sub,
	bytecode.OpMul:  kernel.Mul,
	bytecode.OpDiv:  kernel.Div,
	bytecode.OpMin:  kernel.Min,
	bytecode.OpMax:  kernel.Max,
	bytecode.OpAnd:  kernel.And,
	bytecode.OpOr:   kernel.Or,
	bytecode.OpXor:  kernel.Xor,
	bytecode.OpShl:  kernel.ShiftLeft,
	bytecode.OpShr:  kernel.ShiftRight,
	bytecode.OpAtan2: kernel.Atan2,
}

func (it *Interpreter) execBinary(frame *stack.Frame, instr bytecode.Instruction) error {
	lhsSlot, _ := instr.SlotOperand(0)
	rhsSlot, _ := instr.SlotOperand(1)
	resultSlot, _ := instr.SlotOperand(2)

	lhs, err := it.getView(frame, lhsSlot)
	if err != nil {
		return err
	}
	rhs, err := it.getView(frame, rhsSlot)
	if err != nil {
		return err
	}
	dstView, err := it.allocView(lhs.ElementType, lhs.Shape)
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
	fn := binaryKernels[instr.Opcode]
	if err := fn(lhs.ElementType, db, lb, rb); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

type unaryFn func(typ types.Type, dst, src []byte) error

var unaryKernels = map[bytecode.Opcode]unaryFn{
	bytecode.OpAbs:   kernel.Abs,
	bytecode.OpNot:   kernel.Not,
	bytecode.OpExp:   kernel.Exp,
	bytecode.OpLog:   kernel.Log,
	bytecode.OpRsqrt: kernel.Rsqrt,
	bytecode.OpCos:   kernel.Cos,
	bytecode.OpSin:   kernel.Sin,
	bytecode.OpTanh:  kernel.Tanh,
	bytecode.OpFloor: kernel.Floor,
	bytecode.OpCeil:  kernel.Ceil,
}

func (it *Interpreter) execUnary(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot, _ := instr.SlotOperand(0)
	resultSlot, _ := instr.SlotOperand(1)

	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	dstView, err := it.allocView(src.ElementType, src.Shape)
	if err != nil {
		return err
	}
	sb, err := src.Bytes()
	if err != nil {
		return err
	}
	db, err := dstView.Bytes()
	if err != nil {
		return err
	}

	if instr.Opcode == bytecode.OpCopy {
		copy(db, sb)
		return it.setView(frame, resultSlot, dstView)
	}

	fn := unaryKernels[instr.Opcode]
	if err := fn(src.ElementType, db, sb); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execTernary(frame *stack.Frame, instr bytecode.Instruction) error {
	aSlot, _ := instr.SlotOperand(0)
	bSlot, _ := instr.SlotOperand(1)
	cSlot, _ := instr.SlotOperand(2)
	resultSlot, _ := instr.SlotOperand(3)

	a, err := it.getView(frame, aSlot)
	if err != nil {
		return err
	}
	b, err := it.getView(frame, bSlot)
	if err != nil {
		return err
	}
	c, err := it.getView(frame, cSlot)
	if err != nil {
		return err
	}

	var elemType types.Type
	var shape types.Shape
	if instr.Opcode == bytecode.OpSelect {
		elemType, shape = b.ElementType, b.Shape
	} else {
		elemType, shape = a.ElementType, a.Shape
	}
	dstView, err := it.allocView(elemType, shape)
	if err != nil {
		return err
	}
	ab, err := a.Bytes()
	if err != nil {
		return err
	}
	bb, err := b.Bytes()
	if err != nil {
		return err
	}
	cb, err := c.Bytes()
	if err != nil {
		return err
	}
	db, err := dstView.Bytes()
	if err != nil {
		return err
	}

	switch instr.Opcode {
	case bytecode.OpMulAdd:
		if err := kernel.MulAdd(elemType, db, ab, bb, cb); err != nil {
			return err
		}
	case bytecode.OpClamp:
		if err := kernel.Clamp(elemType, db, ab, bb, cb); err != nil {
			return err
		}
	case bytecode.OpSelect:
		if err := kernel.Select(elemType, db, ab, bb, cb); err != nil {
			return err
		}
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execConvert(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	typeIndex := instr.Operands[1].TypeIndex
	resultSlot := instr.Operands[2].Slot

	dstType, err := types.FromTypeIndex(typeIndex)
	if err != nil {
		return err
	}
	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	dstView, err := it.allocView(dstType, src.Shape)
	if err != nil {
		return err
	}
	sb, err := src.Bytes()
	if err != nil {
		return err
	}
	db, err := dstView.Bytes()
	if err != nil {
		return err
	}
	if err := kernel.Convert(src.ElementType, dstType, db, sb); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

var compareOps = map[bytecode.Opcode]kernel.CmpOp{
	bytecode.OpCompareEQ: kernel.CmpEQ,
	bytecode.OpCompareNE: kernel.CmpNE,
	bytecode.OpCompareLT: kernel.CmpLT,
	bytecode.OpCompareLE: kernel.CmpLE,
	bytecode.OpCompareGT: kernel.CmpGT,
	bytecode.OpCompareGE: kernel.CmpGE,
}

func (it *Interpreter) execCompare(frame *stack.Frame, instr bytecode.Instruction) error {
	lhsSlot, _ := instr.SlotOperand(0)
	rhsSlot, _ := instr.SlotOperand(1)
	resultSlot, _ := instr.SlotOperand(2)

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
	if err := kernel.Compare(compareOps[instr.Opcode], lhs.ElementType, db, lb, rb); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func viewBoolean(v buffer.View) (bool, error) {
	b, err := v.Bytes()
	if err != nil {
		return false, err
	}
	if len(b) == 0 {
		return false, status.New(status.InvalidArgument, "boolean operand view is empty")
	}
	return b[0] != 0, nil
}

func (it *Interpreter) execCondBranch(frame *stack.Frame, instr bytecode.Instruction) (bool, error) {
	condSlot := instr.Operands[0].Slot
	trueTarget := instr.Operands[1].BlockOffset
	falseTarget := instr.Operands[2].BlockOffset

	cond, err := it.getView(frame, condSlot)
	if err != nil {
		return false, err
	}
	truthy, err := viewBoolean(cond)
	if err != nil {
		return false, err
	}
	if truthy {
		frame.PC = int(trueTarget)
	} else {
		frame.PC = int(falseTarget)
	}
	return true, nil
}
