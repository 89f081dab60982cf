package interp

import (
	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/kernel"
	"github.com/monkeyking/iree/vm/stack"
)

func (it *Interpreter) execTranspose(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	perm := instr.Operands[1].IndexList
	resultSlot := instr.Operands[2].Slot

	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	dstShape := kernel.TransposedShape(src.Shape, perm)
	dstView, err := it.allocView(src.ElementType, dstShape)
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
	if err := kernel.Transpose(src.ElementType.ElementSize(), db, sb, src.Shape, perm); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execReverse(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	dims := instr.Operands[1].IndexList
	resultSlot := instr.Operands[2].Slot

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
	if err := kernel.Reverse(src.ElementType.ElementSize(), db, sb, src.Shape, dims); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execPad(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	paddingValueSlot := instr.Operands[1].Slot
	edgeLow := instr.Operands[2].IndexList
	edgeHigh := instr.Operands[3].IndexList
	interior := instr.Operands[4].IndexList
	resultSlot := instr.Operands[5].Slot

	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	padValueView, err := it.getView(frame, paddingValueSlot)
	if err != nil {
		return err
	}
	paddingValue, err := padValueView.Bytes()
	if err != nil {
		return err
	}

	dstShape := kernel.PaddedShape(src.Shape, edgeLow, edgeHigh, interior)
	dstView, err := it.allocView(src.ElementType, dstShape)
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
	if err := kernel.Pad(src.ElementType.ElementSize(), db, sb, src.Shape, edgeLow, edgeHigh, interior, paddingValue); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execBroadcast(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	targetShape := instr.Operands[1].IndexList
	resultSlot := instr.Operands[2].Slot

	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	dstShape := types.Shape(targetShape)
	dstView, err := it.allocView(src.ElementType, dstShape)
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
	if err := kernel.Broadcast(src.ElementType.ElementSize(), db, sb, src.Shape, dstShape); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execTile(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	repeats := instr.Operands[1].IndexList
	resultSlot := instr.Operands[2].Slot

	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	dstShape := kernel.TiledShape(src.Shape, repeats)
	dstView, err := it.allocView(src.ElementType, dstShape)
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
	if err := kernel.Tile(src.ElementType.ElementSize(), db, sb, src.Shape, repeats); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

var reduceOps = map[bytecode.Opcode]kernel.ReduceOp{
	bytecode.OpReduceSum: kernel.ReduceSum,
	bytecode.OpReduceMin: kernel.ReduceMin,
	bytecode.OpReduceMax: kernel.ReduceMax,
}

func (it *Interpreter) execReduce(frame *stack.Frame, instr bytecode.Instruction) error {
	srcSlot := instr.Operands[0].Slot
	initSlot := instr.Operands[1].Slot
	dim := instr.Operands[2].Index
	resultSlot := instr.Operands[3].Slot

	src, err := it.getView(frame, srcSlot)
	if err != nil {
		return err
	}
	initView, err := it.getView(frame, initSlot)
	if err != nil {
		return err
	}
	initBytes, err := initView.Bytes()
	if err != nil {
		return err
	}
	dstShape := make(types.Shape, len(src.Shape))
	copy(dstShape, src.Shape)
	if int(dim) >= len(dstShape) || dim < 0 {
		return status.New(status.OutOfRange, "reduce: dimension %d out of range for rank %d", dim, len(dstShape))
	}
	dstShape[dim] = 1

	dstView, err := it.allocView(src.ElementType, dstShape)
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
	if err := kernel.Reduce(reduceOps[instr.Opcode], src.ElementType, db, sb, initBytes, src.Shape, dim); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

func (it *Interpreter) execMatMul(frame *stack.Frame, instr bytecode.Instruction) error {
	lhsSlot := instr.Operands[0].Slot
	rhsSlot := instr.Operands[1].Slot
	biasSlot := instr.Operands[2].Slot
	lhsScaleSlot := instr.Operands[3].Slot
	rhsScaleSlot := instr.Operands[4].Slot
	resultSlot := instr.Operands[5].Slot

	lhs, err := it.getView(frame, lhsSlot)
	if err != nil {
		return err
	}
	rhs, err := it.getView(frame, rhsSlot)
	if err != nil {
		return err
	}
	if len(lhs.Shape) != 2 || len(rhs.Shape) != 2 {
		return status.New(status.InvalidArgument, "matmul operands must be rank 2")
	}
	m, k, n := lhs.Shape[0], lhs.Shape[1], rhs.Shape[1]
	if rhs.Shape[0] != k {
		return status.New(status.InvalidArgument, "matmul: inner dimensions %d and %d do not agree", k, rhs.Shape[0])
	}

	bias, lhsScale, rhsScale, err := it.optionalMatmulOperands(frame, biasSlot, lhsScaleSlot, rhsScaleSlot)
	if err != nil {
		return err
	}

	dstView, err := it.allocView(lhs.ElementType, types.Shape{m, n})
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

	rt := kernel.NewRuntimeState(1)
	accType := lhs.ElementType
	if err := kernel.MatMul(rt, lhs.ElementType, accType, db, lb, rb, bias, lhsScale, rhsScale, m, k, n); err != nil {
		return err
	}
	return it.setView(frame, resultSlot, dstView)
}

// optionalMatmulOperands reads the bias/scale slots for matmul, treating
// an empty (zero-length) view as "not provided".
func (it *Interpreter) optionalMatmulOperands(frame *stack.Frame, biasSlot, lhsScaleSlot, rhsScaleSlot uint16) (bias []byte, lhsScale, rhsScale []float32, err error) {
	biasView, err := it.getView(frame, biasSlot)
	if err == nil && biasView.ElementCount() > 0 {
		bias, err = biasView.Bytes()
		if err != nil {
			return nil, nil, nil, err
		}
	}
	lhsScale, err2 := it.scalesOf(frame, lhsScaleSlot)
	if err2 != nil {
		return nil, nil, nil, err2
	}
	rhsScale, err3 := it.scalesOf(frame, rhsScaleSlot)
	if err3 != nil {
		return nil, nil, nil, err3
	}
	return bias, lhsScale, rhsScale, nil
}

func (it *Interpreter) scalesOf(frame *stack.Frame, slot uint16) ([]float32, error) {
	v, err := it.getView(frame, slot)
	if err != nil || v.ElementCount() == 0 {
		return nil, nil
	}
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	return kernel.SpanOfFloat32(b), nil
}
