package bytecode

import "github.com/monkeyking/iree/hal/types"

// ConstantOperand is the decoded form of the Constant operand encoding:
// a type index, rank, dims, constant encoding tag (dense/splat), and the
// payload bytes (N x element_size, N = element count for dense, 1 for
// splat).
type ConstantOperand struct {
	Type     types.Type
	Shape    types.Shape
	Encoding ConstantEncoding
	Data     []byte
}

// Operand is the decoded form of one operand in an instruction's
// operand list. Exactly the fields relevant to Kind are populated; the
// rest are left zero. This mirrors the union the wire grammar encodes
// positionally — each opcode's OpcodeTable entry fixes the expected
// Kind sequence so there is never ambiguity about which field to read.
type Operand struct {
	Kind OperandEncoding

	Slot      uint16   // InputSlot, OutputSlot, ResultSlot
	Slots     []uint16 // VariadicInputSlots, VariadicOutputSlots, VariadicResultSlots
	Transfers [][2]uint16 // VariadicTransferSlots: (src, dst) pairs

	Constant ConstantOperand // Constant

	FunctionOrdinal uint32 // FunctionOrdinal
	DispatchOrdinal uint32 // DispatchOrdinal
	ExportOrdinal   uint16 // DispatchOrdinal
	ImportOrdinal   uint32 // ImportOrdinal
	BlockOffset     uint32 // BlockOffset

	TypeIndex uint8 // TypeIndex

	Index     int32   // Index
	IndexList []int32 // IndexList

	CmpIPred CmpIPredicate // CmpIPredicate
	CmpFPred CmpFPredicate // CmpFPredicate
}

// Instruction is a fully decoded instruction: its opcode, the byte
// offset it started at, and its operand list in wire order.
type Instruction struct {
	Opcode   Opcode
	Offset   int
	Operands []Operand
}

// SlotOperand returns the slot of the index-th InputSlot/OutputSlot/
// ResultSlot operand (counted in wire order), and false if the
// instruction has fewer slot operands than that.
func (i Instruction) SlotOperand(index int) (uint16, bool) {
	n := 0
	for _, op := range i.Operands {
		switch op.Kind {
		case EncInputSlot, EncOutputSlot, EncResultSlot:
			if n == index {
				return op.Slot, true
			}
			n++
		}
	}
	return 0, false
}
