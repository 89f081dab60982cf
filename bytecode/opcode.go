package bytecode

// Opcode is the single byte that begins every instruction.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpConst
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAbs
	OpMulAdd
	OpNot
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpExp
	OpLog
	OpRsqrt
	OpCos
	OpSin
	OpTanh
	OpAtan2
	OpMin
	OpMax
	OpClamp
	OpFloor
	OpCeil
	OpConvert
	OpCompareEQ
	OpCompareNE
	OpCompareLT
	OpCompareLE
	OpCompareGT
	OpCompareGE
	OpCopy
	OpSelect
	OpTranspose
	OpPad
	OpReverse
	OpBroadcast
	OpTile
	OpMatMul
	OpReduceSum
	OpReduceMin
	OpReduceMax
	OpBranch
	OpCondBranch
	OpCmpI
	OpCmpF
	OpReturn
	OpCall
	OpCallIndirect
	OpCallImport
	OpDispatch
	OpDispatchIndirect
	OpAllocate
	OpDeviceCopy
	OpBarrier
	OpSignalFence
	OpWaitFence
)

// OperandEncoding enumerates the closed set of operand shapes an
// opcode's entry in the opcode table can be built from, in wire order.
type OperandEncoding int

const (
	EncNone OperandEncoding = iota
	EncInputSlot
	EncOutputSlot
	EncResultSlot
	EncVariadicInputSlots
	EncVariadicOutputSlots
	EncVariadicResultSlots
	EncVariadicTransferSlots
	EncConstant
	EncFunctionOrdinal
	EncDispatchOrdinal
	EncImportOrdinal
	EncBlockOffset
	EncTypeIndex
	EncIndex
	EncIndexList
	EncCmpIPredicate
	EncCmpFPredicate
)

// OpcodeInfo is one opcode table entry: a mnemonic for disassembly and
// the ordered operand encodings, terminated implicitly by the slice end
// (the wire grammar's "kNone terminates the list" is represented in Go
// as simply ending the slice; EncNone is never placed mid-list).
type OpcodeInfo struct {
	Mnemonic string
	Operands []OperandEncoding
}

// CmpIPredicate enumerates integer comparison predicates for CmpI.
type CmpIPredicate uint8

const (
	CmpIEq CmpIPredicate = iota
	CmpINe
	CmpILt
	CmpILe
	CmpIGt
	CmpIGe
)

// CmpFPredicate enumerates float comparison predicates for CmpF.
type CmpFPredicate uint8

const (
	CmpFEq CmpFPredicate = iota
	CmpFNe
	CmpFLt
	CmpFLe
	CmpFGt
	CmpFGe
)

// slots builds the common "N input slots then (optionally) a result
// slot" operand shape most kernel opcodes share.
func slots(n int, withResult bool) []OperandEncoding {
	out := make([]OperandEncoding, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, EncInputSlot)
	}
	if withResult {
		out = append(out, EncResultSlot)
	}
	return out
}

// OpcodeTable is the closed table of every opcode's mnemonic and operand
// shape, indexed by Opcode.
var OpcodeTable = map[Opcode]OpcodeInfo{
	OpNop:   {"nop", nil},
	OpConst: {"const", []OperandEncoding{EncConstant, EncResultSlot}},

	OpAdd:    {"add", slots(2, true)},
	OpSub:    {"sub", slots(2, true)},
	OpMul:    {"mul", slots(2, true)},
	OpDiv:    {"div", slots(2, true)},
	OpAbs:    {"abs", slots(1, true)},
	OpMulAdd: {"muladd", slots(3, true)},

	OpNot: {"not", slots(1, true)},
	OpAnd: {"and", slots(2, true)},
	OpOr:  {"or", slots(2, true)},
	OpXor: {"xor", slots(2, true)},
	OpShl: {"shl", slots(2, true)},
	OpShr: {"shr", slots(2, true)},

	OpExp:   {"exp", slots(1, true)},
	OpLog:   {"log", slots(1, true)},
	OpRsqrt: {"rsqrt", slots(1, true)},
	OpCos:   {"cos", slots(1, true)},
	OpSin:   {"sin", slots(1, true)},
	OpTanh:  {"tanh", slots(1, true)},
	OpAtan2: {"atan2", slots(2, true)},

	OpMin:   {"min", slots(2, true)},
	OpMax:   {"max", slots(2, true)},
	OpClamp: {"clamp", slots(3, true)},
	OpFloor: {"floor", slots(1, true)},
	OpCeil:  {"ceil", slots(1, true)},

	OpConvert: {"convert", []OperandEncoding{EncInputSlot, EncTypeIndex, EncResultSlot}},

	OpCompareEQ: {"cmp_eq", slots(2, true)},
	OpCompareNE: {"cmp_ne", slots(2, true)},
	OpCompareLT: {"cmp_lt", slots(2, true)},
	OpCompareLE: {"cmp_le", slots(2, true)},
	OpCompareGT: {"cmp_gt", slots(2, true)},
	OpCompareGE: {"cmp_ge", slots(2, true)},

	OpCopy: {"copy", slots(1, true)},
	OpSelect: {"select", slots(3, true)},
	OpTranspose: {"transpose", []OperandEncoding{EncInputSlot, EncIndexList, EncResultSlot}},
	OpPad: {"pad", []OperandEncoding{EncInputSlot, EncInputSlot, EncIndexList, EncIndexList, EncIndexList, EncResultSlot}},
	OpReverse: {"reverse", []OperandEncoding{EncInputSlot, EncIndexList, EncResultSlot}},
	OpBroadcast: {"broadcast", []OperandEncoding{EncInputSlot, EncIndexList, EncResultSlot}},
	OpTile: {"tile", []OperandEncoding{EncInputSlot, EncIndexList, EncResultSlot}},

	OpMatMul: {"matmul", []OperandEncoding{EncInputSlot, EncInputSlot, EncInputSlot, EncInputSlot, EncInputSlot, EncResultSlot}},

	OpReduceSum: {"reduce_sum", []OperandEncoding{EncInputSlot, EncInputSlot, EncIndex, EncResultSlot}},
	OpReduceMin: {"reduce_min", []OperandEncoding{EncInputSlot, EncInputSlot, EncIndex, EncResultSlot}},
	OpReduceMax: {"reduce_max", []OperandEncoding{EncInputSlot, EncInputSlot, EncIndex, EncResultSlot}},

	OpBranch:     {"branch", []OperandEncoding{EncBlockOffset}},
	OpCondBranch: {"cond_branch", []OperandEncoding{EncInputSlot, EncBlockOffset, EncBlockOffset}},
	OpCmpI:       {"cmp_i", []OperandEncoding{EncCmpIPredicate, EncInputSlot, EncInputSlot, EncResultSlot}},
	OpCmpF:       {"cmp_f", []OperandEncoding{EncCmpFPredicate, EncInputSlot, EncInputSlot, EncResultSlot}},
	OpReturn:     {"return", []OperandEncoding{EncVariadicInputSlots}},
	OpCall:       {"call", []OperandEncoding{EncFunctionOrdinal, EncVariadicInputSlots, EncVariadicResultSlots}},
	OpCallIndirect: {"call.indirect", []OperandEncoding{EncInputSlot, EncVariadicInputSlots, EncVariadicResultSlots}},
	OpCallImport: {"call.import", []OperandEncoding{EncImportOrdinal, EncVariadicInputSlots, EncVariadicResultSlots}},

	OpDispatch:         {"dispatch", []OperandEncoding{EncDispatchOrdinal, EncVariadicInputSlots, EncVariadicInputSlots, EncVariadicOutputSlots}},
	OpDispatchIndirect: {"dispatch.indirect", []OperandEncoding{EncInputSlot, EncDispatchOrdinal, EncVariadicInputSlots, EncVariadicInputSlots, EncVariadicOutputSlots}},
	OpAllocate:         {"hal.allocate", []OperandEncoding{EncIndex, EncResultSlot}},
	OpDeviceCopy:       {"hal.copy", []OperandEncoding{EncVariadicTransferSlots}},
	OpBarrier:          {"hal.barrier", nil},
	OpSignalFence:      {"hal.signal_fence", []OperandEncoding{EncInputSlot, EncIndex}},
	OpWaitFence:        {"hal.wait_fence", []OperandEncoding{EncInputSlot, EncIndex}},
}

// Mnemonic returns an opcode's disassembly name, or "unknown" if it is
// not present in OpcodeTable.
func (o Opcode) Mnemonic() string {
	if info, ok := OpcodeTable[o]; ok {
		return info.Mnemonic
	}
	return "unknown"
}
