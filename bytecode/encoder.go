package bytecode

import (
	"bytes"
	"encoding/binary"

	"github.com/monkeyking/iree/internal/status"
)

// Encoder builds a BytecodeDef's Contents by appending instructions in
// wire order. It is the inverse of Decoder and is used by tests to
// build fixture programs and to verify the round-trip invariant
// (decode . encode == identity).
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated wire bytes.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Offset reports the current write position, useful for computing
// BlockOffset operand values before all instructions are known.
func (e *Encoder) Offset() int { return e.buf.Len() }

func (e *Encoder) writeU8(v uint8)   { e.buf.WriteByte(v) }
func (e *Encoder) writeU16(v uint16) { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); e.buf.Write(b[:]) }
func (e *Encoder) writeU32(v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); e.buf.Write(b[:]) }
func (e *Encoder) writeI32(v int32)  { e.writeU32(uint32(v)) }

// Emit appends one instruction, validating that the supplied operands
// match instr.Opcode's OpcodeTable shape.
func (e *Encoder) Emit(instr Instruction) error {
	info, ok := OpcodeTable[instr.Opcode]
	if !ok {
		return status.New(status.InvalidArgument, "unknown opcode %d", instr.Opcode)
	}
	if len(info.Operands) != len(instr.Operands) {
		return status.New(status.InvalidArgument, "opcode %s expects %d operands, got %d", info.Mnemonic, len(info.Operands), len(instr.Operands))
	}

	e.writeU8(uint8(instr.Opcode))
	for i, want := range info.Operands {
		op := instr.Operands[i]
		if op.Kind != want {
			return status.New(status.InvalidArgument, "opcode %s operand %d: expected encoding %d, got %d", info.Mnemonic, i, want, op.Kind)
		}
		if err := e.emitOperand(op); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) emitOperand(op Operand) error {
	switch op.Kind {
	case EncInputSlot, EncOutputSlot, EncResultSlot:
		e.writeU16(op.Slot)

	case EncVariadicInputSlots, EncVariadicOutputSlots, EncVariadicResultSlots:
		if len(op.Slots) > 0xFF {
			return status.New(status.InvalidArgument, "variadic slot count %d exceeds u8", len(op.Slots))
		}
		e.writeU8(uint8(len(op.Slots)))
		for _, s := range op.Slots {
			e.writeU16(s)
		}

	case EncVariadicTransferSlots:
		if len(op.Transfers) > 0xFF {
			return status.New(status.InvalidArgument, "variadic transfer count %d exceeds u8", len(op.Transfers))
		}
		e.writeU8(uint8(len(op.Transfers)))
		for _, t := range op.Transfers {
			e.writeU16(t[0])
			e.writeU16(t[1])
		}

	case EncConstant:
		c := op.Constant
		e.writeU8(uint8(c.Type))
		if len(c.Shape) > 0xFF {
			return status.New(status.InvalidArgument, "constant rank %d exceeds u8", len(c.Shape))
		}
		e.writeU8(uint8(len(c.Shape)))
		for _, d := range c.Shape {
			e.writeI32(d)
		}
		e.writeU8(uint8(c.Encoding))
		e.buf.Write(c.Data)

	case EncFunctionOrdinal:
		e.writeU32(op.FunctionOrdinal)

	case EncDispatchOrdinal:
		e.writeU32(op.DispatchOrdinal)
		e.writeU16(op.ExportOrdinal)

	case EncImportOrdinal:
		e.writeU32(op.ImportOrdinal)

	case EncBlockOffset:
		e.writeU32(op.BlockOffset)

	case EncTypeIndex:
		e.writeU8(op.TypeIndex)

	case EncIndex:
		e.writeI32(op.Index)

	case EncIndexList:
		if len(op.IndexList) > 0xFF {
			return status.New(status.InvalidArgument, "index list length %d exceeds u8", len(op.IndexList))
		}
		e.writeU8(uint8(len(op.IndexList)))
		for _, v := range op.IndexList {
			e.writeI32(v)
		}

	case EncCmpIPredicate:
		e.writeU8(uint8(op.CmpIPred))

	case EncCmpFPredicate:
		e.writeU8(uint8(op.CmpFPred))

	default:
		return status.New(status.InvalidArgument, "unknown operand encoding %d", op.Kind)
	}
	return nil
}
