package bytecode

import (
	"encoding/binary"

	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// Decoder is a streaming cursor over a BytecodeDef's contents. It never
// reads past the declared length; any short read produces OutOfRange.
// It is shared verbatim by execution and disassembly (C8): execution
// calls DecodeInstruction directly, disassembly additionally renders the
// "results = mnemonic operands" two-pass order via formatInstruction.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for decoding starting at offset 0.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Pos reports the current byte offset.
func (d *Decoder) Pos() int { return d.pos }

// Seek moves the cursor to an absolute offset (used for branch targets).
func (d *Decoder) Seek(offset int) error {
	if offset < 0 || offset > len(d.buf) {
		return status.New(status.OutOfRange, "seek to %d out of range for %d byte stream", offset, len(d.buf))
	}
	d.pos = offset
	return nil
}

// AtEnd reports whether the cursor has consumed the whole stream.
func (d *Decoder) AtEnd() bool { return d.pos >= len(d.buf) }

func (d *Decoder) require(n int) error {
	if d.pos+n > len(d.buf) {
		return status.New(status.OutOfRange, "short read: need %d bytes at offset %d, have %d", n, d.pos, len(d.buf)-d.pos)
	}
	return nil
}

func (d *Decoder) readU8() (uint8, error) {
	if err := d.require(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) readU16() (uint16, error) {
	if err := d.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *Decoder) readU32() (uint32, error) {
	if err := d.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *Decoder) readI32() (int32, error) {
	v, err := d.readU32()
	return int32(v), err
}

func (d *Decoder) readBytes(n int) ([]byte, error) {
	if err := d.require(n); err != nil {
		return nil, err
	}
	v := d.buf[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

// PeekOpcode reads the next instruction's leading opcode byte without
// consuming it or its operands, for callers that need to branch on
// opcode before deciding how to handle it.
func (d *Decoder) PeekOpcode() (Opcode, error) {
	if err := d.require(1); err != nil {
		return 0, err
	}
	return Opcode(d.buf[d.pos]), nil
}

// DecodeInstruction reads one full instruction starting at the cursor:
// the opcode byte, then every operand dictated by that opcode's
// OpcodeTable entry, in wire order. Execution calls this directly
// (skipping the textual two-pass order disassembly uses).
func (d *Decoder) DecodeInstruction() (Instruction, error) {
	start := d.pos
	opByte, err := d.readU8()
	if err != nil {
		return Instruction{}, err
	}
	op := Opcode(opByte)
	info, ok := OpcodeTable[op]
	if !ok {
		return Instruction{}, status.New(status.InvalidArgument, "unknown opcode %d at offset %d", op, start)
	}

	operands := make([]Operand, 0, len(info.Operands))
	for _, enc := range info.Operands {
		operand, err := d.decodeOperand(enc)
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, operand)
	}

	return Instruction{Opcode: op, Offset: start, Operands: operands}, nil
}

func (d *Decoder) decodeOperand(enc OperandEncoding) (Operand, error) {
	switch enc {
	case EncInputSlot, EncOutputSlot, EncResultSlot:
		slot, err := d.readU16()
		return Operand{Kind: enc, Slot: slot}, err

	case EncVariadicInputSlots, EncVariadicOutputSlots, EncVariadicResultSlots:
		count, err := d.readU8()
		if err != nil {
			return Operand{}, err
		}
		slots := make([]uint16, count)
		for i := range slots {
			slots[i], err = d.readU16()
			if err != nil {
				return Operand{}, err
			}
		}
		return Operand{Kind: enc, Slots: slots}, nil

	case EncVariadicTransferSlots:
		count, err := d.readU8()
		if err != nil {
			return Operand{}, err
		}
		transfers := make([][2]uint16, count)
		for i := range transfers {
			src, err := d.readU16()
			if err != nil {
				return Operand{}, err
			}
			dst, err := d.readU16()
			if err != nil {
				return Operand{}, err
			}
			transfers[i] = [2]uint16{src, dst}
		}
		return Operand{Kind: enc, Transfers: transfers}, nil

	case EncConstant:
		return d.decodeConstant()

	case EncFunctionOrdinal:
		v, err := d.readU32()
		return Operand{Kind: enc, FunctionOrdinal: v}, err

	case EncDispatchOrdinal:
		dispatch, err := d.readU32()
		if err != nil {
			return Operand{}, err
		}
		export, err := d.readU16()
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: enc, DispatchOrdinal: dispatch, ExportOrdinal: export}, nil

	case EncImportOrdinal:
		v, err := d.readU32()
		return Operand{Kind: enc, ImportOrdinal: v}, err

	case EncBlockOffset:
		v, err := d.readU32()
		return Operand{Kind: enc, BlockOffset: v}, err

	case EncTypeIndex:
		v, err := d.readU8()
		return Operand{Kind: enc, TypeIndex: v}, err

	case EncIndex:
		v, err := d.readI32()
		return Operand{Kind: enc, Index: v}, err

	case EncIndexList:
		count, err := d.readU8()
		if err != nil {
			return Operand{}, err
		}
		list := make([]int32, count)
		for i := range list {
			list[i], err = d.readI32()
			if err != nil {
				return Operand{}, err
			}
		}
		return Operand{Kind: enc, IndexList: list}, nil

	case EncCmpIPredicate:
		v, err := d.readU8()
		return Operand{Kind: enc, CmpIPred: CmpIPredicate(v)}, err

	case EncCmpFPredicate:
		v, err := d.readU8()
		return Operand{Kind: enc, CmpFPred: CmpFPredicate(v)}, err

	default:
		return Operand{}, status.New(status.InvalidArgument, "unknown operand encoding %d", enc)
	}
}

func (d *Decoder) decodeConstant() (Operand, error) {
	typeIdx, err := d.readU8()
	if err != nil {
		return Operand{}, err
	}
	typ, err := types.FromTypeIndex(typeIdx)
	if err != nil {
		return Operand{}, err
	}
	rank, err := d.readU8()
	if err != nil {
		return Operand{}, err
	}
	shape := make(types.Shape, rank)
	for i := range shape {
		v, err := d.readI32()
		if err != nil {
			return Operand{}, err
		}
		shape[i] = v
	}
	encByte, err := d.readU8()
	if err != nil {
		return Operand{}, err
	}
	enc := ConstantEncoding(encByte)

	var count int64
	switch enc {
	case Dense:
		count = shape.ElementCount()
	case Splat:
		count = 1
	default:
		return Operand{}, status.New(status.InvalidArgument, "unknown constant encoding %d", encByte)
	}

	elemSize := typ.ElementSize()
	data, err := d.readBytes(int(count) * elemSize)
	if err != nil {
		return Operand{}, err
	}
	// Copy so callers holding onto the Operand aren't aliasing the
	// decoder's backing array past its lifetime expectations.
	owned := make([]byte, len(data))
	copy(owned, data)

	return Operand{Kind: EncConstant, Constant: ConstantOperand{Type: typ, Shape: shape, Encoding: enc, Data: owned}}, nil
}
