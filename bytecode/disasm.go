package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders every instruction in contents as
// "results = mnemonic operands", one per line, consulting srcMap for a
// trailing "; at file:line" comment when available. It shares the exact
// decode path execution uses (Decoder.DecodeInstruction); the only
// difference is the textual "results = mnemonic operands" reordering
// described in §4.5 as the disassembler's two-pass walk.
func Disassemble(contents []byte, srcMap *SourceMap) (string, error) {
	d := NewDecoder(contents)
	var out strings.Builder
	for !d.AtEnd() {
		offset := d.Pos()
		instr, err := d.DecodeInstruction()
		if err != nil {
			return out.String(), err
		}
		out.WriteString(formatInstruction(instr))
		if srcMap != nil {
			if loc, ok := srcMap.Lookup(offset); ok {
				fmt.Fprintf(&out, "  ; %s:%d:%d %s", loc.File, loc.Line, loc.Column, loc.Symbol)
			}
		}
		out.WriteByte('\n')
	}
	return out.String(), nil
}

// formatInstruction performs the two-pass walk: first collecting result
// slots (so they can be printed on the left of "="), then the remaining
// operands in wire order on the right.
func formatInstruction(instr Instruction) string {
	var results []string
	var operands []string

	for _, op := range instr.Operands {
		switch op.Kind {
		case EncResultSlot:
			results = append(results, fmt.Sprintf("%%%d", op.Slot))
		case EncVariadicResultSlots:
			for _, s := range op.Slots {
				results = append(results, fmt.Sprintf("%%%d", s))
			}
		default:
			operands = append(operands, formatOperand(op))
		}
	}

	mnemonic := instr.Opcode.Mnemonic()
	if len(results) == 0 {
		return fmt.Sprintf("%d: %s %s", instr.Offset, mnemonic, strings.Join(operands, " "))
	}
	return fmt.Sprintf("%d: %s = %s %s", instr.Offset, strings.Join(results, ", "), mnemonic, strings.Join(operands, " "))
}

func formatOperand(op Operand) string {
	switch op.Kind {
	case EncInputSlot, EncOutputSlot:
		return fmt.Sprintf("%%%d", op.Slot)
	case EncVariadicInputSlots, EncVariadicOutputSlots:
		parts := make([]string, len(op.Slots))
		for i, s := range op.Slots {
			parts[i] = fmt.Sprintf("%%%d", s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case EncVariadicTransferSlots:
		parts := make([]string, len(op.Transfers))
		for i, t := range op.Transfers {
			parts[i] = fmt.Sprintf("%%%d->%%%d", t[0], t[1])
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case EncConstant:
		return fmt.Sprintf("const<%s>%v", op.Constant.Type.DebugString(), op.Constant.Shape)
	case EncFunctionOrdinal:
		return fmt.Sprintf("@%d", op.FunctionOrdinal)
	case EncDispatchOrdinal:
		return fmt.Sprintf("@%d:%d", op.DispatchOrdinal, op.ExportOrdinal)
	case EncImportOrdinal:
		return fmt.Sprintf("import@%d", op.ImportOrdinal)
	case EncBlockOffset:
		return fmt.Sprintf("->%d", op.BlockOffset)
	case EncTypeIndex:
		return fmt.Sprintf("type(%d)", op.TypeIndex)
	case EncIndex:
		return fmt.Sprintf("%d", op.Index)
	case EncIndexList:
		return fmt.Sprintf("%v", op.IndexList)
	case EncCmpIPredicate:
		return fmt.Sprintf("ipred(%d)", op.CmpIPred)
	case EncCmpFPredicate:
		return fmt.Sprintf("fpred(%d)", op.CmpFPred)
	default:
		return "?"
	}
}
