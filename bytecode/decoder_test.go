package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/types"
)

func buildConstAddProgram(t *testing.T) []byte {
	t.Helper()
	e := NewEncoder()

	require.NoError(t, e.Emit(Instruction{Opcode: OpConst, Operands: []Operand{
		{Kind: EncConstant, Constant: ConstantOperand{Type: types.I32, Shape: types.Shape{4}, Encoding: Dense, Data: i32le(1, 2, 3, 4)}},
		{Kind: EncResultSlot, Slot: 0},
	}}))
	require.NoError(t, e.Emit(Instruction{Opcode: OpConst, Operands: []Operand{
		{Kind: EncConstant, Constant: ConstantOperand{Type: types.I32, Shape: types.Shape{4}, Encoding: Dense, Data: i32le(10, 20, 30, 40)}},
		{Kind: EncResultSlot, Slot: 1},
	}}))
	require.NoError(t, e.Emit(Instruction{Opcode: OpAdd, Operands: []Operand{
		{Kind: EncInputSlot, Slot: 0},
		{Kind: EncInputSlot, Slot: 1},
		{Kind: EncResultSlot, Slot: 2},
	}}))
	require.NoError(t, e.Emit(Instruction{Opcode: OpReturn, Operands: []Operand{
		{Kind: EncVariadicInputSlots, Slots: []uint16{2}},
	}}))
	return e.Bytes()
}

func i32le(vals ...int32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		var b [4]byte
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
		out = append(out, b[:]...)
	}
	return out
}

func TestDecodeRoundTrip(t *testing.T) {
	raw := buildConstAddProgram(t)

	d := NewDecoder(raw)
	var instrs []Instruction
	for !d.AtEnd() {
		instr, err := d.DecodeInstruction()
		require.NoError(t, err)
		instrs = append(instrs, instr)
	}
	require.Len(t, instrs, 4)

	// decode . encode == identity: re-encode the decoded instructions and
	// compare to the original bytes.
	e := NewEncoder()
	for _, instr := range instrs {
		require.NoError(t, e.Emit(instr))
	}
	require.Equal(t, raw, e.Bytes())
}

func TestDecodeRejectsEveryTruncation(t *testing.T) {
	raw := buildConstAddProgram(t)

	for n := 0; n < len(raw); n++ {
		prefix := raw[:n]
		d := NewDecoder(prefix)
		var err error
		for !d.AtEnd() {
			_, err = d.DecodeInstruction()
			if err != nil {
				break
			}
		}
		require.Error(t, err, "prefix length %d should fail to decode", n)
	}
}

func TestDisassemble(t *testing.T) {
	raw := buildConstAddProgram(t)
	out, err := Disassemble(raw, nil)
	require.NoError(t, err)
	require.Contains(t, out, "const")
	require.Contains(t, out, "add")
	require.Contains(t, out, "return")
}
