package interp

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/bytecode"
	hostalloc "github.com/monkeyking/iree/hal/allocator/host"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/types"
)

func i32le(vals ...int32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		out = append(out, b[:]...)
	}
	return out
}

// buildConstAddProgram mirrors bytecode.buildConstAddProgram: two I32x4
// constants added together and returned.
func buildConstAddProgram(t *testing.T) []byte {
	t.Helper()
	e := bytecode.NewEncoder()
	require.NoError(t, e.Emit(bytecode.Instruction{Opcode: bytecode.OpConst, Operands: []bytecode.Operand{
		{Kind: bytecode.EncConstant, Constant: bytecode.ConstantOperand{Type: types.I32, Shape: types.Shape{4}, Encoding: bytecode.Dense, Data: i32le(1, 2, 3, 4)}},
		{Kind: bytecode.EncResultSlot, Slot: 0},
	}}))
	require.NoError(t, e.Emit(bytecode.Instruction{Opcode: bytecode.OpConst, Operands: []bytecode.Operand{
		{Kind: bytecode.EncConstant, Constant: bytecode.ConstantOperand{Type: types.I32, Shape: types.Shape{4}, Encoding: bytecode.Dense, Data: i32le(10, 20, 30, 40)}},
		{Kind: bytecode.EncResultSlot, Slot: 1},
	}}))
	require.NoError(t, e.Emit(bytecode.Instruction{Opcode: bytecode.OpAdd, Operands: []bytecode.Operand{
		{Kind: bytecode.EncInputSlot, Slot: 0},
		{Kind: bytecode.EncInputSlot, Slot: 1},
		{Kind: bytecode.EncResultSlot, Slot: 2},
	}}))
	require.NoError(t, e.Emit(bytecode.Instruction{Opcode: bytecode.OpReturn, Operands: []bytecode.Operand{
		{Kind: bytecode.EncVariadicInputSlots, Slots: []uint16{2}},
	}}))
	return e.Bytes()
}

func TestInvokeConstAdd(t *testing.T) {
	fn := &bytecode.FunctionDef{
		Ordinal: 0,
		Name:    "const_add",
		Signature: bytecode.TypeSignature{
			Results: []bytecode.TypeRef{{IsMemRef: true, Element: types.I32, Shape: types.Shape{4}}},
		},
		Bytecode: &bytecode.BytecodeDef{Contents: buildConstAddProgram(t)},
	}
	module := &bytecode.Module{FunctionTable: bytecode.FunctionTable{Functions: []bytecode.FunctionDef{*fn}}}

	it := New(module, hostalloc.New(), nil, 0)
	results, err := it.Invoke(context.Background(), fn, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	out, err := results[0].Bytes()
	require.NoError(t, err)

	var got [4]int32
	for i := range got {
		got[i] = int32(binary.LittleEndian.Uint32(out[i*4 : i*4+4]))
	}
	require.Equal(t, [4]int32{11, 22, 33, 44}, got)
}

func TestInvokeReportsUnimplementedImport(t *testing.T) {
	fn := &bytecode.FunctionDef{Ordinal: 0, Name: "unbound_import"}
	module := &bytecode.Module{FunctionTable: bytecode.FunctionTable{Functions: []bytecode.FunctionDef{*fn}}}

	it := New(module, hostalloc.New(), nil, 0)
	_, err := it.Invoke(context.Background(), fn, nil)
	require.Error(t, err)
}

func TestRegisterImportIsInvoked(t *testing.T) {
	fn := &bytecode.FunctionDef{Ordinal: 0, Name: "host_fn"}
	module := &bytecode.Module{FunctionTable: bytecode.FunctionTable{Functions: []bytecode.FunctionDef{*fn}}}

	it := New(module, hostalloc.New(), nil, 0)
	called := false
	it.RegisterImport("host_fn", func(ctx context.Context, args []buffer.View) ([]buffer.View, error) {
		called = true
		return nil, nil
	})
	_, err := it.Invoke(context.Background(), fn, nil)
	require.NoError(t, err)
	require.True(t, called)
}
