package local

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/hal/executable"
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

func constAddModule(t *testing.T) (*bytecode.Module, *bytecode.FunctionDef) {
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

	fn := bytecode.FunctionDef{
		Ordinal: 0,
		Name:    "const_add",
		Signature: bytecode.TypeSignature{
			Results: []bytecode.TypeRef{{IsMemRef: true, Element: types.I32, Shape: types.Shape{4}}},
		},
		Bytecode: &bytecode.BytecodeDef{Contents: e.Bytes()},
	}
	module := &bytecode.Module{
		Version:       bytecode.BytecodeFormatV0,
		FunctionTable: bytecode.FunctionTable{Functions: []bytecode.FunctionDef{fn}, Exports: []uint32{0}},
	}
	return module, &module.FunctionTable.Functions[0]
}

func TestDriverCreateDeviceAndInvoke(t *testing.T) {
	module, fn := constAddModule(t)
	drv := NewDriver(module, 0, 1)

	infos, err := drv.EnumerateAvailableDevices()
	require.NoError(t, err)
	require.Len(t, infos, 1)

	dev, err := drv.CreateDevice(infos[0])
	require.NoError(t, err)

	localDev := dev.(*Device)
	results, err := localDev.Invoke(context.Background(), fn, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	b, err := results[0].Bytes()
	require.NoError(t, err)
	require.Equal(t, i32le(11, 22, 33, 44), b)
}

func TestCreateDeviceRejectsUnknownID(t *testing.T) {
	module, _ := constAddModule(t)
	drv := NewDriver(module, 0, 1)
	_, err := drv.CreateDevice(device.Info{ID: "does-not-exist"})
	require.Error(t, err)
}

func TestExecutableCacheMemoizesUnderAllowPersistentCaching(t *testing.T) {
	module, _ := constAddModule(t)
	cache := newExecutableCache(module)
	require.True(t, cache.CanPrepareFormat(BytecodeFormat))
	require.False(t, cache.CanPrepareFormat(executable.Format(99)))

	spec := executable.Spec{Format: BytecodeFormat, Payload: []byte("module-bytes")}

	a, err := cache.PrepareExecutable(executable.AllowPersistentCaching, spec)
	require.NoError(t, err)
	b, err := cache.PrepareExecutable(executable.AllowPersistentCaching, spec)
	require.NoError(t, err)
	require.Same(t, a, b)

	c, err := cache.PrepareExecutable(executable.CachingMode(0), spec)
	require.NoError(t, err)
	require.NotSame(t, a, c)
}
