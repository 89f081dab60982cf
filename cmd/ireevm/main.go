// Command ireevm is a small host harness for the VM/HAL stack: it
// builds a demonstration module in-process, registers a local
// interpreter-backed device with a runtime Instance, invokes the
// module's exported function, and prints the result.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/device/local"
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/ireelog"
	"github.com/monkeyking/iree/runtime"
)

var (
	trace         = flag.Bool("trace", false, "enable opcode/dispatch trace logging")
	maxStackDepth = flag.Int("max-stack-depth", 0, "maximum interpreter stack depth (0 selects the runtime default)")
)

func main() {
	flag.Parse()
	if *trace {
		if ireelog.TracingBuildSupported {
			ireelog.EnableTracing()
		} else {
			ireelog.WarnTracingIgnored()
		}
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ireevm:", err)
		os.Exit(1)
	}
}

func run() error {
	module, fn := demoModule()

	inst, err := runtime.New()
	if err != nil {
		return err
	}
	defer inst.Shutdown()

	drv := local.NewDriver(module, *maxStackDepth, 1)
	if err := inst.RegisterDriverDevices(drv); err != nil {
		return err
	}

	devs := inst.Devices().Devices()
	if len(devs) == 0 {
		return fmt.Errorf("ireevm: local driver registered no devices")
	}

	localDev, ok := devs[0].(*local.Device)
	if !ok {
		return fmt.Errorf("ireevm: expected a *local.Device, got %T", devs[0])
	}
	results, err := localDev.Invoke(context.Background(), fn, nil)
	if err != nil {
		return err
	}
	for i, r := range results {
		b, err := r.Bytes()
		if err != nil {
			return err
		}
		fmt.Printf("result[%d] = %v\n", i, decodeI32s(b))
	}
	return nil
}

func decodeI32s(b []byte) []int32 {
	out := make([]int32, len(b)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[i*4 : i*4+4]))
	}
	return out
}

// demoModule builds a single-function module computing
// [1,2,3,4] + [10,20,30,40].
func demoModule() (*bytecode.Module, *bytecode.FunctionDef) {
	e := bytecode.NewEncoder()
	_ = e.Emit(bytecode.Instruction{Opcode: bytecode.OpConst, Operands: []bytecode.Operand{
		{Kind: bytecode.EncConstant, Constant: bytecode.ConstantOperand{Type: types.I32, Shape: types.Shape{4}, Encoding: bytecode.Dense, Data: i32le(1, 2, 3, 4)}},
		{Kind: bytecode.EncResultSlot, Slot: 0},
	}})
	_ = e.Emit(bytecode.Instruction{Opcode: bytecode.OpConst, Operands: []bytecode.Operand{
		{Kind: bytecode.EncConstant, Constant: bytecode.ConstantOperand{Type: types.I32, Shape: types.Shape{4}, Encoding: bytecode.Dense, Data: i32le(10, 20, 30, 40)}},
		{Kind: bytecode.EncResultSlot, Slot: 1},
	}})
	_ = e.Emit(bytecode.Instruction{Opcode: bytecode.OpAdd, Operands: []bytecode.Operand{
		{Kind: bytecode.EncInputSlot, Slot: 0},
		{Kind: bytecode.EncInputSlot, Slot: 1},
		{Kind: bytecode.EncResultSlot, Slot: 2},
	}})
	_ = e.Emit(bytecode.Instruction{Opcode: bytecode.OpReturn, Operands: []bytecode.Operand{
		{Kind: bytecode.EncVariadicInputSlots, Slots: []uint16{2}},
	}})

	fn := bytecode.FunctionDef{
		Ordinal: 0,
		Name:    "demo_add",
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

func i32le(vals ...int32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		out = append(out, b[:]...)
	}
	return out
}
