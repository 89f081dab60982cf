// Package interp implements the bytecode interpreter dispatch loop
// (C9): fetch-decode-execute over a function's BytecodeDef, dispatching
// compute opcodes to the kernel package by the operand's runtime
// element type and control-flow opcodes by walking the decoded
// instruction stream. HAL resource opcodes (dispatch, allocate, device
// copy, barrier, fence) are handed off to an injected Sequencer rather
// than executed here, mirroring the split between C9 and C10.
package interp

import (
	"context"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/allocator"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/ireelog"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/vm/stack"
)

// ImportFunc is a host-registered native function bound to a
// ModuleFunction/NativeFunction import by name.
type ImportFunc func(ctx context.Context, args []buffer.View) ([]buffer.View, error)

// Sequencer accepts the HAL resource opcodes the interpreter itself
// does not execute. A nil Sequencer is valid for modules that never
// emit these opcodes; attempting to execute one without a Sequencer
// reports FailedPrecondition rather than panicking.
type Sequencer interface {
	Allocate(ctx context.Context, typeIndex uint8) (buffer.View, error)
	DeviceCopy(ctx context.Context, transfers []CopyTransfer) error
	Barrier(ctx context.Context) error
	Dispatch(ctx context.Context, dispatchOrdinal uint32, exportOrdinal uint16, workload []int64, inputs, outputs []buffer.View) error
	SignalFence(ctx context.Context, slot buffer.View, value uint64) error
	WaitFence(ctx context.Context, slot buffer.View, value uint64) error
}

// CopyTransfer is one (src, dst) pair of a hal.copy instruction.
type CopyTransfer struct {
	Src buffer.View
	Dst buffer.View
}

// Interpreter executes one module's functions against a shared stack,
// allocator, and optional sequencer/import table.
type Interpreter struct {
	module    *bytecode.Module
	alloc     allocator.Allocator
	seq       Sequencer
	imports   map[string]ImportFunc
	maxDepth  int
}

// New returns an Interpreter for module, allocating constants and
// intermediate results through alloc. seq may be nil if the module
// issues no HAL resource opcodes. maxDepth <= 0 selects
// stack.DefaultMaxDepth.
func New(module *bytecode.Module, alloc allocator.Allocator, seq Sequencer, maxDepth int) *Interpreter {
	return &Interpreter{
		module:   module,
		alloc:    alloc,
		seq:      seq,
		imports:  make(map[string]ImportFunc),
		maxDepth: maxDepth,
	}
}

// SetSequencer wires (or rewires) the Sequencer used for HAL resource
// opcodes. Separated from New so a Sequencer that itself needs to
// invoke this Interpreter (the interpreter-backed local device) can be
// constructed after the Interpreter it will be attached to.
func (it *Interpreter) SetSequencer(seq Sequencer) { it.seq = seq }

// RegisterImport binds a host function to the import table entry with
// the given name. Calling an import with no registered binding reports
// Unimplemented.
func (it *Interpreter) RegisterImport(name string, fn ImportFunc) {
	it.imports[name] = fn
}

// Invoke runs fn to completion on a fresh Stack and returns its result
// views.
func (it *Interpreter) Invoke(ctx context.Context, fn *bytecode.FunctionDef, args []buffer.View) ([]buffer.View, error) {
	st := stack.New(it.maxDepth)
	return it.invokeOn(ctx, st, fn, args)
}

func (it *Interpreter) invokeOn(ctx context.Context, st *stack.Stack, fn *bytecode.FunctionDef, args []buffer.View) ([]buffer.View, error) {
	if fn.Bytecode == nil {
		return it.invokeExternal(ctx, fn, args)
	}
	frame, err := st.PushFrame(fn, args)
	if err != nil {
		return nil, err
	}
	results, err := it.run(ctx, st, frame)
	if _, popErr := st.PopFrame(); popErr != nil && err == nil {
		err = popErr
	}
	return results, err
}

// invokeExternal resolves a bytecodeless FunctionDef (one declared only
// to carry a signature for a resolved import) to a host callback keyed
// by name.
func (it *Interpreter) invokeExternal(ctx context.Context, fn *bytecode.FunctionDef, args []buffer.View) ([]buffer.View, error) {
	cb, ok := it.imports[fn.Name]
	if !ok {
		return nil, status.New(status.Unimplemented, "no host binding registered for import %q", fn.Name)
	}
	return cb(ctx, args)
}

// run decodes and executes instructions starting at frame.PC until a
// Return instruction produces the function's results.
func (it *Interpreter) run(ctx context.Context, st *stack.Stack, frame *stack.Frame) ([]buffer.View, error) {
	dec := bytecode.NewDecoder(frame.Function.Bytecode.Contents)
	for {
		if err := ctx.Err(); err != nil {
			return nil, status.Wrap(status.Cancelled, err, "interpreter loop for %q cancelled", frame.Function.Name)
		}
		if err := dec.Seek(frame.PC); err != nil {
			return nil, err
		}
		instr, err := dec.DecodeInstruction()
		if err != nil {
			return nil, err
		}
		frame.PC = dec.Pos()

		if instr.Opcode == bytecode.OpReturn {
			return it.readSlots(frame, instr.Operands[0].Slots)
		}

		branched, err := it.execInstruction(ctx, st, frame, instr)
		if err != nil {
			return nil, status.Wrap(status.KindOf(err), err, "executing %s at offset %d in %q", instr.Opcode.Mnemonic(), instr.Offset, frame.Function.Name)
		}
		if branched {
			continue
		}
	}
}

func (it *Interpreter) readSlots(frame *stack.Frame, slots []uint16) ([]buffer.View, error) {
	views := make([]buffer.View, len(slots))
	for i, slot := range slots {
		s, err := frame.Get(slot)
		if err != nil {
			return nil, err
		}
		if s.Kind != stack.SlotBufferView {
			return nil, status.New(status.FailedPrecondition, "return slot %d does not hold a buffer view", slot)
		}
		views[i] = s.View
	}
	return views, nil
}

func (it *Interpreter) getView(frame *stack.Frame, slot uint16) (buffer.View, error) {
	s, err := frame.Get(slot)
	if err != nil {
		return buffer.View{}, err
	}
	if s.Kind != stack.SlotBufferView {
		return buffer.View{}, status.New(status.FailedPrecondition, "slot %d does not hold a buffer view", slot)
	}
	return s.View, nil
}

func (it *Interpreter) setView(frame *stack.Frame, slot uint16, v buffer.View) error {
	return frame.Set(slot, stack.Slot{Kind: stack.SlotBufferView, View: v, Type: v.ElementType})
}

func (it *Interpreter) allocView(typ types.Type, shape types.Shape) (buffer.View, error) {
	size := shape.ElementCount() * int64(typ.ElementSize())
	buf, err := it.alloc.Allocate(buffer.HostLocal|buffer.HostVisible, buffer.UsageDispatch, size)
	if err != nil {
		return buffer.View{}, err
	}
	return buffer.NewView(buf, typ, shape, 0)
}

func (it *Interpreter) materializeConstant(c bytecode.ConstantOperand) (buffer.View, error) {
	view, err := it.allocView(c.Type, c.Shape)
	if err != nil {
		return buffer.View{}, err
	}
	dst, err := view.Bytes()
	if err != nil {
		return buffer.View{}, err
	}
	switch c.Encoding {
	case bytecode.Dense:
		copy(dst, c.Data)
	case bytecode.Splat:
		elemSize := c.Type.ElementSize()
		for off := 0; off < len(dst); off += elemSize {
			copy(dst[off:off+elemSize], c.Data)
		}
	default:
		return buffer.View{}, status.New(status.InvalidArgument, "unknown constant encoding %d", c.Encoding)
	}
	ireelog.Default().Tracef("materialized constant type=%s shape=%v", c.Type.DebugString(), c.Shape)
	return view, nil
}
