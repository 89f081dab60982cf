// Package stack implements the per-invocation register file (C7): a
// Stack of StackFrames, each a fixed-size vector of typed value slots
// plus a program counter and a caller back-pointer.
package stack

import (
	"math"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// DefaultMaxDepth is the runtime-configurable maximum stack depth
// (§4.6). Exceeding it yields ResourceExhausted.
const DefaultMaxDepth = 1024

// SlotKind distinguishes what a slot currently holds.
type SlotKind int

const (
	SlotEmpty SlotKind = iota
	SlotBufferView
	SlotScalar
)

// Slot holds either nothing, a BufferView, or a scalar of a builtin
// type.
type Slot struct {
	Kind  SlotKind
	View  buffer.View
	Type  types.Type
	Bits  uint64 // scalar payload, reinterpreted per Type
}

// ScalarI64 reads the slot's scalar payload as a signed 64-bit integer.
func (s Slot) ScalarI64() int64 { return int64(s.Bits) }

// ScalarF64 reads the slot's scalar payload as a float64, assuming the
// slot's Type is F32 or F64.
func (s Slot) ScalarF64() float64 {
	if s.Type == types.F32 {
		return float64(math.Float32frombits(uint32(s.Bits)))
	}
	return math.Float64frombits(s.Bits)
}

// Frame is a single invocation's register file of typed value slots, a
// program counter into its BytecodeDef, and a non-owning back-pointer
// to the caller frame.
type Frame struct {
	Function *bytecode.FunctionDef
	Slots    []Slot
	PC       int
	Caller   *Frame
}

// SlotCount reports the frame's slot capacity.
func (f *Frame) SlotCount() int { return len(f.Slots) }

// Get reads slot i, validating invariant 2 (slot indices < slot count).
func (f *Frame) Get(i uint16) (Slot, error) {
	if int(i) >= len(f.Slots) {
		return Slot{}, status.New(status.OutOfRange, "slot %d out of range for frame with %d slots", i, len(f.Slots))
	}
	return f.Slots[i], nil
}

// Set writes slot i.
func (f *Frame) Set(i uint16, s Slot) error {
	if int(i) >= len(f.Slots) {
		return status.New(status.OutOfRange, "slot %d out of range for frame with %d slots", i, len(f.Slots))
	}
	f.Slots[i] = s
	return nil
}

// Stack is a LIFO of Frames bounded by MaxDepth.
type Stack struct {
	frames   []*Frame
	MaxDepth int
}

// New returns an empty stack with the given depth limit. A limit of 0
// selects DefaultMaxDepth.
func New(maxDepth int) *Stack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Stack{MaxDepth: maxDepth}
}

// PushFrame allocates a frame with slot capacity declared by fn's
// signature, copies inputs into the designated input slots, sets PC to
// 0, and records the caller. It returns ResourceExhausted if MaxDepth
// would be exceeded.
func (s *Stack) PushFrame(fn *bytecode.FunctionDef, inputs []buffer.View) (*Frame, error) {
	if len(s.frames) >= s.MaxDepth {
		return nil, status.New(status.ResourceExhausted, "stack depth exceeds maximum of %d", s.MaxDepth)
	}

	slotCount := len(fn.Signature.Args)
	if n := len(fn.Signature.Results); n > slotCount {
		slotCount = n
	}
	// Grow slot capacity generously: bytecode may use intermediate
	// slots beyond the argument/result count. Frame.Get/Set validate
	// actual slot references against this capacity at execution time;
	// callers that know a tighter bound may resize after PushFrame.
	const scratchSlots = 256
	frame := &Frame{
		Function: fn,
		Slots:    make([]Slot, slotCount+scratchSlots),
	}
	if len(s.frames) > 0 {
		frame.Caller = s.frames[len(s.frames)-1]
	}

	for i, view := range inputs {
		if i >= len(frame.Slots) {
			return nil, status.New(status.OutOfRange, "more inputs (%d) than frame has slots (%d)", len(inputs), len(frame.Slots))
		}
		frame.Slots[i] = Slot{Kind: SlotBufferView, View: view, Type: view.ElementType}
	}

	s.frames = append(s.frames, frame)
	return frame, nil
}

// PopFrame removes the top frame. Callers must have already copied its
// result slots to the caller (performed by the Return opcode's operand
// mapping) before calling this.
func (s *Stack) PopFrame() (*Frame, error) {
	if len(s.frames) == 0 {
		return nil, status.New(status.FailedPrecondition, "pop of empty stack")
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top, nil
}

// Top returns the current top frame without popping it.
func (s *Stack) Top() (*Frame, error) {
	if len(s.frames) == 0 {
		return nil, status.New(status.FailedPrecondition, "stack is empty")
	}
	return s.frames[len(s.frames)-1], nil
}

// Depth reports the current number of live frames.
func (s *Stack) Depth() int { return len(s.frames) }
