// Package types implements the builtin scalar type registry (C1):
// an 8-bit type index, its byte size, and debug string rendering. Types
// are immutable value objects compared by index equality.
package types

import (
	"fmt"

	"github.com/monkeyking/iree/internal/status"
)

// Type is an 8-bit index into the closed set of builtin scalar types.
type Type uint8

const (
	I8 Type = iota
	I16
	I32
	I64
	F16
	F32
	F64
	Opaque
)

var names = [...]string{"i8", "i16", "i32", "i64", "f16", "f32", "f64", "opaque"}

var sizes = [...]int{1, 2, 4, 8, 2, 4, 8, 0}

// FromTypeIndex validates a raw wire byte and returns the corresponding
// Type, or OutOfRange if idx is past Opaque (Opaque itself is accepted).
func FromTypeIndex(idx uint8) (Type, error) {
	if int(idx) >= len(names) {
		return 0, status.New(status.OutOfRange, "type index %d out of range", idx)
	}
	return Type(idx), nil
}

// IsBuiltin reports whether t has a defined element size. Opaque does
// not, and callers must check this before sizing memory by type.
func (t Type) IsBuiltin() bool {
	return t != Opaque && int(t) < len(names)
}

// ElementSize returns bytes-per-element. Calling it on Opaque is a
// programming error; it returns 0, matching the "opaque -> 0/undefined"
// rule in the data model.
func (t Type) ElementSize() int {
	if int(t) >= len(sizes) {
		return 0
	}
	return sizes[t]
}

// DebugString renders a human-readable type name.
func (t Type) DebugString() string {
	if int(t) >= len(names) {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return names[t]
}

// IsInteger reports whether t is one of the i8..i64 integer types.
func (t Type) IsInteger() bool {
	return t == I8 || t == I16 || t == I32 || t == I64
}

// IsFloat reports whether t is one of the f16/f32/f64 float types.
func (t Type) IsFloat() bool {
	return t == F16 || t == F32 || t == F64
}
