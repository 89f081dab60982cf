package kernel

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

type bitInt interface {
	~int8 | ~int16 | ~int32 | ~int64
}

func notT[T bitInt](dst, src []T) {
	for i := range dst {
		dst[i] = ^src[i]
	}
}

func andT[T bitInt](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] & rhs[i]
	}
}

func orT[T bitInt](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] | rhs[i]
	}
}

func xorT[T bitInt](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] ^ rhs[i]
	}
}

func bitwiseBinary(op string, typ types.Type, dst, lhs, rhs []byte, fn8 func([]int8, []int8, []int8), fn16 func([]int16, []int16, []int16), fn32 func([]int32, []int32, []int32), fn64 func([]int64, []int64, []int64)) error {
	switch typ {
	case types.I8:
		fn8(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		fn16(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		fn32(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		fn64(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs))
	default:
		return status.New(status.Unimplemented, "%s: unsupported (non-integer) type %s", op, typ.DebugString())
	}
	return nil
}

// Not computes dst[i] = ^src[i] on integer types.
func Not(typ types.Type, dst, src []byte) error {
	switch typ {
	case types.I8:
		notT(spanOf[int8](dst), spanOf[int8](src))
	case types.I16:
		notT(spanOf[int16](dst), spanOf[int16](src))
	case types.I32:
		notT(spanOf[int32](dst), spanOf[int32](src))
	case types.I64:
		notT(spanOf[int64](dst), spanOf[int64](src))
	default:
		return status.New(status.Unimplemented, "not: unsupported type %s", typ.DebugString())
	}
	return nil
}

// And computes dst[i] = lhs[i] & rhs[i].
func And(typ types.Type, dst, lhs, rhs []byte) error {
	return bitwiseBinary("and", typ, dst, lhs, rhs, andT[int8], andT[int16], andT[int32], andT[int64])
}

// Or computes dst[i] = lhs[i] | rhs[i].
func Or(typ types.Type, dst, lhs, rhs []byte) error {
	return bitwiseBinary("or", typ, dst, lhs, rhs, orT[int8], orT[int16], orT[int32], orT[int64])
}

// Xor computes dst[i] = lhs[i] ^ rhs[i].
func Xor(typ types.Type, dst, lhs, rhs []byte) error {
	return bitwiseBinary("xor", typ, dst, lhs, rhs, xorT[int8], xorT[int16], xorT[int32], xorT[int64])
}

func bitWidth(typ types.Type) int {
	switch typ {
	case types.I8:
		return 8
	case types.I16:
		return 16
	case types.I32:
		return 32
	case types.I64:
		return 64
	default:
		return 0
	}
}

func shiftT[T bitInt](dst, lhs, rhs []T, width int, left bool) error {
	for i := range dst {
		shift := rhs[i]
		if int64(shift) < 0 || int64(shift) >= int64(width) {
			return status.New(status.InvalidArgument, "shift amount %d out of range for %d-bit type at element %d", shift, width, i)
		}
		if left {
			dst[i] = lhs[i] << shift
		} else {
			dst[i] = lhs[i] >> shift
		}
	}
	return nil
}

// ShiftLeft computes dst[i] = lhs[i] << rhs[i]. Shifts beyond the
// element width are invalid and return InvalidArgument rather than
// silently wrapping.
func ShiftLeft(typ types.Type, dst, lhs, rhs []byte) error {
	return shift(typ, dst, lhs, rhs, true)
}

// ShiftRight computes dst[i] = lhs[i] >> rhs[i] (arithmetic shift).
func ShiftRight(typ types.Type, dst, lhs, rhs []byte) error {
	return shift(typ, dst, lhs, rhs, false)
}

func shift(typ types.Type, dst, lhs, rhs []byte, left bool) error {
	width := bitWidth(typ)
	if width == 0 {
		return status.New(status.Unimplemented, "shift: unsupported type %s", typ.DebugString())
	}
	switch typ {
	case types.I8:
		return shiftT(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs), width, left)
	case types.I16:
		return shiftT(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs), width, left)
	case types.I32:
		return shiftT(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs), width, left)
	case types.I64:
		return shiftT(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs), width, left)
	}
	return nil
}
