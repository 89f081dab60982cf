package kernel

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

func addT[T Numeric](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] + rhs[i]
	}
}

func subT[T Numeric](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] - rhs[i]
	}
}

func mulT[T Numeric](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] * rhs[i]
	}
}

func mulAddT[T Numeric](dst, a, b, c []T) {
	for i := range dst {
		dst[i] = a[i]*b[i] + c[i]
	}
}

func absIntT[T Numeric](dst, src []T) {
	for i := range dst {
		v := src[i]
		if v < 0 {
			v = -v
		}
		dst[i] = v
	}
}

// Add computes dst[i] = lhs[i] + rhs[i] with two's-complement wrapping
// for integers and IEEE-754 semantics for floats.
func Add(typ types.Type, dst, lhs, rhs []byte) error {
	switch typ {
	case types.I8:
		addT(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		addT(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		addT(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		addT(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs))
	case types.F32:
		addT(spanOf[float32](dst), spanOf[float32](lhs), spanOf[float32](rhs))
	case types.F64:
		addT(spanOf[float64](dst), spanOf[float64](lhs), spanOf[float64](rhs))
	default:
		return status.New(status.Unimplemented, "add: unsupported type %s", typ.DebugString())
	}
	return nil
}

// Sub computes dst[i] = lhs[i] - rhs[i].
func Sub(typ types.Type, dst, lhs, rhs []byte) error {
	switch typ {
	case types.I8:
		subT(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		subT(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		subT(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		subT(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs))
	case types.F32:
		subT(spanOf[float32](dst), spanOf[float32](lhs), spanOf[float32](rhs))
	case types.F64:
		subT(spanOf[float64](dst), spanOf[float64](lhs), spanOf[float64](rhs))
	default:
		return status.New(status.Unimplemented, "sub: unsupported type %s", typ.DebugString())
	}
	return nil
}

// Mul computes dst[i] = lhs[i] * rhs[i].
func Mul(typ types.Type, dst, lhs, rhs []byte) error {
	switch typ {
	case types.I8:
		mulT(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		mulT(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		mulT(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		mulT(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs))
	case types.F32:
		mulT(spanOf[float32](dst), spanOf[float32](lhs), spanOf[float32](rhs))
	case types.F64:
		mulT(spanOf[float64](dst), spanOf[float64](lhs), spanOf[float64](rhs))
	default:
		return status.New(status.Unimplemented, "mul: unsupported type %s", typ.DebugString())
	}
	return nil
}

// Div computes dst[i] = lhs[i] / rhs[i]. Integer division by zero
// returns FailedPrecondition per §4.9; float division by zero follows
// IEEE-754 (producing +-Inf or NaN) and is never an error.
func Div(typ types.Type, dst, lhs, rhs []byte) error {
	switch typ {
	case types.I8:
		return divInt(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		return divInt(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		return divInt(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		return divInt(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs))
	case types.F32:
		divFloat(spanOf[float32](dst), spanOf[float32](lhs), spanOf[float32](rhs))
	case types.F64:
		divFloat(spanOf[float64](dst), spanOf[float64](lhs), spanOf[float64](rhs))
	default:
		return status.New(status.Unimplemented, "div: unsupported type %s", typ.DebugString())
	}
	return nil
}

func divInt[T Numeric](dst, lhs, rhs []T) error {
	for i := range dst {
		if rhs[i] == 0 {
			return status.New(status.FailedPrecondition, "integer division by zero at element %d", i)
		}
		dst[i] = lhs[i] / rhs[i]
	}
	return nil
}

func divFloat[T Numeric](dst, lhs, rhs []T) {
	for i := range dst {
		dst[i] = lhs[i] / rhs[i]
	}
}

// Abs computes dst[i] = |src[i]|. Integers use two's-complement
// negation; floats clear the sign bit via math's Abs (called from the
// float32/float64 specializations in mathfns.go to keep NaN handling
// consistent with the rest of the IEEE-754 kernels).
func Abs(typ types.Type, dst, src []byte) error {
	switch typ {
	case types.I8:
		absIntT(spanOf[int8](dst), spanOf[int8](src))
	case types.I16:
		absIntT(spanOf[int16](dst), spanOf[int16](src))
	case types.I32:
		absIntT(spanOf[int32](dst), spanOf[int32](src))
	case types.I64:
		absIntT(spanOf[int64](dst), spanOf[int64](src))
	case types.F32:
		absFloat32(spanOf[float32](dst), spanOf[float32](src))
	case types.F64:
		absFloat64(spanOf[float64](dst), spanOf[float64](src))
	default:
		return status.New(status.Unimplemented, "abs: unsupported type %s", typ.DebugString())
	}
	return nil
}

// MulAdd computes dst[i] = a[i]*b[i] + c[i].
func MulAdd(typ types.Type, dst, a, b, c []byte) error {
	switch typ {
	case types.I8:
		mulAddT(spanOf[int8](dst), spanOf[int8](a), spanOf[int8](b), spanOf[int8](c))
	case types.I16:
		mulAddT(spanOf[int16](dst), spanOf[int16](a), spanOf[int16](b), spanOf[int16](c))
	case types.I32:
		mulAddT(spanOf[int32](dst), spanOf[int32](a), spanOf[int32](b), spanOf[int32](c))
	case types.I64:
		mulAddT(spanOf[int64](dst), spanOf[int64](a), spanOf[int64](b), spanOf[int64](c))
	case types.F32:
		mulAddT(spanOf[float32](dst), spanOf[float32](a), spanOf[float32](b), spanOf[float32](c))
	case types.F64:
		mulAddT(spanOf[float64](dst), spanOf[float64](a), spanOf[float64](b), spanOf[float64](c))
	default:
		return status.New(status.Unimplemented, "muladd: unsupported type %s", typ.DebugString())
	}
	return nil
}
