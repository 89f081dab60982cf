package kernel

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// CmpOp is one of the six comparison kernels.
type CmpOp int

const (
	CmpEQ CmpOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

func applyCmp[T Numeric](op CmpOp, a, b T) bool {
	switch op {
	case CmpEQ:
		return a == b
	case CmpNE:
		return a != b
	case CmpLT:
		return a < b
	case CmpLE:
		return a <= b
	case CmpGT:
		return a > b
	case CmpGE:
		return a >= b
	default:
		return false
	}
}

func compareT[T Numeric](op CmpOp, dst []uint8, lhs, rhs []T) {
	for i := range dst {
		if applyCmp(op, lhs[i], rhs[i]) {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

// Compare computes dst[i] = (lhs[i] op rhs[i]) ? 1 : 0 where dst is a
// u8-bitmap. Shapes must match (validated by the caller); the kernel
// only requires equal lengths.
func Compare(op CmpOp, typ types.Type, dst []byte, lhs, rhs []byte) error {
	if len(lhs) != len(rhs) {
		return ErrShapeMismatch("compare", len(lhs), len(rhs))
	}
	switch typ {
	case types.I8:
		compareT(op, dst, spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		compareT(op, dst, spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		compareT(op, dst, spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		compareT(op, dst, spanOf[int64](lhs), spanOf[int64](rhs))
	case types.F32:
		compareT(op, dst, spanOf[float32](lhs), spanOf[float32](rhs))
	case types.F64:
		compareT(op, dst, spanOf[float64](lhs), spanOf[float64](rhs))
	default:
		return status.New(status.Unimplemented, "compare: unsupported type %s", typ.DebugString())
	}
	return nil
}

// Select computes dst[i] = cond[i] ? lhs[i] : rhs[i], cond is a
// u8-bitmap.
func Select(typ types.Type, dst []byte, cond []byte, lhs, rhs []byte) error {
	switch typ {
	case types.I8:
		selectT(cond, spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs))
	case types.I16:
		selectT(cond, spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs))
	case types.I32:
		selectT(cond, spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs))
	case types.I64:
		selectT(cond, spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs))
	case types.F32:
		selectT(cond, spanOf[float32](dst), spanOf[float32](lhs), spanOf[float32](rhs))
	case types.F64:
		selectT(cond, spanOf[float64](dst), spanOf[float64](lhs), spanOf[float64](rhs))
	default:
		return status.New(status.Unimplemented, "select: unsupported type %s", typ.DebugString())
	}
	return nil
}

func selectT[T Numeric](cond []uint8, dst, lhs, rhs []T) {
	for i := range dst {
		if cond[i] != 0 {
			dst[i] = lhs[i]
		} else {
			dst[i] = rhs[i]
		}
	}
}
