package kernel

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// ReduceOp is one of the supported reduction kernels.
type ReduceOp int

const (
	ReduceSum ReduceOp = iota
	ReduceMin
	ReduceMax
)

func reduceApply[T Numeric](op ReduceOp, acc, v T) T {
	switch op {
	case ReduceSum:
		return acc + v
	case ReduceMin:
		if v < acc {
			return v
		}
		return acc
	case ReduceMax:
		if v > acc {
			return v
		}
		return acc
	}
	return acc
}

func reduceT[T Numeric](op ReduceOp, dst, src []T, init T, srcShape types.Shape, dim int32) {
	rank := len(srcShape)
	dstShape := make(types.Shape, rank)
	copy(dstShape, srcShape)
	dstShape[dim] = 1

	srcStrides := rowMajorStrides(srcShape)
	dstStrides := rowMajorStrides(dstShape)

	for i := range dst {
		dst[i] = init
	}

	forEachIndex([]int32(srcShape), func(idx []int32) {
		dstIdx := make([]int32, rank)
		copy(dstIdx, idx)
		dstIdx[dim] = 0
		so := flatOffset(srcStrides, idx)
		do := flatOffset(dstStrides, dstIdx)
		dst[do] = reduceApply(op, dst[do], src[so])
	})
}

// Reduce folds src along dimension dim using op, writing a result whose
// shape matches srcShape with dim collapsed to extent 1. init supplies
// the one-element accumulator seed (the identity the caller chose for
// op, per the reduce opcodes' init_buffer operand).
func Reduce(op ReduceOp, typ types.Type, dst, src, init []byte, srcShape types.Shape, dim int32) error {
	if dim < 0 || int(dim) >= len(srcShape) {
		return status.New(status.OutOfRange, "reduce: dimension %d out of range for rank %d", dim, len(srcShape))
	}
	switch typ {
	case types.I8:
		reduceT(op, spanOf[int8](dst), spanOf[int8](src), spanOf[int8](init)[0], srcShape, dim)
	case types.I16:
		reduceT(op, spanOf[int16](dst), spanOf[int16](src), spanOf[int16](init)[0], srcShape, dim)
	case types.I32:
		reduceT(op, spanOf[int32](dst), spanOf[int32](src), spanOf[int32](init)[0], srcShape, dim)
	case types.I64:
		reduceT(op, spanOf[int64](dst), spanOf[int64](src), spanOf[int64](init)[0], srcShape, dim)
	case types.F32:
		reduceT(op, spanOf[float32](dst), spanOf[float32](src), spanOf[float32](init)[0], srcShape, dim)
	case types.F64:
		reduceT(op, spanOf[float64](dst), spanOf[float64](src), spanOf[float64](init)[0], srcShape, dim)
	default:
		return status.New(status.Unimplemented, "reduce: unsupported type %s", typ.DebugString())
	}
	return nil
}

func maxValue[T Numeric]() T {
	var v any
	var zero T
	switch any(zero).(type) {
	case int8:
		v = int8(127)
	case int16:
		v = int16(32767)
	case int32:
		v = int32(2147483647)
	case int64:
		v = int64(9223372036854775807)
	case uint8:
		v = uint8(255)
	case uint16:
		v = uint16(65535)
	case uint32:
		v = uint32(4294967295)
	case uint64:
		v = uint64(18446744073709551615)
	case float32:
		v = float32(3.402823466e+38)
	case float64:
		v = float64(1.7976931348623157e+308)
	default:
		v = zero
	}
	return v.(T)
}

func minValue[T Numeric]() T {
	var v any
	var zero T
	switch any(zero).(type) {
	case int8:
		v = int8(-128)
	case int16:
		v = int16(-32768)
	case int32:
		v = int32(-2147483648)
	case int64:
		v = int64(-9223372036854775808)
	case uint8, uint16, uint32, uint64:
		v = zero
	case float32:
		v = float32(-3.402823466e+38)
	case float64:
		v = float64(-1.7976931348623157e+308)
	default:
		v = zero
	}
	return v.(T)
}
