package kernel

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

func convertGeneric[S Numeric, D Numeric](src []S, dst []D, saturate bool) {
	var lo, hi D
	if saturate {
		lo = minValue[D]()
		hi = maxValue[D]()
	}
	for i, v := range src {
		f := float64(v)
		if saturate {
			if f < float64(lo) {
				dst[i] = lo
				continue
			}
			if f > float64(hi) {
				dst[i] = hi
				continue
			}
		}
		dst[i] = D(f)
	}
}

func convertTo[S Numeric](src []S, dstType types.Type, dst []byte, saturate bool) error {
	switch dstType {
	case types.I8:
		convertGeneric(src, spanOf[int8](dst), saturate)
	case types.I16:
		convertGeneric(src, spanOf[int16](dst), saturate)
	case types.I32:
		convertGeneric(src, spanOf[int32](dst), saturate)
	case types.I64:
		convertGeneric(src, spanOf[int64](dst), saturate)
	case types.F32:
		convertGeneric(src, spanOf[float32](dst), false)
	case types.F64:
		convertGeneric(src, spanOf[float64](dst), false)
	default:
		return status.New(status.Unimplemented, "convert: unsupported destination type %s", dstType.DebugString())
	}
	return nil
}

// Convert casts each element of src (srcType) into dst (dstType).
// Float-to-int conversions truncate toward zero, matching Go's native
// float-to-integer conversion. Integer-to-narrower-integer conversions
// saturate at the destination type's representable range rather than
// wrapping.
func Convert(srcType, dstType types.Type, dst, src []byte) error {
	saturate := srcType.IsInteger() && dstType.IsInteger() && dstType.ElementSize() < srcType.ElementSize()

	switch srcType {
	case types.I8:
		return convertTo(spanOf[int8](src), dstType, dst, saturate)
	case types.I16:
		return convertTo(spanOf[int16](src), dstType, dst, saturate)
	case types.I32:
		return convertTo(spanOf[int32](src), dstType, dst, saturate)
	case types.I64:
		return convertTo(spanOf[int64](src), dstType, dst, saturate)
	case types.F32:
		return convertTo(spanOf[float32](src), dstType, dst, false)
	case types.F64:
		return convertTo(spanOf[float64](src), dstType, dst, false)
	default:
		return status.New(status.Unimplemented, "convert: unsupported source type %s", srcType.DebugString())
	}
}
