package kernel

import (
	"math"

	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

func absFloat32(dst, src []float32) {
	for i := range dst {
		dst[i] = float32(math.Abs(float64(src[i])))
	}
}

func absFloat64(dst, src []float64) {
	for i := range dst {
		dst[i] = math.Abs(src[i])
	}
}

type unaryFloatFn func(float64) float64

func unaryFloat(typ types.Type, dst, src []byte, fn unaryFloatFn) error {
	switch typ {
	case types.F32:
		d, s := spanOf[float32](dst), spanOf[float32](src)
		for i := range d {
			d[i] = float32(fn(float64(s[i])))
		}
	case types.F64:
		d, s := spanOf[float64](dst), spanOf[float64](src)
		for i := range d {
			d[i] = fn(s[i])
		}
	default:
		return status.New(status.Unimplemented, "unsupported type %s for real-valued unary kernel", typ.DebugString())
	}
	return nil
}

// Exp computes element-wise e^x; NaN propagation follows IEEE-754.
func Exp(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Exp) }

// Log computes element-wise natural log.
func Log(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Log) }

// Rsqrt computes element-wise 1/sqrt(x).
func Rsqrt(typ types.Type, dst, src []byte) error {
	return unaryFloat(typ, dst, src, func(x float64) float64 { return 1 / math.Sqrt(x) })
}

// Cos computes element-wise cosine.
func Cos(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Cos) }

// Sin computes element-wise sine.
func Sin(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Sin) }

// Tanh computes element-wise hyperbolic tangent.
func Tanh(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Tanh) }

// Atan2 computes element-wise atan2(y, x). It is only defined on float
// types; integer inputs are unreachable per the spec's open questions
// and report Unimplemented rather than guessing a semantics.
func Atan2(typ types.Type, dst, y, x []byte) error {
	switch typ {
	case types.F32:
		d, ys, xs := spanOf[float32](dst), spanOf[float32](y), spanOf[float32](x)
		for i := range d {
			d[i] = float32(math.Atan2(float64(ys[i]), float64(xs[i])))
		}
	case types.F64:
		d, ys, xs := spanOf[float64](dst), spanOf[float64](y), spanOf[float64](x)
		for i := range d {
			d[i] = math.Atan2(ys[i], xs[i])
		}
	default:
		return status.New(status.Unimplemented, "atan2 is unreachable on integer type %s", typ.DebugString())
	}
	return nil
}

func minMaxInt[T Numeric](dst, lhs, rhs []T, max bool) {
	for i := range dst {
		a, b := lhs[i], rhs[i]
		if (max && a > b) || (!max && a < b) {
			dst[i] = a
		} else {
			dst[i] = b
		}
	}
}

// Min computes dst[i] = min(lhs[i], rhs[i]): total order for integers,
// IEEE-754 minNum (NaN propagates) for floats.
func Min(typ types.Type, dst, lhs, rhs []byte) error {
	return minOrMax(typ, dst, lhs, rhs, false)
}

// Max computes dst[i] = max(lhs[i], rhs[i]).
func Max(typ types.Type, dst, lhs, rhs []byte) error {
	return minOrMax(typ, dst, lhs, rhs, true)
}

func minOrMax(typ types.Type, dst, lhs, rhs []byte, wantMax bool) error {
	switch typ {
	case types.I8:
		minMaxInt(spanOf[int8](dst), spanOf[int8](lhs), spanOf[int8](rhs), wantMax)
	case types.I16:
		minMaxInt(spanOf[int16](dst), spanOf[int16](lhs), spanOf[int16](rhs), wantMax)
	case types.I32:
		minMaxInt(spanOf[int32](dst), spanOf[int32](lhs), spanOf[int32](rhs), wantMax)
	case types.I64:
		minMaxInt(spanOf[int64](dst), spanOf[int64](lhs), spanOf[int64](rhs), wantMax)
	case types.F32:
		d, l, r := spanOf[float32](dst), spanOf[float32](lhs), spanOf[float32](rhs)
		for i := range d {
			if wantMax {
				d[i] = float32(math.Max(float64(l[i]), float64(r[i])))
			} else {
				d[i] = float32(math.Min(float64(l[i]), float64(r[i])))
			}
		}
	case types.F64:
		d, l, r := spanOf[float64](dst), spanOf[float64](lhs), spanOf[float64](rhs)
		for i := range d {
			if wantMax {
				d[i] = math.Max(l[i], r[i])
			} else {
				d[i] = math.Min(l[i], r[i])
			}
		}
	default:
		return status.New(status.Unimplemented, "min/max: unsupported type %s", typ.DebugString())
	}
	return nil
}

// Clamp computes dst[i] = min(max(src[i], lo[i]), hi[i]).
func Clamp(typ types.Type, dst, src, lo, hi []byte) error {
	tmp := make([]byte, len(dst))
	if err := Max(typ, tmp, src, lo); err != nil {
		return err
	}
	return Min(typ, dst, tmp, hi)
}

// Floor computes an integer-valued float floor.
func Floor(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Floor) }

// Ceil computes an integer-valued float ceiling.
func Ceil(typ types.Type, dst, src []byte) error { return unaryFloat(typ, dst, src, math.Ceil) }
