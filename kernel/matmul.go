package kernel

import (
	"sync"

	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// RuntimeState holds scratch resources shared across MatMul invocations
// on the same device queue: a worker count bounding how many row-bands
// run concurrently. A zero-value RuntimeState runs single-threaded.
type RuntimeState struct {
	Workers int
}

// NewRuntimeState returns a RuntimeState that fans row-bands out across
// workers goroutines.
func NewRuntimeState(workers int) *RuntimeState {
	if workers < 1 {
		workers = 1
	}
	return &RuntimeState{Workers: workers}
}

func scaleAt(scales []float32, idx int32) float32 {
	switch len(scales) {
	case 0:
		return 1
	case 1:
		return scales[0]
	default:
		return scales[idx]
	}
}

func matmulRow[T Numeric](lhs, rhs, dst []T, bias []T, lhsScale, rhsScale []float32, row, k, n int32, isFloat bool) {
	lrs := scaleAt(lhsScale, row)
	for j := int32(0); j < n; j++ {
		rcs := scaleAt(rhsScale, j)
		if isFloat {
			var acc float64
			for p := int32(0); p < k; p++ {
				acc += float64(lhs[row*k+p]) * float64(rhs[p*n+j])
			}
			if bias != nil {
				acc += float64(bias[j])
			}
			dst[row*n+j] = T(acc)
		} else {
			var acc int64
			for p := int32(0); p < k; p++ {
				acc += int64(lhs[row*k+p]) * int64(rhs[p*n+j])
			}
			result := float64(acc) * float64(lrs) * float64(rcs)
			if bias != nil {
				result += float64(bias[j])
			}
			dst[row*n+j] = T(result)
		}
	}
}

func matmulGeneric[T Numeric](rt *RuntimeState, lhs, rhs, dst []T, bias []T, lhsScale, rhsScale []float32, m, k, n int32, isFloat bool) {
	workers := 1
	if rt != nil && rt.Workers > 1 {
		workers = rt.Workers
	}
	if workers == 1 || m < int32(workers) {
		for i := int32(0); i < m; i++ {
			matmulRow(lhs, rhs, dst, bias, lhsScale, rhsScale, i, k, n, isFloat)
		}
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (m + int32(workers) - 1) / int32(workers)
	for w := 0; w < workers; w++ {
		start := int32(w) * rowsPerWorker
		end := start + rowsPerWorker
		if end > m {
			end = m
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int32) {
			defer wg.Done()
			for i := start; i < end; i++ {
				matmulRow(lhs, rhs, dst, bias, lhsScale, rhsScale, i, k, n, isFloat)
			}
		}(start, end)
	}
	wg.Wait()
}

// MatMul computes dst[m,n] = lhs[m,k] * rhs[k,n] (row-major), optionally
// adding bias[n] and applying per-row lhsScale / per-column rhsScale
// dequantization factors for quantized integer operands. A nil scale
// slice means unscaled, a length-1 slice means a single shared scale,
// and a full-length slice means per-row (lhsScale) or per-column
// (rhsScale) scales. accType must be at least as wide as typ; it names
// the accumulator precision the caller is contracting for, used here to
// validate the invariant even though the actual accumulation always
// widens internally to int64 or float64.
func MatMul(rt *RuntimeState, typ, accType types.Type, dst, lhs, rhs, bias []byte, lhsScale, rhsScale []float32, m, k, n int32) error {
	if accType.ElementSize() < typ.ElementSize() {
		return status.New(status.InvalidArgument, "matmul: accumulator type %s is narrower than element type %s", accType.DebugString(), typ.DebugString())
	}
	isFloat := typ.IsFloat()

	switch typ {
	case types.I8:
		var b []int8
		if bias != nil {
			b = spanOf[int8](bias)
		}
		matmulGeneric(rt, spanOf[int8](lhs), spanOf[int8](rhs), spanOf[int8](dst), b, lhsScale, rhsScale, m, k, n, isFloat)
	case types.I16:
		var b []int16
		if bias != nil {
			b = spanOf[int16](bias)
		}
		matmulGeneric(rt, spanOf[int16](lhs), spanOf[int16](rhs), spanOf[int16](dst), b, lhsScale, rhsScale, m, k, n, isFloat)
	case types.I32:
		var b []int32
		if bias != nil {
			b = spanOf[int32](bias)
		}
		matmulGeneric(rt, spanOf[int32](lhs), spanOf[int32](rhs), spanOf[int32](dst), b, lhsScale, rhsScale, m, k, n, isFloat)
	case types.I64:
		var b []int64
		if bias != nil {
			b = spanOf[int64](bias)
		}
		matmulGeneric(rt, spanOf[int64](lhs), spanOf[int64](rhs), spanOf[int64](dst), b, lhsScale, rhsScale, m, k, n, isFloat)
	case types.F32:
		var b []float32
		if bias != nil {
			b = spanOf[float32](bias)
		}
		matmulGeneric(rt, spanOf[float32](lhs), spanOf[float32](rhs), spanOf[float32](dst), b, lhsScale, rhsScale, m, k, n, isFloat)
	case types.F64:
		var b []float64
		if bias != nil {
			b = spanOf[float64](bias)
		}
		matmulGeneric(rt, spanOf[float64](lhs), spanOf[float64](rhs), spanOf[float64](dst), b, lhsScale, rhsScale, m, k, n, isFloat)
	default:
		return status.New(status.Unimplemented, "matmul: unsupported type %s", typ.DebugString())
	}
	return nil
}
