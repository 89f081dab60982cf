// Package kernel implements the type-generic scalar/tensor operations
// consumed by the interpreter (C11). Each kernel is a pure function over
// typed spans; preconditions (span lengths, shape products) are checked
// by the caller (vm/interp), kernels themselves assume they hold.
package kernel

import (
	"unsafe"

	"github.com/monkeyking/iree/internal/status"
)

// Numeric is the set of concrete element types a kernel can be
// monomorphized over.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// spanOf reinterprets a byte slice as a slice of T without copying,
// mirroring the unsafe-span style sneller's bytecode kernels use over
// ion-decoded buffers. Callers are responsible for ensuring len(b) is a
// multiple of sizeof(T); the dispatcher (vm/interp) validates this from
// shape metadata before calling in.
func spanOf[T Numeric](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/size)
}

// SpanOfFloat32 reinterprets b as a []float32, for callers outside this
// package that need to build a quantization scale span (interp's matmul
// wiring) without reimplementing the unsafe cast.
func SpanOfFloat32(b []byte) []float32 { return spanOf[float32](b) }

// ErrShapeMismatch is the canonical error for kernels whose contract
// requires matching input/output shapes.
func ErrShapeMismatch(op string, lens ...int) error {
	return status.New(status.InvalidArgument, "%s: shape/length mismatch across operands %v", op, lens)
}
