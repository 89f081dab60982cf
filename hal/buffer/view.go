package buffer

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// View is the non-owning tuple (Buffer, element Type, Shape, byte-offset,
// byte-length) described in the data model. Multiple views may alias one
// buffer; a View places no synchronization requirements on the buffer
// beyond the usage flags established when the buffer was created. Views
// are value types with cheap copy semantics.
type View struct {
	Buf         *Buffer
	ElementType types.Type
	Shape       types.Shape
	ByteOffset  int64
	ByteLength  int64
}

// NewView builds a View over buf, validating that the declared shape and
// element type actually fit inside [offset, offset+length).
func NewView(buf *Buffer, elemType types.Type, shape types.Shape, offset int64) (View, error) {
	if !elemType.IsBuiltin() {
		return View{}, status.New(status.InvalidArgument, "cannot build a buffer view over opaque type")
	}
	length := shape.ElementCount() * int64(elemType.ElementSize())
	if offset < 0 || length < 0 || offset+length > int64(buf.Length()) {
		return View{}, status.New(status.OutOfRange, "buffer view [%d:%d] out of bounds for buffer of length %d", offset, offset+length, buf.Length())
	}
	return View{Buf: buf, ElementType: elemType, Shape: shape.Clone(), ByteOffset: offset, ByteLength: length}, nil
}

// Bytes returns the view's window onto the backing buffer.
func (v View) Bytes() ([]byte, error) {
	return v.Buf.Slice(int(v.ByteOffset), int(v.ByteLength))
}

// ElementCount returns the number of elements covered by the view's
// shape.
func (v View) ElementCount() int64 { return v.Shape.ElementCount() }

// IsValid reports invariant 1: a live View references a live buffer.
func (v View) IsValid() bool { return v.Buf != nil }
