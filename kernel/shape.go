package kernel

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// rowMajorStrides returns the element strides for a row-major shape.
func rowMajorStrides(shape types.Shape) []int64 {
	strides := make([]int64, len(shape))
	acc := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= int64(shape[i])
	}
	return strides
}

// forEachIndex calls fn once per multi-dimensional index within extents,
// in row-major (last-dimension-fastest) order.
func forEachIndex(extents []int32, fn func(idx []int32)) {
	rank := len(extents)
	if rank == 0 {
		fn(nil)
		return
	}
	idx := make([]int32, rank)
	for {
		fn(idx)
		d := rank - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < extents[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return
		}
	}
}

func flatOffset(strides []int64, idx []int32) int64 {
	var off int64
	for i, v := range idx {
		off += int64(v) * strides[i]
	}
	return off
}

// Copy copies the hyper-rectangular region of lengths starting at
// srcIndex in srcShape to dstIndex in dstShape. No overlap checking is
// performed, matching the Copy<N> contract.
func Copy(elemSize int, dst, src []byte, srcShape, dstShape types.Shape, srcIndex, dstIndex, lengths []int32) error {
	if len(srcShape) != len(dstShape) || len(srcShape) != len(lengths) {
		return status.New(status.InvalidArgument, "copy: rank mismatch between shapes and lengths")
	}
	srcStrides := rowMajorStrides(srcShape)
	dstStrides := rowMajorStrides(dstShape)

	forEachIndex(lengths, func(rel []int32) {
		s := make([]int32, len(rel))
		d := make([]int32, len(rel))
		for i := range rel {
			s[i] = srcIndex[i] + rel[i]
			d[i] = dstIndex[i] + rel[i]
		}
		so := flatOffset(srcStrides, s) * int64(elemSize)
		do := flatOffset(dstStrides, d) * int64(elemSize)
		copy(dst[do:do+int64(elemSize)], src[so:so+int64(elemSize)])
	})
	return nil
}

// TransposedShape computes the shape that results from permuting
// srcShape's dimensions per perm.
func TransposedShape(srcShape types.Shape, perm []int32) types.Shape {
	dstShape := make(types.Shape, len(srcShape))
	for i, p := range perm {
		dstShape[i] = srcShape[p]
	}
	return dstShape
}

// Transpose permutes dims per perm, a permutation of [0..rank).
func Transpose(elemSize int, dst, src []byte, srcShape types.Shape, perm []int32) error {
	if len(perm) != len(srcShape) {
		return status.New(status.InvalidArgument, "transpose: perm length %d does not match rank %d", len(perm), len(srcShape))
	}
	dstShape := TransposedShape(srcShape, perm)
	srcStrides := rowMajorStrides(srcShape)
	dstStrides := rowMajorStrides(dstShape)

	forEachIndex([]int32(srcShape), func(srcIdx []int32) {
		dstIdx := make([]int32, len(perm))
		for i, p := range perm {
			dstIdx[i] = srcIdx[p]
		}
		so := flatOffset(srcStrides, srcIdx) * int64(elemSize)
		do := flatOffset(dstStrides, dstIdx) * int64(elemSize)
		copy(dst[do:do+int64(elemSize)], src[so:so+int64(elemSize)])
	})
	return nil
}

// Reverse reverses iteration order along each dimension named in dims.
func Reverse(elemSize int, dst, src []byte, shape types.Shape, dims []int32) error {
	reverseSet := make(map[int32]bool, len(dims))
	for _, d := range dims {
		reverseSet[d] = true
	}
	strides := rowMajorStrides(shape)

	forEachIndex([]int32(shape), func(srcIdx []int32) {
		dstIdx := make([]int32, len(srcIdx))
		for i, v := range srcIdx {
			if reverseSet[int32(i)] {
				dstIdx[i] = shape[i] - 1 - v
			} else {
				dstIdx[i] = v
			}
		}
		so := flatOffset(strides, srcIdx) * int64(elemSize)
		do := flatOffset(strides, dstIdx) * int64(elemSize)
		copy(dst[do:do+int64(elemSize)], src[so:so+int64(elemSize)])
	})
	return nil
}

// PaddedShape computes the shape that results from padding srcShape by
// edgeLow/edgeHigh/interior per dimension.
func PaddedShape(srcShape types.Shape, edgeLow, edgeHigh, interior []int32) types.Shape {
	rank := len(srcShape)
	dstShape := make(types.Shape, rank)
	for i := 0; i < rank; i++ {
		n := srcShape[i]
		dstShape[i] = edgeLow[i] + edgeHigh[i] + n + interior[i]*maxInt32(n-1, 0)
	}
	return dstShape
}

// Pad inserts edgeLow/edgeHigh/interior padding per dimension using
// paddingValue (one element's worth of bytes). Negative paddings are
// invalid.
func Pad(elemSize int, dst, src []byte, srcShape types.Shape, edgeLow, edgeHigh, interior []int32, paddingValue []byte) error {
	rank := len(srcShape)
	if len(edgeLow) != rank || len(edgeHigh) != rank || len(interior) != rank {
		return status.New(status.InvalidArgument, "pad: padding lists must match rank %d", rank)
	}
	for i := 0; i < rank; i++ {
		if edgeLow[i] < 0 || edgeHigh[i] < 0 || interior[i] < 0 {
			return status.New(status.InvalidArgument, "pad: negative padding at dimension %d", i)
		}
	}

	dstShape := PaddedShape(srcShape, edgeLow, edgeHigh, interior)
	dstStrides := rowMajorStrides(dstShape)

	// Fill destination with the padding value everywhere first.
	total := dstShape.ElementCount()
	for i := int64(0); i < total; i++ {
		off := i * int64(elemSize)
		copy(dst[off:off+int64(elemSize)], paddingValue)
	}

	srcStrides := rowMajorStrides(srcShape)
	forEachIndex([]int32(srcShape), func(srcIdx []int32) {
		dstIdx := make([]int32, rank)
		for i := 0; i < rank; i++ {
			dstIdx[i] = edgeLow[i] + srcIdx[i]*(interior[i]+1)
		}
		so := flatOffset(srcStrides, srcIdx) * int64(elemSize)
		do := flatOffset(dstStrides, dstIdx) * int64(elemSize)
		copy(dst[do:do+int64(elemSize)], src[so:so+int64(elemSize)])
	})
	return nil
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Broadcast repeats src into a larger dstShape: all-ones source
// dimensions extend to the corresponding destination extent.
func Broadcast(elemSize int, dst, src []byte, srcShape, dstShape types.Shape) error {
	if len(srcShape) != len(dstShape) {
		return status.New(status.InvalidArgument, "broadcast: rank mismatch")
	}
	srcStrides := rowMajorStrides(srcShape)
	dstStrides := rowMajorStrides(dstShape)

	forEachIndex([]int32(dstShape), func(dstIdx []int32) {
		srcIdx := make([]int32, len(dstIdx))
		for i, v := range dstIdx {
			if srcShape[i] == 1 {
				srcIdx[i] = 0
			} else {
				srcIdx[i] = v
			}
		}
		so := flatOffset(srcStrides, srcIdx) * int64(elemSize)
		do := flatOffset(dstStrides, dstIdx) * int64(elemSize)
		copy(dst[do:do+int64(elemSize)], src[so:so+int64(elemSize)])
	})
	return nil
}

// TiledShape computes the shape that results from repeating srcShape
// repeats[i] times along each dimension i.
func TiledShape(srcShape types.Shape, repeats []int32) types.Shape {
	dstShape := make(types.Shape, len(srcShape))
	for i := range srcShape {
		dstShape[i] = srcShape[i] * repeats[i]
	}
	return dstShape
}

// Tile repeats src along each dimension repeats[i] times (integer
// repetition, as opposed to Broadcast's arbitrary target shape).
func Tile(elemSize int, dst, src []byte, srcShape types.Shape, repeats []int32) error {
	if len(srcShape) != len(repeats) {
		return status.New(status.InvalidArgument, "tile: rank mismatch")
	}
	for i := range repeats {
		if repeats[i] < 1 {
			return status.New(status.InvalidArgument, "tile: repeat count %d at dim %d must be at least 1", repeats[i], i)
		}
	}
	dstShape := TiledShape(srcShape, repeats)
	srcStrides := rowMajorStrides(srcShape)
	dstStrides := rowMajorStrides(dstShape)

	forEachIndex([]int32(dstShape), func(dstIdx []int32) {
		srcIdx := make([]int32, len(dstIdx))
		for i, v := range dstIdx {
			srcIdx[i] = v % srcShape[i]
		}
		so := flatOffset(srcStrides, srcIdx) * int64(elemSize)
		do := flatOffset(dstStrides, dstIdx) * int64(elemSize)
		copy(dst[do:do+int64(elemSize)], src[so:so+int64(elemSize)])
	})
	return nil
}
