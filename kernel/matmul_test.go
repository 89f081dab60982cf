package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monkeyking/iree/hal/types"
)

func bytesOfF32(vals ...float32) []byte {
	b := make([]byte, len(vals)*4)
	copy(spanOf[float32](b), vals)
	return b
}

func TestMatMulFloatNoBiasNoScale(t *testing.T) {
	// lhs [2,2] * rhs [2,2] -> dst [2,2]
	lhs := bytesOfF32(1, 2, 3, 4)
	rhs := bytesOfF32(5, 6, 7, 8)
	dst := make([]byte, 4*4)

	rt := NewRuntimeState(1)
	require.NoError(t, MatMul(rt, types.F32, types.F32, dst, lhs, rhs, nil, nil, nil, 2, 2, 2))

	got := spanOf[float32](dst)
	require.InDeltaSlice(t, []float32{19, 22, 43, 50}, got, 1e-6)
}

func TestMatMulWithBias(t *testing.T) {
	lhs := bytesOfF32(1, 0, 0, 1)
	rhs := bytesOfF32(2, 3, 4, 5)
	bias := bytesOfF32(100, 200)
	dst := make([]byte, 4*4)

	require.NoError(t, MatMul(NewRuntimeState(1), types.F32, types.F32, dst, lhs, rhs, bias, nil, nil, 2, 2, 2))
	got := spanOf[float32](dst)
	require.InDeltaSlice(t, []float32{102, 203, 104, 205}, got, 1e-6)
}

func TestMatMulRejectsNarrowAccumulator(t *testing.T) {
	lhs := bytesOfF32(1)
	rhs := bytesOfF32(1)
	dst := make([]byte, 1)
	err := MatMul(NewRuntimeState(1), types.F64, types.F32, dst, lhs, rhs, nil, nil, nil, 1, 1, 1)
	require.Error(t, err)
}

func TestMatMulParallelMatchesSingleThreaded(t *testing.T) {
	const m, k, n = 8, 4, 4
	lhs := make([]byte, m*k*4)
	rhs := make([]byte, k*n*4)
	lhsF := spanOf[float32](lhs)
	rhsF := spanOf[float32](rhs)
	for i := range lhsF {
		lhsF[i] = float32(i%7) - 3
	}
	for i := range rhsF {
		rhsF[i] = float32(i%5) - 2
	}

	serial := make([]byte, m*n*4)
	require.NoError(t, MatMul(NewRuntimeState(1), types.F32, types.F32, serial, lhs, rhs, nil, nil, nil, m, k, n))

	parallel := make([]byte, m*n*4)
	require.NoError(t, MatMul(NewRuntimeState(4), types.F32, types.F32, parallel, lhs, rhs, nil, nil, nil, m, k, n))

	require.Equal(t, serial, parallel)
}
