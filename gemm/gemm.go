// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import "fmt"

// Gemm computes result = requantize((lhs + lhsOffset) * (rhs + rhsOffset))
// with the default uint8 pipeline:
//
//	result[r][c] = clamp(((product[r][c] + resultOffset)*resultMultInt + 2^(resultShift-1)) >> resultShift, 0, 255)
//
// The offsets apply to every element of their operand.
func Gemm(ctx *Context, lhs, rhs, result MatrixMap[uint8], lhsOffset, rhsOffset, resultOffset, resultMultInt int32, resultShift int) {
	GemmWithOutputPipeline(ctx, lhs, rhs, result,
		VectorDup(lhsOffset, lhs.Rows()), VectorDup(rhsOffset, rhs.Cols()),
		DefaultPipeline(resultOffset, resultMultInt, resultShift))
}

// GemmWithOutputPipeline computes the int32 product of (lhs + lhsOffset) and
// (rhs + rhsOffset), where lhsOffset has one entry per LHS row and rhsOffset
// one entry per RHS column, runs it through pipeline and stores it in result.
//
// A uint8 result needs a pipeline ending in SaturatingCastToUint8, an int16
// result one ending in SaturatingCastToInt16. An int32 result takes any
// pipeline; the empty one stores the raw product.
//
// Inconsistent shapes panic. If any dimension is zero the call does nothing.
func GemmWithOutputPipeline[T Element](ctx *Context, lhs, rhs MatrixMap[uint8], result MatrixMap[T],
	lhsOffset, rhsOffset VectorMap, pipeline []OutputStage) {
	rows, cols, depth := lhs.Rows(), rhs.Cols(), lhs.Cols()
	if rhs.Rows() != depth {
		panic(fmt.Sprintf("gemm: lhs.Cols() %d != rhs.Rows() %d", depth, rhs.Rows()))
	}
	if result.Rows() != rows || result.Cols() != cols {
		panic(fmt.Sprintf("gemm: result is %dx%d, want %dx%d", result.Rows(), result.Cols(), rows, cols))
	}
	if lhsOffset.Len() != rows || rhsOffset.Len() != cols {
		panic(fmt.Sprintf("gemm: offsets have %d and %d entries, want %d and %d",
			lhsOffset.Len(), rhsOffset.Len(), rows, cols))
	}
	checkPipeline[T](pipeline)
	if rows == 0 || cols == 0 || depth == 0 {
		return
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	// Threads split rows, so prefer the orientation with more of them.
	if rows < cols {
		multiThreadGemm(ctx, rhs.Transpose(), lhs.Transpose(), result.Transpose(),
			rhsOffset, lhsOffset, transposePipeline(pipeline))
		return
	}
	multiThreadGemm(ctx, lhs, rhs, result, lhsOffset, rhsOffset, pipeline)
}
