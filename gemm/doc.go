// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Package gemm multiplies uint8 matrices into int32 accumulators and
// requantizes the result through a programmable output pipeline, with no
// floating point on the hot path.
//
// Operands are MatrixMap views of caller-owned slices, in either storage
// order and with any stride. Each operand has a per-row (LHS) or per-column
// (RHS) offset added to its raw bytes before multiplication:
//
//	ctx := gemm.NewContext()
//	defer ctx.Close()
//	ctx.SetMaxNumThreads(0)
//	lhs := gemm.NewMatrixMap(a, rows, depth, gemm.RowMajor)
//	rhs := gemm.NewMatrixMap(b, depth, cols, gemm.ColMajor)
//	res := gemm.NewMatrixMap(c, rows, cols, gemm.ColMajor)
//	gemm.Gemm(ctx, lhs, rhs, res, -128, -128, 0, 1, 8)
//
// # Pipeline
//
// A product is planned in L2 blocks sized to the cache budgets of the
// Context (BlockParams). Each block of each operand is packed into the
// micro-tile layout of the context's kernel, while the sum of every packed
// row (LHS) or column (RHS) is recorded. The kernel multiplies packed blocks
// into an int32 PackedResult, and UnpackResult folds the offsets back in
// using the sums:
//
//	sum_d (a+oa)(b+ob) = sum_d ab + ob*sum_d a + oa*sum_d b + oa*ob*depth
//
// before running the output stages and storing the result.
//
// # Threads
//
// With more than one thread allowed, rows are split into bands. The RHS
// block is packed once on the calling goroutine and shared; every band packs
// its own LHS with its worker's allocator. Workers persist in the Context
// until Close.
package gemm
