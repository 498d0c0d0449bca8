// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"github.com/ajroetker/go-lowp/gemm/kernel"
	"github.com/ajroetker/go-lowp/gemm/workers"
	"github.com/ajroetker/go-lowp/internal/allocator"
	"github.com/ajroetker/go-lowp/internal/cpuinfo"
)

// minCubicSizePerThread is the smallest rows*cols*depth volume worth giving
// its own thread.
const minCubicSizePerThread = 64 * 1024

// HowManyThreads returns the number of row bands to split a product into.
// maxNumThreads follows Context.SetMaxNumThreads. The result is also
// bounded so that no band is thinner than max(kernelRows, 16) rows and no
// thread gets less than minCubicSizePerThread of work.
func HowManyThreads(maxNumThreads, rows, cols, depth, kernelRows int) int {
	if maxNumThreads == 1 {
		return 1
	}
	n := maxNumThreads
	if n == 0 {
		n = cpuinfo.HardwareConcurrency()
	}
	n = min(n, ceilQuotient(rows, max(kernelRows, 16)))
	n = int(min(int64(n), int64(rows)*int64(cols)*int64(depth)/minCubicSizePerThread))
	return max(n, 1)
}

// multiThreadGemm splits rows into bands, one task each. For every L2 column
// block the RHS is packed once on the calling goroutine and then read by all
// tasks. c.mu must be held.
func multiThreadGemm[T Element](c *Context, lhs, rhs MatrixMap[uint8], result MatrixMap[T],
	lhsOffset, rhsOffset VectorMap, pipeline []OutputStage) {
	rows, cols, depth := lhs.Rows(), rhs.Cols(), lhs.Cols()
	k := c.kernel
	format := k.Format()

	taskCount := HowManyThreads(c.maxNumThreads, rows, cols, depth, format.Rows())
	if taskCount == 1 {
		singleThreadGemm(c, lhs, rhs, result, lhsOffset, rhsOffset, pipeline)
		return
	}

	alloc := c.allocator
	params := NewBlockParams(format, rows, cols, depth, taskCount, c.l1Bytes, c.l2Bytes, c.l2RhsFactor)
	packedRhs := NewPackedSideBlock(format.Rhs, alloc, params.SideParams(Rhs))
	alloc.Commit()
	defer alloc.Decommit()

	pool := c.workersPool()
	tasks := make([]workers.Task, taskCount)
	for col := 0; col < cols; col += params.L2Cols {
		cs := min(params.L2Cols, cols-col)
		PackRhs(packedRhs, rhs.Block(0, col, depth, cs))

		nextStartRow := 0
		for n := range taskCount {
			startRow := nextStartRow
			nextStartRow = min(roundUp(rows*(n+1)/taskCount, format.Rows()), rows)
			tasks[n] = &gemmTask[T]{
				kernel:    k,
				params:    params,
				lhs:       lhs,
				packedRhs: packedRhs,
				result:    result,
				bounds:    BlockBounds{StartRow: startRow, StartCol: col, Rows: nextStartRow - startRow, Cols: cs},
				lhsOffset: lhsOffset,
				rhsOffset: rhsOffset,
				pipeline:  pipeline,
			}
		}
		pool.Execute(tasks)
	}
}

// gemmTask computes one row band of one L2 column block against a shared
// packed RHS.
type gemmTask[T Element] struct {
	kernel    kernel.Kernel
	params    BlockParams
	lhs       MatrixMap[uint8]
	packedRhs *PackedSideBlock
	result    MatrixMap[T]
	bounds    BlockBounds
	lhsOffset VectorMap
	rhsOffset VectorMap
	pipeline  []OutputStage
}

// Run packs the band's LHS into local, one L2 row block at a time.
func (t *gemmTask[T]) Run(local *allocator.Allocator) {
	b := t.bounds
	if b.Rows == 0 {
		return
	}
	depth := t.lhs.Cols()
	format := t.kernel.Format()
	packedLhs := NewPackedSideBlock(format.Lhs, local, t.params.SideParams(Lhs))
	packedResult := NewPackedResult(local, t.params)
	local.Commit()
	defer local.Decommit()

	for r := 0; r < b.Rows; r += t.params.L2Rows {
		rs := min(t.params.L2Rows, b.Rows-r)
		PackLhs(packedLhs, t.lhs.Block(b.StartRow+r, 0, rs, depth))
		Compute(t.kernel, t.params, packedResult, packedLhs, t.packedRhs, depth)
		UnpackResult(t.result, BlockBounds{StartRow: b.StartRow + r, StartCol: b.StartCol, Rows: rs, Cols: b.Cols},
			packedResult, depth, packedLhs.SumsOfEachSlice(), t.packedRhs.SumsOfEachSlice(),
			t.lhsOffset, t.rhsOffset, t.pipeline)
	}
}
