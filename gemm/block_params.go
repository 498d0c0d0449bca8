// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"fmt"

	"github.com/ajroetker/go-lowp/gemm/kernel"
)

// BlockParams is the tiling plan of one GEMM: L2 blocks are the unit of
// packing and unpacking, L1 blocks the unit the compute loop walks inside an
// L2 block. Rows and cols are multiples of the kernel tile, depths are
// multiples of kernel.RegisterSize.
type BlockParams struct {
	L2Rows, L2Cols, L2Depth int
	L1Rows, L1Cols, L1Depth int
}

func (p BlockParams) String() string {
	return fmt.Sprintf("L2 %dx%dx%d, L1 %dx%dx%d",
		p.L2Rows, p.L2Cols, p.L2Depth, p.L1Rows, p.L1Cols, p.L1Depth)
}

// NewBlockParams plans the blocking of a rows x cols x depth product split
// across numThreads row bands. l1Bytes and l2Bytes are the cache budgets to
// target; l2RhsFactor is the fraction of l2Bytes given to the packed RHS.
func NewBlockParams(format kernel.Format, rows, cols, depth, numThreads, l1Bytes, l2Bytes int, l2RhsFactor float32) BlockParams {
	if rows <= 0 || cols <= 0 || depth <= 0 {
		panic(fmt.Sprintf("gemm: block params for empty problem %dx%dx%d", rows, cols, depth))
	}
	if numThreads <= 0 {
		panic(fmt.Sprintf("gemm: block params for %d threads", numThreads))
	}
	var p BlockParams
	p.L2Rows, p.L2Cols, p.L2Depth = findL2BlockSizes(format, rows, cols, depth, numThreads, l2Bytes, l2RhsFactor)
	p.L1Rows, p.L1Cols, p.L1Depth = findL1BlockSizes(format, p.L2Rows, p.L2Cols, p.L2Depth, l1Bytes)
	return p
}

// findL2BlockSizes does not block along depth; the RHS block gets
// l2RhsFactor of the budget and the per-thread LHS and result blocks share
// the rest.
func findL2BlockSizes(format kernel.Format, rows, cols, depth, numThreads, l2Bytes int, l2RhsFactor float32) (l2Rows, l2Cols, l2Depth int) {
	l2Depth = roundUp(depth, kernel.RegisterSize)

	maxCols := max(1, int(l2RhsFactor*float32(l2Bytes/l2Depth)))
	colBlocks := max(1, ceilQuotient(cols, maxCols))
	l2Cols = roundUp(ceilQuotient(cols, colBlocks), format.Cols())

	perThreadRows := max(1, roundUp(rows, format.Rows())/numThreads)
	if l2RhsFactor != 1 {
		maxRows := max(1, (l2Bytes-l2Depth*l2Cols)/(numThreads*(l2Depth+4*l2Cols)))
		rowBlocks := max(1, ceilQuotient(perThreadRows, maxRows))
		l2Rows = roundUp(ceilQuotient(perThreadRows, rowBlocks), format.Rows())
	} else {
		l2Rows = roundUp(perThreadRows, format.Rows())
	}
	return l2Rows, l2Cols, l2Depth
}

func findL1BlockSizes(format kernel.Format, rows, cols, depth, l1Bytes int) (l1Rows, l1Cols, l1Depth int) {
	l1Cols = cols

	maxDepth := max(1, (l1Bytes-4*format.Rows()*format.Cols())/(format.Rows()+format.Cols()))
	depthBlocks := max(1, ceilQuotient(depth, maxDepth))
	l1Depth = roundUp(ceilQuotient(depth, depthBlocks), kernel.RegisterSize)

	maxRows := max(1, l1Bytes/(l1Depth+4*l1Cols))
	rowBlocks := max(1, ceilQuotient(rows, maxRows))
	l1Rows = roundUp(ceilQuotient(rows, rowBlocks), format.Rows())
	return l1Rows, l1Cols, l1Depth
}

func ceilQuotient(a, b int) int {
	return (a + b - 1) / b
}

func roundUp(n, m int) int {
	return ceilQuotient(n, m) * m
}

func roundDown(n, m int) int {
	return n / m * m
}
