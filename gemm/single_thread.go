// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

// singleThreadGemm runs the whole product on the calling goroutine with the
// context's main allocator. c.mu must be held.
func singleThreadGemm[T Element](c *Context, lhs, rhs MatrixMap[uint8], result MatrixMap[T],
	lhsOffset, rhsOffset VectorMap, pipeline []OutputStage) {
	rows, cols, depth := lhs.Rows(), rhs.Cols(), lhs.Cols()
	k := c.kernel
	format := k.Format()
	alloc := c.allocator

	params := NewBlockParams(format, rows, cols, depth, 1, c.l1Bytes, c.l2Bytes, c.l2RhsFactor)
	packedLhs := NewPackedSideBlock(format.Lhs, alloc, params.SideParams(Lhs))
	packedRhs := NewPackedSideBlock(format.Rhs, alloc, params.SideParams(Rhs))
	packedResult := NewPackedResult(alloc, params)
	alloc.Commit()
	defer alloc.Decommit()

	packRhsOnce := params.L2Cols >= cols
	if packRhsOnce {
		PackRhs(packedRhs, rhs)
	}
	for r := 0; r < rows; r += params.L2Rows {
		rs := min(params.L2Rows, rows-r)
		PackLhs(packedLhs, lhs.Block(r, 0, rs, depth))
		for col := 0; col < cols; col += params.L2Cols {
			cs := min(params.L2Cols, cols-col)
			if !packRhsOnce {
				PackRhs(packedRhs, rhs.Block(0, col, depth, cs))
			}
			Compute(k, params, packedResult, packedLhs, packedRhs, depth)
			UnpackResult(result, BlockBounds{StartRow: r, StartCol: col, Rows: rs, Cols: cs}, packedResult, depth,
				packedLhs.SumsOfEachSlice(), packedRhs.SumsOfEachSlice(), lhsOffset, rhsOffset, pipeline)
		}
	}
}
