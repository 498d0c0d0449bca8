// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import "github.com/ajroetker/go-lowp/gemm/kernel"

// Compute multiplies a packed LHS block by a packed RHS block into dst,
// driving k over every kernel tile of the L2 block. depth is the depth of
// the packed data; it is rounded up to the kernel's cell depth since the
// padding is zero.
func Compute(k kernel.Kernel, params BlockParams, dst *PackedResult, lhs, rhs *PackedSideBlock, depth int) {
	format := k.Format()
	depth = roundUp(depth, format.Depth())
	acc := dst.Data()
	stride := dst.Stride()
	for d := 0; d < depth; d += params.L1Depth {
		ds := min(params.L1Depth, depth-d)
		for r := 0; r < params.L2Rows; r += params.L1Rows {
			rs := min(params.L1Rows, params.L2Rows-r)
			computeL1(k, format, acc, stride, lhs, rhs, r, rs, params.L2Cols, d, ds)
		}
	}
}

func computeL1(k kernel.Kernel, format kernel.Format, acc []int32, stride int, lhs, rhs *PackedSideBlock, startRow, rows, cols, startDepth, depth int) {
	for c := 0; c < cols; c += format.Cols() {
		rhsRun := rhs.RunData(c, startDepth)
		for r := 0; r < rows; r += format.Rows() {
			row := startRow + r
			k.Run(acc[row+c*stride:], 1, stride, lhs.RunData(row, startDepth), rhsRun, startDepth, depth)
		}
	}
}
