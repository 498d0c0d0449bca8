// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm_test

import (
	"fmt"

	"github.com/ajroetker/go-lowp/gemm"
)

func ExampleGemm() {
	ctx := gemm.NewContext()
	defer ctx.Close()

	// 2x3 times 3x2, with the offsets turning the stored bytes into
	// [-1 0 1; 2 3 4] and [1 2; 3 4; 5 6].
	lhs := gemm.NewMatrixMap([]uint8{9, 10, 11, 12, 13, 14}, 2, 3, gemm.RowMajor)
	rhs := gemm.NewMatrixMap([]uint8{1, 3, 5, 2, 4, 6}, 3, 2, gemm.ColMajor)
	result := gemm.NewMatrixMap(make([]uint8, 4), 2, 2, gemm.RowMajor)

	gemm.Gemm(ctx, lhs, rhs, result, -10, 0, 0, 1, 0)
	fmt.Println(result.Data())
	// Output: [4 4 31 40]
}

func ExampleGemmWithOutputPipeline() {
	ctx := gemm.NewContext()
	defer ctx.Close()

	lhs := gemm.NewMatrixMap([]uint8{1, 2, 3, 4}, 2, 2, gemm.RowMajor)
	rhs := gemm.NewMatrixMap([]uint8{5, 6, 7, 8}, 2, 2, gemm.RowMajor)
	result := gemm.NewMatrixMap(make([]int32, 4), 2, 2, gemm.RowMajor)

	bias := gemm.NewVectorMap([]int32{100, -100})
	gemm.GemmWithOutputPipeline(ctx, lhs, rhs, result,
		gemm.VectorDup(0, 2), gemm.VectorDup(0, 2),
		[]gemm.OutputStage{gemm.BiasAddition{Bias: bias, Shape: gemm.Row}})
	fmt.Println(result.Data())
	// Output: [119 -78 143 -50]
}
