// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math/bits"
	"math/rand/v2"

	"github.com/ajroetker/go-lowp/gemm"
)

// problem holds the inputs of one GEMM in the layouts the legacy entry point
// expects: every matrix column-major and tightly packed.
type problem struct {
	shape                  shape
	lhs, rhs               gemm.MatrixMap[uint8]
	lhsOffset, rhsOffset   int32
	resultOffset, multiply int32
	shift                  int
}

func newProblem(s shape, seed uint64) *problem {
	rng := rand.New(rand.NewPCG(seed, uint64(s.Rows)<<32|uint64(s.Cols)))
	p := &problem{
		shape:     s,
		lhs:       randomMatrix(rng, s.Rows, s.Depth),
		rhs:       randomMatrix(rng, s.Depth, s.Cols),
		lhsOffset: -rng.Int32N(256),
		rhsOffset: -rng.Int32N(256),
		multiply:  1 + rng.Int32N(16),
	}
	// Scale the products back into [0, 255] for typical inputs.
	p.shift = max(0, bits.Len(uint(s.Depth)*255*255*uint(p.multiply))-9)
	p.resultOffset = int32(s.Depth) * 128 * 128
	return p
}

func randomMatrix(rng *rand.Rand, rows, cols int) gemm.MatrixMap[uint8] {
	data := make([]uint8, rows*cols)
	for i := range data {
		data[i] = uint8(rng.IntN(256))
	}
	return gemm.NewMatrixMap(data, rows, cols, gemm.ColMajor)
}

func (p *problem) newResult() gemm.MatrixMap[uint8] {
	return gemm.NewMatrixMap(make([]uint8, p.shape.Rows*p.shape.Cols), p.shape.Rows, p.shape.Cols, gemm.ColMajor)
}

func (p *problem) run(ctx *gemm.Context, result gemm.MatrixMap[uint8]) {
	gemm.Gemm(ctx, p.lhs, p.rhs, result, p.lhsOffset, p.rhsOffset, p.resultOffset, p.multiply, p.shift)
}

// reference computes the requantized product with a plain triple loop.
func (p *problem) reference() gemm.MatrixMap[uint8] {
	out := p.newResult()
	var rounding int32
	if p.shift > 0 {
		rounding = 1 << (p.shift - 1)
	}
	for r := range p.shape.Rows {
		for c := range p.shape.Cols {
			var acc int32
			for d := range p.shape.Depth {
				acc += (int32(p.lhs.At(r, d)) + p.lhsOffset) * (int32(p.rhs.At(d, c)) + p.rhsOffset)
			}
			v := ((acc+p.resultOffset)*p.multiply + rounding) >> p.shift
			out.Set(r, c, uint8(min(max(v, 0), 255)))
		}
	}
	return out
}
