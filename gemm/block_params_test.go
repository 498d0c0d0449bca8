// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-lowp/gemm/kernel"
	"github.com/ajroetker/go-lowp/internal/cpuinfo"
)

func TestBlockParamsInvariants(t *testing.T) {
	formats := []kernel.Format{
		kernel.Kernel4x4.Format(),
		kernel.Kernel12x8.Format(),
		{Lhs: side(3, 4, kernel.DepthMajor, 1), Rhs: side(5, 4, kernel.DepthMajor, 1)},
	}
	budgets := []struct {
		l1, l2 int
		factor float32
	}{
		{16 * 1024, 256 * 1024, 0.75},
		{32 * 1024, 4 * 1024 * 1024, 1},
		{256, 4096, 0.5},
	}
	sizes := [][3]int{{1, 1, 1}, {7, 300, 5}, {300, 7, 5}, {100, 100, 1000}, {2000, 1500, 700}}
	for _, f := range formats {
		for _, b := range budgets {
			for _, size := range sizes {
				for _, threads := range []int{1, 3, 8} {
					rows, cols, depth := size[0], size[1], size[2]
					name := fmt.Sprintf("%v/%d-%d-%v/%dx%dx%d/%d", f, b.l1, b.l2, b.factor, rows, cols, depth, threads)
					t.Run(name, func(t *testing.T) {
						p := NewBlockParams(f, rows, cols, depth, threads, b.l1, b.l2, b.factor)
						assert.Zero(t, p.L2Rows%f.Rows(), "L2Rows %d", p.L2Rows)
						assert.Zero(t, p.L2Cols%f.Cols(), "L2Cols %d", p.L2Cols)
						assert.Zero(t, p.L1Rows%f.Rows(), "L1Rows %d", p.L1Rows)
						assert.Zero(t, p.L2Depth%kernel.RegisterSize)
						assert.Zero(t, p.L1Depth%kernel.RegisterSize)
						assert.Equal(t, roundUp(depth, kernel.RegisterSize), p.L2Depth)
						assert.LessOrEqual(t, p.L1Depth, p.L2Depth)
						assert.LessOrEqual(t, p.L1Rows, p.L2Rows)
						assert.Equal(t, p.L2Cols, p.L1Cols)
						assert.LessOrEqual(t, p.L2Cols, roundUp(cols, f.Cols()))
						assert.LessOrEqual(t, p.L2Rows, roundUp(rows, f.Rows()))
						assert.Equal(t, p, NewBlockParams(f, rows, cols, depth, threads, b.l1, b.l2, b.factor))
					})
				}
			}
		}
	}
}

func TestBlockParamsSmallProblemIsOneTile(t *testing.T) {
	f := kernel.Kernel4x4.Format()
	p := NewBlockParams(f, 3, 4, 10, 1, 16*1024, 256*1024, 0.75)
	assert.Equal(t, BlockParams{L2Rows: 4, L2Cols: 4, L2Depth: 16, L1Rows: 4, L1Cols: 4, L1Depth: 16}, p)
	assert.Equal(t, "L2 4x4x16, L1 4x4x16", p.String())
}

func TestBlockParamsSplitsLargeProblems(t *testing.T) {
	f := kernel.Kernel4x4.Format()
	p := NewBlockParams(f, 1000, 1000, 1000, 1, 1024, 16*1024, 0.75)
	assert.Less(t, p.L2Cols, 1000)
	assert.Less(t, p.L2Rows, 1000)
	assert.Less(t, p.L1Depth, p.L2Depth)

	// With an RHS factor of 1 the rows are not blocked at L2.
	p = NewBlockParams(f, 1000, 1000, 1000, 4, 1024, 16*1024, 1)
	assert.Equal(t, 252, p.L2Rows)
}

func TestBlockParamsPanics(t *testing.T) {
	f := kernel.Kernel4x4.Format()
	assert.Panics(t, func() { NewBlockParams(f, 0, 1, 1, 1, 1024, 4096, 1) })
	assert.Panics(t, func() { NewBlockParams(f, 1, 1, 0, 1, 1024, 4096, 1) })
	assert.Panics(t, func() { NewBlockParams(f, 1, 1, 1, 0, 1024, 4096, 1) })
}

func TestHowManyThreads(t *testing.T) {
	tests := []struct {
		name                                 string
		maxThreads, rows, cols, depth, kRows int
		want                                 int
	}{
		{"forced-single", 1, 1000, 1000, 1000, 12, 1},
		{"cap", 4, 1000, 1000, 1000, 12, 4},
		{"thin-bands", 8, 20, 1000, 1000, 4, 2},
		{"wide-kernel", 8, 40, 1000, 1000, 24, 2},
		{"volume", 8, 64, 64, 64, 4, 4},
		{"tiny", 8, 16, 16, 16, 4, 1},
		{"volume-beyond-int32", 8, 2048, 2048, 2048, 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HowManyThreads(tt.maxThreads, tt.rows, tt.cols, tt.depth, tt.kRows))
		})
	}
	n := HowManyThreads(0, 4096, 4096, 4096, 4)
	require.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, cpuinfo.HardwareConcurrency())
}
