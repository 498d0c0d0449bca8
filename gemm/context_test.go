// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-lowp/gemm/kernel"
	"github.com/ajroetker/go-lowp/internal/cpuinfo"
)

func TestContextDefaults(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()
	assert.Equal(t, defaultMaxNumThreads, ctx.MaxNumThreads())
	assert.Equal(t, cpuinfo.L1CacheSize(), ctx.L1BytesToUse())
	assert.Equal(t, cpuinfo.L2CacheSize(), ctx.L2BytesToUse())
	assert.Equal(t, cpuinfo.L2RhsFactor(), ctx.L2RhsFactor())
	assert.Equal(t, kernel.Default(), ctx.Kernel())
	assert.Nil(t, ctx.pool, "workers start lazily")
}

func TestContextSetters(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()
	ctx.SetMaxNumThreads(0)
	ctx.SetL1BytesToUse(1 << 10)
	ctx.SetL2BytesToUse(1 << 20)
	ctx.SetL2RhsFactor(1)
	ctx.SetKernel(kernel.Kernel12x4)
	assert.Zero(t, ctx.MaxNumThreads())
	assert.Equal(t, 1<<10, ctx.L1BytesToUse())
	assert.Equal(t, 1<<20, ctx.L2BytesToUse())
	assert.Equal(t, float32(1), ctx.L2RhsFactor())
	assert.Equal(t, "cells4x2-12x4x2", ctx.Kernel().Name())

	assert.Panics(t, func() { ctx.SetMaxNumThreads(-1) })
	assert.Panics(t, func() { ctx.SetL1BytesToUse(0) })
	assert.Panics(t, func() { ctx.SetL2BytesToUse(-5) })
	assert.Panics(t, func() { ctx.SetL2RhsFactor(0) })
	assert.Panics(t, func() { ctx.SetL2RhsFactor(1.5) })
	assert.Panics(t, func() { ctx.SetKernel(nil) })
	assert.Panics(t, func() {
		ctx.SetKernel(kernel.NewReference(kernel.Format{Lhs: side(1, 3, kernel.DepthMajor, 1), Rhs: side(1, 3, kernel.DepthMajor, 1)}))
	})
}

func TestContextSerializesCalls(t *testing.T) {
	const rows, cols, depth = 70, 50, 90
	ctx := NewContext()
	defer ctx.Close()
	ctx.SetMaxNumThreads(2)

	lhs := lcgMatrix(rows, depth, RowMajor, 3)
	rhs := lcgMatrix(depth, cols, ColMajor, 4)
	want := referenceGemm(lhs, rhs, -3, -4, 100, 7, 19)

	var g errgroup.Group
	results := make([]MatrixMap[uint8], 8)
	for i := range results {
		results[i] = newMatrix[uint8](rows, cols, ColMajor)
		g.Go(func() error {
			Gemm(ctx, lhs, rhs, results[i], -3, -4, 100, 7, 19)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i, res := range results {
		require.Equal(t, want, elements(res), "caller %d", i)
	}
}
