// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

// BlockBounds locates a block of the result matrix.
type BlockBounds struct {
	StartRow, StartCol int
	Rows, Cols         int
}

// UnpackResult turns the raw products of src into true products for the
// result block at bounds, runs them through pipeline and stores them in dst.
// lhsSums and rhsSums are the slice sums of the packed blocks, indexed from
// the block origin; lhsOffset and rhsOffset are indexed by result row and
// column. depth is the true (unpadded) depth.
//
// The value fed to the pipeline at (r, c) is
//
//	xx + lhsSums[r]*rhsOffset[c] + rhsSums[c]*lhsOffset[r] + lhsOffset[r]*rhsOffset[c]*depth
func UnpackResult[T Element](dst MatrixMap[T], bounds BlockBounds, src *PackedResult, depth int,
	lhsSums, rhsSums []int32, lhsOffset, rhsOffset VectorMap, pipeline []OutputStage) {
	u := unpacker[T]{
		dst:       dst,
		bounds:    bounds,
		acc:       src.Data(),
		stride:    src.Stride(),
		depth:     int32(depth),
		lhsSums:   lhsSums,
		rhsSums:   rhsSums,
		lhsOffset: lhsOffset,
		rhsOffset: rhsOffset,
		pipeline:  pipeline,
	}
	for c := 0; c < bounds.Cols; {
		cs := fragmentExtent(bounds.Cols - c)
		for r := 0; r < bounds.Rows; {
			rs := fragmentExtent(bounds.Rows - r)
			u.unpackFragment(r, c, rs, cs)
			r += rs
		}
		c += cs
	}
}

// fragmentExtent picks the 8, 4 or 1 wide step for the remaining extent.
func fragmentExtent(remaining int) int {
	switch {
	case remaining >= FragmentSize:
		return FragmentSize
	case remaining >= 4:
		return 4
	default:
		return 1
	}
}

type unpacker[T Element] struct {
	dst                  MatrixMap[T]
	bounds               BlockBounds
	acc                  []int32
	stride               int
	depth                int32
	lhsSums, rhsSums     []int32
	lhsOffset, rhsOffset VectorMap
	pipeline             []OutputStage
	frag                 Fragment
}

// unpackFragment handles the rows x cols fragment at (r, c) relative to the
// block origin.
func (u *unpacker[T]) unpackFragment(r, c, rows, cols int) {
	f := &u.frag
	f.Row, f.Col = u.bounds.StartRow+r, u.bounds.StartCol+c
	f.Rows, f.Cols = rows, cols
	for j := range cols {
		rhsSum := u.rhsSums[c+j]
		rhsOffset := u.rhsOffset.At(f.Col + j)
		col := u.acc[(c+j)*u.stride+r:]
		for i := range rows {
			lhsOffset := u.lhsOffset.At(f.Row + i)
			f.Data[i+j*FragmentSize] = col[i] +
				u.lhsSums[r+i]*rhsOffset +
				rhsSum*lhsOffset +
				lhsOffset*rhsOffset*u.depth
		}
	}
	for _, stage := range u.pipeline {
		stage.Eval(f)
	}
	for j := range cols {
		for i := range rows {
			u.dst.Set(f.Row+i, f.Col+j, T(f.Data[i+j*FragmentSize]))
		}
	}
}
