// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Package kernel defines the micro-tile formats and the inner kernels that
// multiply packed blocks of uint8 into int32 accumulators.
//
// A kernel consumes one packed run of each side, laid out as described by
// its Format, and computes a Format().Rows() x Format().Cols() tile:
//
//	dst[r*dstRowStride + c*dstColStride] (=|+=) sum_d lhs(r, d) * rhs(c, d)
//
// The destination is overwritten when startDepth is zero and accumulated into
// otherwise, so a long depth can be split into several runs.
package kernel

// Kernel multiplies packed runs. Implementations must be safe for concurrent
// use: a single kernel is shared by all tasks of a GEMM.
type Kernel interface {
	// Name identifies the kernel, e.g. "reference-12x4x2".
	Name() string

	// Format returns the micro-tile layout the kernel consumes.
	Format() Format

	// Run computes one Rows() x Cols() tile from runDepth levels of packed
	// data. runDepth is a multiple of Format().Depth().
	Run(dst []int32, dstRowStride, dstColStride int, lhs, rhs []uint8, startDepth, runDepth int)
}

// reference is the portable kernel every format can fall back to. It walks
// the packed cells exactly as the packer wrote them.
type reference struct {
	name   string
	format Format
}

// NewReference returns the portable nested-loop kernel for f.
func NewReference(f Format) Kernel {
	f.Validate()
	return &reference{name: "reference-" + f.String(), format: f}
}

func (k *reference) Name() string   { return k.name }
func (k *reference) Format() Format { return k.format }

func (k *reference) Run(dst []int32, dstRowStride, dstColStride int, lhs, rhs []uint8, startDepth, runDepth int) {
	f := k.format
	rows, cols := f.Rows(), f.Cols()
	if startDepth == 0 {
		for c := range cols {
			for r := range rows {
				dst[r*dstRowStride+c*dstColStride] = 0
			}
		}
	}

	lcell, rcell := f.Lhs.Cell, f.Rhs.Cell
	depthCells := runDepth / f.Depth()
	for dc := range depthCells {
		for rc := range f.Lhs.Cells {
			lhsCell := lhs[(dc*f.Lhs.Cells+rc)*lcell.Size():]
			for cc := range f.Rhs.Cells {
				rhsCell := rhs[(dc*f.Rhs.Cells+cc)*rcell.Size():]
				for di := range f.Depth() {
					for ri := range lcell.Width {
						a := int32(lhsCell[OffsetIntoCell(lcell, ri, di)])
						r := ri + rc*lcell.Width
						for ci := range rcell.Width {
							b := int32(rhsCell[OffsetIntoCell(rcell, ci, di)])
							c := ci + cc*rcell.Width
							dst[r*dstRowStride+c*dstColStride] += a * b
						}
					}
				}
			}
		}
	}
}
