// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import "fmt"

// cell4x2 is the cell shape used by the tuned kernels: four slices, two depth
// levels, depth-major. One LHS cell times one RHS cell is a 4x4 outer product
// over two depth levels.
var cell4x2 = CellFormat{Width: 4, Depth: 2, Order: DepthMajor}

const (
	maxLhsCells = 3
	maxRhsCells = 2
)

// cells4x2 is a portable Go kernel built from 4x2 depth-major cells. It
// keeps one 4x4 accumulator block per (lhs cell, rhs cell) pair in a
// fixed-size array and unrolls the cell product.
type cells4x2 struct {
	name     string
	format   Format
	lhsCells int
	rhsCells int
}

func newCells4x2(lhsCells, rhsCells int) *cells4x2 {
	if lhsCells < 1 || lhsCells > maxLhsCells || rhsCells < 1 || rhsCells > maxRhsCells {
		panic(fmt.Sprintf("kernel: unsupported 4x2 cell grid %dx%d", lhsCells, rhsCells))
	}
	f := Format{
		Lhs: SideFormat{Cell: cell4x2, Cells: lhsCells},
		Rhs: SideFormat{Cell: cell4x2, Cells: rhsCells},
	}
	return &cells4x2{
		name:     "cells4x2-" + f.String(),
		format:   f,
		lhsCells: lhsCells,
		rhsCells: rhsCells,
	}
}

func (k *cells4x2) Name() string   { return k.name }
func (k *cells4x2) Format() Format { return k.format }

func (k *cells4x2) Run(dst []int32, dstRowStride, dstColStride int, lhs, rhs []uint8, startDepth, runDepth int) {
	var acc [maxLhsCells * maxRhsCells][16]int32
	lhsStep := 8 * k.lhsCells
	rhsStep := 8 * k.rhsCells

	for d := 0; d < runDepth; d += 2 {
		lhsBase := (d / 2) * lhsStep
		rhsBase := (d / 2) * rhsStep
		for rc := range k.lhsCells {
			l := (*[8]uint8)(lhs[lhsBase+rc*8 : lhsBase+rc*8+8])
			for cc := range k.rhsCells {
				r := (*[8]uint8)(rhs[rhsBase+cc*8 : rhsBase+cc*8+8])
				mulAdd4x4x2(&acc[rc*maxRhsCells+cc], l, r)
			}
		}
	}

	for rc := range k.lhsCells {
		for cc := range k.rhsCells {
			block := &acc[rc*maxRhsCells+cc]
			for j := range 4 {
				col := (cc*4 + j) * dstColStride
				for i := range 4 {
					idx := (rc*4+i)*dstRowStride + col
					if startDepth == 0 {
						dst[idx] = block[j*4+i]
					} else {
						dst[idx] += block[j*4+i]
					}
				}
			}
		}
	}
}

// mulAdd4x4x2 accumulates the product of a 4x2 LHS cell and a 4x2 RHS cell
// into a column-major 4x4 block.
func mulAdd4x4x2(acc *[16]int32, l, r *[8]uint8) {
	l0, l1, l2, l3 := int32(l[0]), int32(l[1]), int32(l[2]), int32(l[3])
	l4, l5, l6, l7 := int32(l[4]), int32(l[5]), int32(l[6]), int32(l[7])
	for c := range 4 {
		r0, r1 := int32(r[c]), int32(r[4+c])
		acc[c*4+0] += l0*r0 + l4*r1
		acc[c*4+1] += l1*r0 + l5*r1
		acc[c*4+2] += l2*r0 + l6*r1
		acc[c*4+3] += l3*r0 + l7*r1
	}
}
