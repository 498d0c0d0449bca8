// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"github.com/ajroetker/go-lowp/gemm/kernel"
	"github.com/ajroetker/go-lowp/internal/allocator"
)

// Side identifies an operand.
type Side int

const (
	Lhs Side = iota
	Rhs
)

// SideBlockParams is the part of BlockParams that concerns one side.
type SideBlockParams struct {
	L1Width, L2Width int
	L1Depth, L2Depth int
}

// SideParams extracts the side's block extents.
func (p BlockParams) SideParams(side Side) SideBlockParams {
	if side == Lhs {
		return SideBlockParams{L1Width: p.L1Rows, L2Width: p.L2Rows, L1Depth: p.L1Depth, L2Depth: p.L2Depth}
	}
	return SideBlockParams{L1Width: p.L1Cols, L2Width: p.L2Cols, L1Depth: p.L1Depth, L2Depth: p.L2Depth}
}

// PackedSideBlock holds one L2 block of one side in kernel order, along with
// the sum of every width slice. The buffers come from an Allocator and are
// valid until its Decommit.
//
// Within an L1 depth chunk starting at startDepth, the run of kernel width
// starting at startWidth begins at
//
//	L2Width*startDepth + startWidth*min(L1Depth, L2Depth-startDepth)
//
// and holds RegisterSize-deep register blocks back to back.
type PackedSideBlock struct {
	format kernel.SideFormat
	params SideBlockParams
	alloc  *allocator.Allocator
	data   allocator.Handle
	sums   allocator.Handle
}

// NewPackedSideBlock reserves the buffers of a packed block in alloc. They
// can be used once alloc is committed.
func NewPackedSideBlock(format kernel.SideFormat, alloc *allocator.Allocator, params SideBlockParams) *PackedSideBlock {
	return &PackedSideBlock{
		format: format,
		params: params,
		alloc:  alloc,
		data:   alloc.ReserveBytes(params.L2Width * params.L2Depth),
		sums:   alloc.ReserveInt32s(params.L2Width),
	}
}

// Format returns the kernel side format the block is packed for.
func (b *PackedSideBlock) Format() kernel.SideFormat { return b.format }

// Params returns the block extents.
func (b *PackedSideBlock) Params() SideBlockParams { return b.params }

// Data returns the packed bytes.
func (b *PackedSideBlock) Data() []uint8 { return b.alloc.Bytes(b.data) }

// SumsOfEachSlice returns the per-width sums.
func (b *PackedSideBlock) SumsOfEachSlice() []int32 { return b.alloc.Int32s(b.sums) }

func (b *PackedSideBlock) runOffset(startWidth, startDepth int) int {
	runDepth := min(b.params.L1Depth, b.params.L2Depth-startDepth)
	return b.params.L2Width*startDepth + startWidth*runDepth
}

// RunData returns the packed run that starts at (startWidth, startDepth).
func (b *PackedSideBlock) RunData(startWidth, startDepth int) []uint8 {
	return b.Data()[b.runOffset(startWidth, startDepth):]
}

// Writer returns a cursor positioned at the start of the block. Packing goes
// through the cursor; reading goes through RunData.
func (b *PackedSideBlock) Writer() *PackedSideWriter {
	return &PackedSideWriter{block: b, data: b.Data(), cellSize: b.format.Cell.Size()}
}

// PackedSideWriter is the sequential write cursor of a PackedSideBlock.
type PackedSideWriter struct {
	block    *PackedSideBlock
	data     []uint8
	cellSize int
	pos      int
}

// SeekRun moves the cursor to the start of the run at (startWidth, startDepth).
func (w *PackedSideWriter) SeekRun(startWidth, startDepth int) {
	w.pos = w.block.runOffset(startWidth, startDepth)
}

// SeekNextCell advances the cursor by one cell.
func (w *PackedSideWriter) SeekNextCell() {
	w.pos += w.cellSize
}

// SeekForwardNCells advances the cursor by n cells.
func (w *PackedSideWriter) SeekForwardNCells(n int) {
	w.pos += n * w.cellSize
}

// CurrentData returns the buffer from the cursor on.
func (w *PackedSideWriter) CurrentData() []uint8 {
	return w.data[w.pos:]
}

// Pos returns the cursor offset into the block.
func (w *PackedSideWriter) Pos() int { return w.pos }

// PackedResult is the column-major int32 scratch a kernel accumulates one L2
// block into.
type PackedResult struct {
	rows, cols int
	alloc      *allocator.Allocator
	data       allocator.Handle
}

// NewPackedResult reserves an L2Rows x L2Cols result block in alloc.
func NewPackedResult(alloc *allocator.Allocator, params BlockParams) *PackedResult {
	return &PackedResult{
		rows:  params.L2Rows,
		cols:  params.L2Cols,
		alloc: alloc,
		data:  alloc.ReserveInt32s(params.L2Rows * params.L2Cols),
	}
}

// Data returns the accumulators; (r, c) is at r + c*Stride().
func (p *PackedResult) Data() []int32 { return p.alloc.Int32s(p.data) }

// Stride returns the distance between two columns.
func (p *PackedResult) Stride() int { return p.rows }

// Rows returns L2Rows.
func (p *PackedResult) Rows() int { return p.rows }

// Cols returns L2Cols.
func (p *PackedResult) Cols() int { return p.cols }
