// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import "github.com/ajroetker/go-lowp/gemm/kernel"

// PackLhs packs an L2 block of the LHS into dst.
func PackLhs(dst *PackedSideBlock, src MatrixMap[uint8]) {
	PackSideBlock(dst, LhsSideMap(src), 1)
}

// PackRhs packs an L2 block of the RHS into dst.
func PackRhs(dst *PackedSideBlock, src MatrixMap[uint8]) {
	PackSideBlock(dst, RhsSideMap(src), 1)
}

// PackSideBlock packs src, which must fit in dst's L2 extents, into kernel
// order. It resets dst's slice sums and then sets
//
//	sums[w] = multiplier * sum_d src(w, d)
//
// Blocks narrower than the kernel width or shallower than a register block
// are zero padded.
func PackSideBlock(dst *PackedSideBlock, src SideMap, multiplier int32) {
	packSideBlock(dst, src, multiplier, true)
}

// packSideBlock lets tests turn the row-copy path off and compare it with
// the per-cell path.
func packSideBlock(dst *PackedSideBlock, src SideMap, multiplier int32, rowCopy bool) {
	params := dst.Params()
	if src.Width() > params.L2Width || src.Depth() > params.L2Depth {
		panic("gemm: source block larger than packed block")
	}
	p := sidePacker{
		format:      dst.Format(),
		params:      params,
		writer:      dst.Writer(),
		sums:        dst.SumsOfEachSlice(),
		src:         src,
		multiplier:  multiplier,
		kernelWidth: dst.Format().Width(),
	}
	p.rowCopy = rowCopy && p.format.Cell.Order == kernel.DepthMajor
	p.packL2()
}

type sidePacker struct {
	format      kernel.SideFormat
	params      SideBlockParams
	writer      *PackedSideWriter
	sums        []int32
	src         SideMap
	multiplier  int32
	kernelWidth int
	rowCopy     bool

	// scratch holds one zero-padded register block.
	scratch []uint8
}

func (p *sidePacker) packL2() {
	clear(p.sums)
	for d := 0; d < p.src.Depth(); d += p.params.L1Depth {
		ds := min(p.params.L1Depth, p.src.Depth()-d)
		for w := 0; w < p.src.Width(); w += p.params.L1Width {
			ws := min(p.params.L1Width, p.src.Width()-w)
			p.packL1(w, ws, d, ds)
		}
	}
}

func (p *sidePacker) packL1(startWidth, width, startDepth, depth int) {
	for w := 0; w < width; w += p.kernelWidth {
		ws := min(p.kernelWidth, width-w)
		p.writer.SeekRun(startWidth+w, startDepth)
		p.packRun(startWidth+w, ws, startDepth, depth)
	}
}

func (p *sidePacker) packRun(startWidth, width, startDepth, depth int) {
	const rs = kernel.RegisterSize
	if width == p.kernelWidth {
		aligned := roundDown(depth, rs)
		for d := 0; d < aligned; d += rs {
			p.pack(p.src.Block(startWidth, startDepth+d, width, rs), startWidth)
		}
		if aligned < depth {
			p.pack(p.complete(p.src.Block(startWidth, startDepth+aligned, width, depth-aligned)), startWidth)
		}
		return
	}
	for d := 0; d < depth; d += rs {
		ds := min(rs, depth-d)
		p.pack(p.complete(p.src.Block(startWidth, startDepth+d, width, ds)), startWidth)
	}
}

// complete copies a partial register block into zeroed scratch of full
// kernel width and register depth, keeping the source order.
func (p *sidePacker) complete(src SideMap) SideMap {
	if p.scratch == nil {
		p.scratch = make([]uint8, p.kernelWidth*kernel.RegisterSize)
	}
	clear(p.scratch)
	stride := kernel.RegisterSize
	if src.Order() == DepthMajor {
		stride = p.kernelWidth
	}
	dst := NewSideMap(p.scratch, p.kernelWidth, kernel.RegisterSize, stride, src.Order())
	ws, ds := dst.WidthStride(), dst.DepthStride()
	for w := range src.Width() {
		for d := range src.Depth() {
			p.scratch[w*ws+d*ds] = src.At(w, d)
		}
	}
	return dst
}

// pack writes one complete register block at the cursor and advances it
// past the block.
func (p *sidePacker) pack(src SideMap, startWidth int) {
	if p.rowCopy && src.Order() == WidthMajor {
		p.packRows(src, startWidth)
	} else {
		p.packCells(src, startWidth)
	}
	p.writer.SeekForwardNCells(p.format.Cells * kernel.RegisterSize / p.format.Cell.Depth)
}

// packCells is the generic path: it visits the block cell by cell, depth
// cells first, and places each element with OffsetIntoCell.
func (p *sidePacker) packCells(src SideMap, startWidth int) {
	cell := p.format.Cell
	dst := p.writer.CurrentData()
	pos := 0
	for cd := 0; cd < kernel.RegisterSize; cd += cell.Depth {
		for cw := 0; cw < p.kernelWidth; cw += cell.Width {
			sums := p.sums[startWidth+cw:]
			for w := range cell.Width {
				var sum int32
				for d := range cell.Depth {
					v := src.At(cw+w, cd+d)
					dst[pos+kernel.OffsetIntoCell(cell, w, d)] = v
					sum += int32(v)
				}
				sums[w] += p.multiplier * sum
			}
			pos += cell.Size()
		}
	}
}

// packRows handles width-major sources feeding depth-major cells: every
// width slice is a contiguous row of RegisterSize bytes that is scattered
// with a fixed stride.
func (p *sidePacker) packRows(src SideMap, startWidth int) {
	cell := p.format.Cell
	cw, cd, size := cell.Width, cell.Depth, cell.Size()
	depthCellStride := p.format.Cells * size
	dst := p.writer.CurrentData()
	for w := range p.kernelWidth {
		row := src.data[w*src.stride:][:kernel.RegisterSize]
		base := (w/cw)*size + w%cw
		var sum int32
		for d, v := range row {
			dst[base+(d/cd)*depthCellStride+(d%cd)*cw] = v
			sum += int32(v)
		}
		p.sums[startWidth+w] += p.multiplier * sum
	}
}
