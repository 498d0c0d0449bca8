// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import "fmt"

// RegisterSize is the depth granularity of packing. Every packed run has a
// depth that is a multiple of it, and every cell depth must divide it.
const RegisterSize = 16

// CellOrder is the storage order of the bytes inside one cell.
type CellOrder int

const (
	// DepthMajor stores a cell one depth level at a time: offset = w + d*Width.
	DepthMajor CellOrder = iota
	// WidthMajor stores a cell one slice at a time: offset = d + w*Depth.
	WidthMajor
	// Diagonal stores square cells along rotating diagonals.
	Diagonal
)

// String returns a short name for the order.
func (o CellOrder) String() string {
	switch o {
	case DepthMajor:
		return "depth-major"
	case WidthMajor:
		return "width-major"
	case Diagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("CellOrder(%d)", int(o))
	}
}

// CellFormat describes the smallest unit of packed data a kernel consumes:
// a Width x Depth block of one side stored in Order.
type CellFormat struct {
	Width int
	Depth int
	Order CellOrder
}

// Size returns the number of bytes in one cell.
func (c CellFormat) Size() int {
	return c.Width * c.Depth
}

// OffsetIntoCell returns the byte offset of element (w, d) inside a cell.
func OffsetIntoCell(c CellFormat, w, d int) int {
	switch c.Order {
	case DepthMajor:
		return w + d*c.Width
	case WidthMajor:
		return d + w*c.Depth
	case Diagonal:
		size := c.Width
		return ((size+w-d)*size + d) % (size * size)
	default:
		panic("kernel: unknown cell order")
	}
}

// SideFormat describes one side (LHS or RHS) of a kernel: Cells cells of the
// same CellFormat stacked along the width dimension.
type SideFormat struct {
	Cell  CellFormat
	Cells int
}

// Width returns the number of slices (rows of LHS, columns of RHS) covered by
// one kernel invocation.
func (s SideFormat) Width() int {
	return s.Cell.Width * s.Cells
}

// Depth returns the depth of one cell.
func (s SideFormat) Depth() int {
	return s.Cell.Depth
}

// Offset returns the byte offset of element (w, d) inside a packed run, where
// w is in [0, Width()) and d is the depth relative to the start of the run.
// Runs store cells depth-cell major, then by cell index along the width.
func (s SideFormat) Offset(w, d int) int {
	depthCell := d / s.Cell.Depth
	cellIndex := w / s.Cell.Width
	return (depthCell*s.Cells+cellIndex)*s.Cell.Size() +
		OffsetIntoCell(s.Cell, w%s.Cell.Width, d%s.Cell.Depth)
}

// Format describes the micro-tile a kernel computes: Lhs.Width() rows by
// Rhs.Width() columns, consuming Depth() levels per step.
type Format struct {
	Lhs SideFormat
	Rhs SideFormat
}

// Rows returns the number of result rows computed by one Run.
func (f Format) Rows() int { return f.Lhs.Width() }

// Cols returns the number of result columns computed by one Run.
func (f Format) Cols() int { return f.Rhs.Width() }

// Depth returns the cell depth shared by both sides.
func (f Format) Depth() int { return f.Lhs.Depth() }

// String returns e.g. "12x4x2".
func (f Format) String() string {
	return fmt.Sprintf("%dx%dx%d", f.Rows(), f.Cols(), f.Depth())
}

// Validate panics if the format cannot be packed or computed.
func (f Format) Validate() {
	for _, s := range []SideFormat{f.Lhs, f.Rhs} {
		c := s.Cell
		if c.Width <= 0 || c.Depth <= 0 || s.Cells <= 0 {
			panic(fmt.Sprintf("kernel: invalid side format %+v", s))
		}
		if RegisterSize%c.Depth != 0 {
			panic(fmt.Sprintf("kernel: cell depth %d does not divide %d", c.Depth, RegisterSize))
		}
		if c.Order == Diagonal && c.Width != c.Depth {
			panic("kernel: diagonal cells must be square")
		}
	}
	if f.Lhs.Depth() != f.Rhs.Depth() {
		panic(fmt.Sprintf("kernel: lhs depth %d != rhs depth %d", f.Lhs.Depth(), f.Rhs.Depth()))
	}
}
