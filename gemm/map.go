// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import "fmt"

// Order is the storage order of a MatrixMap.
type Order int

const (
	// RowMajor stores each row contiguously.
	RowMajor Order = iota
	// ColMajor stores each column contiguously.
	ColMajor
)

func (o Order) String() string {
	switch o {
	case RowMajor:
		return "RowMajor"
	case ColMajor:
		return "ColMajor"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Transposed returns the other order.
func (o Order) Transposed() Order {
	if o == RowMajor {
		return ColMajor
	}
	return RowMajor
}

// Element is the set of scalar types a MatrixMap can view.
type Element interface {
	uint8 | int16 | int32
}

// MatrixMap is a non-owning view of a rows x cols matrix stored in a
// caller-provided slice. Element (r, c) lives at
// r*RowStride() + c*ColStride().
type MatrixMap[T Element] struct {
	data   []T
	rows   int
	cols   int
	stride int
	order  Order
}

// NewMatrixMap views data as a densely packed rows x cols matrix.
func NewMatrixMap[T Element](data []T, rows, cols int, order Order) MatrixMap[T] {
	stride := cols
	if order == ColMajor {
		stride = rows
	}
	return NewMatrixMapStride(data, rows, cols, stride, order)
}

// NewMatrixMapStride views data as a rows x cols matrix whose rows (RowMajor)
// or columns (ColMajor) are stride elements apart.
func NewMatrixMapStride[T Element](data []T, rows, cols, stride int, order Order) MatrixMap[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("gemm: negative matrix shape %dx%d", rows, cols))
	}
	return MatrixMap[T]{data: data, rows: rows, cols: cols, stride: stride, order: order}
}

// Data returns the viewed slice, starting at element (0, 0).
func (m MatrixMap[T]) Data() []T { return m.data }

// Rows returns the number of rows.
func (m MatrixMap[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m MatrixMap[T]) Cols() int { return m.cols }

// Stride returns the distance between consecutive major slices.
func (m MatrixMap[T]) Stride() int { return m.stride }

// Order returns the storage order.
func (m MatrixMap[T]) Order() Order { return m.order }

// RowStride returns the distance between (r, c) and (r+1, c).
func (m MatrixMap[T]) RowStride() int {
	if m.order == RowMajor {
		return m.stride
	}
	return 1
}

// ColStride returns the distance between (r, c) and (r, c+1).
func (m MatrixMap[T]) ColStride() int {
	if m.order == RowMajor {
		return 1
	}
	return m.stride
}

func (m MatrixMap[T]) offset(r, c int) int {
	return r*m.RowStride() + c*m.ColStride()
}

// At returns element (r, c).
func (m MatrixMap[T]) At(r, c int) T {
	return m.data[m.offset(r, c)]
}

// Set stores v at (r, c).
func (m MatrixMap[T]) Set(r, c int, v T) {
	m.data[m.offset(r, c)] = v
}

// Block returns the rows x cols sub-view whose origin is (startRow, startCol).
func (m MatrixMap[T]) Block(startRow, startCol, rows, cols int) MatrixMap[T] {
	if startRow < 0 || startCol < 0 || startRow+rows > m.rows || startCol+cols > m.cols {
		panic(fmt.Sprintf("gemm: block (%d,%d)+%dx%d out of %dx%d matrix",
			startRow, startCol, rows, cols, m.rows, m.cols))
	}
	var data []T
	if off := m.offset(startRow, startCol); off < len(m.data) {
		data = m.data[off:]
	}
	return MatrixMap[T]{data: data, rows: rows, cols: cols, stride: m.stride, order: m.order}
}

// Transpose returns the cols x rows view of the same storage.
func (m MatrixMap[T]) Transpose() MatrixMap[T] {
	return MatrixMap[T]{data: m.data, rows: m.cols, cols: m.rows, stride: m.stride, order: m.order.Transposed()}
}

// SideOrder is the storage order of a SideMap. WidthMajor means each width
// slice (an LHS row or an RHS column) is contiguous along depth.
type SideOrder int

const (
	// WidthMajor: depth stride 1, width stride Stride.
	WidthMajor SideOrder = iota
	// DepthMajor: width stride 1, depth stride Stride.
	DepthMajor
)

func (o SideOrder) String() string {
	switch o {
	case WidthMajor:
		return "WidthMajor"
	case DepthMajor:
		return "DepthMajor"
	default:
		return fmt.Sprintf("SideOrder(%d)", int(o))
	}
}

// SideMap views one operand as width x depth, where width is the dimension
// that ends up in the kernel tile (LHS rows, RHS columns) and depth is the
// reduction dimension. It lets a single packer serve both sides.
type SideMap struct {
	data   []uint8
	width  int
	depth  int
	stride int
	order  SideOrder
}

// NewSideMap views data as a width x depth side.
func NewSideMap(data []uint8, width, depth, stride int, order SideOrder) SideMap {
	return SideMap{data: data, width: width, depth: depth, stride: stride, order: order}
}

// LhsSideMap views an LHS as (width=rows, depth=cols).
func LhsSideMap(lhs MatrixMap[uint8]) SideMap {
	order := WidthMajor
	if lhs.Order() == ColMajor {
		order = DepthMajor
	}
	return SideMap{data: lhs.data, width: lhs.rows, depth: lhs.cols, stride: lhs.stride, order: order}
}

// RhsSideMap views an RHS as (width=cols, depth=rows).
func RhsSideMap(rhs MatrixMap[uint8]) SideMap {
	order := WidthMajor
	if rhs.Order() == RowMajor {
		order = DepthMajor
	}
	return SideMap{data: rhs.data, width: rhs.cols, depth: rhs.rows, stride: rhs.stride, order: order}
}

// Width returns the width extent.
func (s SideMap) Width() int { return s.width }

// Depth returns the depth extent.
func (s SideMap) Depth() int { return s.depth }

// Order returns the storage order.
func (s SideMap) Order() SideOrder { return s.order }

// WidthStride returns the distance between (w, d) and (w+1, d).
func (s SideMap) WidthStride() int {
	if s.order == WidthMajor {
		return s.stride
	}
	return 1
}

// DepthStride returns the distance between (w, d) and (w, d+1).
func (s SideMap) DepthStride() int {
	if s.order == WidthMajor {
		return 1
	}
	return s.stride
}

// At returns element (w, d).
func (s SideMap) At(w, d int) uint8 {
	return s.data[w*s.WidthStride()+d*s.DepthStride()]
}

// Block returns the width x depth sub-view at (startWidth, startDepth).
func (s SideMap) Block(startWidth, startDepth, width, depth int) SideMap {
	if startWidth < 0 || startDepth < 0 || startWidth+width > s.width || startDepth+depth > s.depth {
		panic(fmt.Sprintf("gemm: side block (%d,%d)+%dx%d out of %dx%d side",
			startWidth, startDepth, width, depth, s.width, s.depth))
	}
	var data []uint8
	if off := startWidth*s.WidthStride() + startDepth*s.DepthStride(); off < len(s.data) {
		data = s.data[off:]
	}
	return SideMap{data: data, width: width, depth: depth, stride: s.stride, order: s.order}
}

// VectorShape says which output index a per-channel vector is indexed by.
type VectorShape int

const (
	// Col vectors have one entry per result row.
	Col VectorShape = iota
	// Row vectors have one entry per result column.
	Row
)

func (s VectorShape) String() string {
	switch s {
	case Col:
		return "Col"
	case Row:
		return "Row"
	default:
		return fmt.Sprintf("VectorShape(%d)", int(s))
	}
}

// Transposed returns the shape of the same vector in the transposed problem.
func (s VectorShape) Transposed() VectorShape {
	if s == Col {
		return Row
	}
	return Col
}

// VectorMap is an int32 vector that is either backed by a slice or is one
// value broadcast to every index. Offsets and per-channel pipeline
// parameters are VectorMaps so the same code serves both cases.
type VectorMap struct {
	data  []int32
	n     int
	dup   bool
	value int32
}

// NewVectorMap views data as a vector of len(data) entries.
func NewVectorMap(data []int32) VectorMap {
	return VectorMap{data: data, n: len(data)}
}

// VectorDup returns the length-n vector whose entries all equal v.
func VectorDup(v int32, n int) VectorMap {
	return VectorMap{n: n, dup: true, value: v}
}

// Len returns the number of entries.
func (v VectorMap) Len() int { return v.n }

// IsDup reports whether v broadcasts a single value.
func (v VectorMap) IsDup() bool { return v.dup }

// At returns entry i.
func (v VectorMap) At(i int) int32 {
	if v.dup {
		return v.value
	}
	return v.data[i]
}

// Block returns entries [start, start+n).
func (v VectorMap) Block(start, n int) VectorMap {
	if start < 0 || start+n > v.n {
		panic(fmt.Sprintf("gemm: vector block %d+%d out of %d", start, n, v.n))
	}
	if v.dup {
		return VectorDup(v.value, n)
	}
	return NewVectorMap(v.data[start : start+n])
}
