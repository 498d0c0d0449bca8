// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixMapLayout(t *testing.T) {
	data := make([]int32, 4*10)
	for i := range data {
		data[i] = int32(i)
	}

	rm := NewMatrixMapStride(data, 3, 4, 10, RowMajor)
	assert.Equal(t, 10, rm.RowStride())
	assert.Equal(t, 1, rm.ColStride())
	assert.Equal(t, int32(2*10+3), rm.At(2, 3))

	cm := NewMatrixMapStride(data, 3, 4, 10, ColMajor)
	assert.Equal(t, 1, cm.RowStride())
	assert.Equal(t, 10, cm.ColStride())
	assert.Equal(t, int32(2+3*10), cm.At(2, 3))

	packed := NewMatrixMap(data, 5, 8, ColMajor)
	assert.Equal(t, 5, packed.Stride())
	packed.Set(4, 7, -1)
	assert.Equal(t, int32(-1), data[4+7*5])
}

func TestMatrixMapBlockAndTranspose(t *testing.T) {
	data := make([]uint8, 6*7)
	for i := range data {
		data[i] = uint8(i)
	}
	for _, order := range orders {
		m := NewMatrixMap(data, 6, 7, order)
		b := m.Block(2, 3, 3, 4)
		assert.Equal(t, 3, b.Rows())
		assert.Equal(t, 4, b.Cols())
		for r := range 3 {
			for c := range 4 {
				assert.Equal(t, m.At(2+r, 3+c), b.At(r, c))
			}
		}

		tr := m.Transpose()
		assert.Equal(t, order.Transposed(), tr.Order())
		assert.Equal(t, 7, tr.Rows())
		for r := range 6 {
			for c := range 7 {
				assert.Equal(t, m.At(r, c), tr.At(c, r))
			}
		}

		empty := m.Block(6, 7, 0, 0)
		assert.Zero(t, empty.Rows())
		assert.Panics(t, func() { m.Block(5, 0, 2, 1) })
	}
}

func TestSideMaps(t *testing.T) {
	data := make([]uint8, 5*9)
	for i := range data {
		data[i] = uint8(i)
	}
	for _, order := range orders {
		m := NewMatrixMap(data, 5, 9, order)

		lhs := LhsSideMap(m)
		assert.Equal(t, 5, lhs.Width())
		assert.Equal(t, 9, lhs.Depth())
		rhs := RhsSideMap(m)
		assert.Equal(t, 9, rhs.Width())
		assert.Equal(t, 5, rhs.Depth())
		if order == RowMajor {
			assert.Equal(t, WidthMajor, lhs.Order())
			assert.Equal(t, DepthMajor, rhs.Order())
		} else {
			assert.Equal(t, DepthMajor, lhs.Order())
			assert.Equal(t, WidthMajor, rhs.Order())
		}

		for r := range 5 {
			for c := range 9 {
				assert.Equal(t, m.At(r, c), lhs.At(r, c))
				assert.Equal(t, m.At(r, c), rhs.At(c, r))
			}
		}
		sub := lhs.Block(1, 2, 3, 4)
		assert.Equal(t, m.At(3, 5), sub.At(2, 3))
	}
}

func TestVectorMap(t *testing.T) {
	v := NewVectorMap([]int32{1, 2, 3, 4, 5})
	assert.False(t, v.IsDup())
	assert.Equal(t, 5, v.Len())
	b := v.Block(1, 3)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, int32(4), b.At(2))

	d := VectorDup(-7, 100)
	assert.True(t, d.IsDup())
	assert.Equal(t, int32(-7), d.At(99))
	db := d.Block(90, 10)
	assert.Equal(t, 10, db.Len())
	assert.Equal(t, int32(-7), db.At(9))

	assert.Panics(t, func() { v.Block(3, 3) })
	assert.Panics(t, func() { d.Block(-1, 2) })
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "RowMajor", RowMajor.String())
	assert.Equal(t, "ColMajor", ColMajor.String())
	assert.Equal(t, "Order(9)", Order(9).String())
	assert.Equal(t, "WidthMajor", WidthMajor.String())
	assert.Equal(t, "Row", Col.Transposed().String())
	assert.Equal(t, Col, Row.Transposed())
}
