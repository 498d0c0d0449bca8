// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package allocator

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveCommit(t *testing.T) {
	a := New()
	hb := a.ReserveBytes(100)
	hi := a.ReserveInt32s(33)
	a.Commit()

	b := a.Bytes(hb)
	i := a.Int32s(hi)
	require.Len(t, b, 100)
	require.Len(t, i, 33)

	assert.Zero(t, uintptr(unsafe.Pointer(&b[0]))%Alignment, "bytes buffer not aligned")
	assert.Zero(t, uintptr(unsafe.Pointer(&i[0]))%Alignment, "int32 buffer not aligned")

	// Buffers must not overlap.
	for j := range b {
		b[j] = 0xAB
	}
	for j := range i {
		i[j] = -1
	}
	for j := range b {
		require.Equal(t, byte(0xAB), b[j], "byte %d clobbered", j)
	}
	a.Decommit()
}

func TestStorageIsRetained(t *testing.T) {
	a := New()
	h := a.ReserveBytes(4096)
	a.Commit()
	first := unsafe.Pointer(&a.Bytes(h)[0])
	size := a.StorageSize()
	a.Decommit()

	h = a.ReserveBytes(1024)
	a.Commit()
	assert.Equal(t, first, unsafe.Pointer(&a.Bytes(h)[0]))
	assert.Equal(t, size, a.StorageSize())
	a.Decommit()

	h = a.ReserveBytes(1 << 20)
	a.Commit()
	assert.Greater(t, a.StorageSize(), size)
	assert.Len(t, a.Bytes(h), 1<<20)
	a.Decommit()
}

func TestStaleHandlePanics(t *testing.T) {
	a := New()
	h := a.ReserveBytes(16)
	a.Commit()
	a.Decommit()

	a.ReserveBytes(16)
	a.Commit()
	assert.PanicsWithValue(t, "allocator: stale handle", func() { a.Bytes(h) })
	a.Decommit()
}

func TestMisuse(t *testing.T) {
	t.Run("ReserveAfterCommit", func(t *testing.T) {
		a := New()
		a.Commit()
		assert.Panics(t, func() { a.ReserveBytes(1) })
	})
	t.Run("DoubleCommit", func(t *testing.T) {
		a := New()
		a.Commit()
		assert.Panics(t, a.Commit)
	})
	t.Run("DecommitWithoutCommit", func(t *testing.T) {
		a := New()
		assert.Panics(t, a.Decommit)
	})
	t.Run("KindMismatch", func(t *testing.T) {
		a := New()
		h := a.ReserveBytes(8)
		a.Commit()
		assert.Panics(t, func() { a.Int32s(h) })
	})
	t.Run("AccessBeforeCommit", func(t *testing.T) {
		a := New()
		h := a.ReserveInt32s(8)
		assert.Panics(t, func() { a.Int32s(h) })
	})
	t.Run("TooManyReservations", func(t *testing.T) {
		a := New()
		for range maxReservations {
			a.ReserveBytes(1)
		}
		assert.Panics(t, func() { a.ReserveBytes(1) })
	})
}

func TestEmptyReservation(t *testing.T) {
	a := New()
	h := a.ReserveInt32s(0)
	a.Commit()
	assert.Empty(t, a.Int32s(h))
	a.Decommit()
}
