// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Package allocator provides a scoped bump allocator for the packing and
// result buffers of a single GEMM invocation.
//
// Buffers that share a lifetime are first reserved, then backed by a single
// allocation at Commit, and released together at Decommit:
//
//	lhs := a.ReserveBytes(lhsSize)
//	res := a.ReserveInt32s(resultSize)
//	a.Commit()
//	packed := a.Bytes(lhs)
//	acc := a.Int32s(res)
//	...
//	a.Decommit()
//
// The backing storage is retained and only grows, so repeated invocations of
// similar sizes do not allocate. An Allocator is not safe for concurrent use;
// each thread of execution owns one.
package allocator

import "unsafe"

// Alignment is the byte alignment of every reserved buffer. It matches a
// cache line on the targets we care about.
const Alignment = 64

// maxReservations bounds the number of buffers reserved between two commits.
const maxReservations = 8

// Kind is the element type of a reserved buffer.
type Kind uint8

const (
	// KindBytes buffers hold uint8 elements.
	KindBytes Kind = iota
	// KindInt32s buffers hold int32 elements.
	KindInt32s
)

// Handle identifies a reserved buffer. It is only valid for the generation
// (the Commit/Decommit cycle) it was reserved in.
type Handle struct {
	index      int
	generation uint64
	kind       Kind
}

type reservation struct {
	offset int
	count  int
	kind   Kind
}

// Allocator is a scoped bump allocator. The zero value is ready to use.
type Allocator struct {
	committed     bool
	generation    uint64
	reservations  [maxReservations]reservation
	numReserved   int
	reservedBytes int

	// storage is kept as int64 words so that the base is 8-byte aligned; the
	// extra Alignment bytes let us align the base to a cache line.
	storage []int64
	base    int
}

// New returns an empty Allocator.
func New() *Allocator {
	return &Allocator{}
}

func (a *Allocator) reserve(kind Kind, count, elemSize int) Handle {
	if a.committed {
		panic("allocator: Reserve called after Commit")
	}
	if a.numReserved == maxReservations {
		panic("allocator: too many reservations")
	}
	if count < 0 {
		panic("allocator: negative reservation")
	}
	size := roundUp(count*elemSize, Alignment)
	a.reservations[a.numReserved] = reservation{offset: a.reservedBytes, count: count, kind: kind}
	h := Handle{index: a.numReserved, generation: a.generation, kind: kind}
	a.numReserved++
	a.reservedBytes += size
	return h
}

// ReserveBytes reserves a buffer of n uint8 elements.
func (a *Allocator) ReserveBytes(n int) Handle {
	return a.reserve(KindBytes, n, 1)
}

// ReserveInt32s reserves a buffer of n int32 elements.
func (a *Allocator) ReserveInt32s(n int) Handle {
	return a.reserve(KindInt32s, n, 4)
}

// Commit backs all reservations made since the last Decommit with storage,
// growing the retained storage if needed.
func (a *Allocator) Commit() {
	if a.committed {
		panic("allocator: Commit called twice")
	}
	need := a.reservedBytes + Alignment
	if len(a.storage)*8 < need {
		a.storage = make([]int64, (need+7)/8)
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(a.storage)))
		a.base = int(roundUpPtr(addr, Alignment) - addr)
	}
	a.committed = true
}

// Decommit invalidates every handle of the current generation. The storage is
// retained for the next Commit.
func (a *Allocator) Decommit() {
	if !a.committed {
		panic("allocator: Decommit without Commit")
	}
	a.committed = false
	a.numReserved = 0
	a.reservedBytes = 0
	a.generation++
}

// Committed reports whether the allocator is between Commit and Decommit.
func (a *Allocator) Committed() bool {
	return a.committed
}

// StorageSize returns the number of bytes currently retained.
func (a *Allocator) StorageSize() int {
	return len(a.storage) * 8
}

func (a *Allocator) lookup(h Handle, kind Kind) reservation {
	if !a.committed {
		panic("allocator: buffer accessed before Commit")
	}
	if h.generation != a.generation {
		panic("allocator: stale handle")
	}
	if h.kind != kind {
		panic("allocator: handle kind mismatch")
	}
	return a.reservations[h.index]
}

func (a *Allocator) pointer(offset int) unsafe.Pointer {
	raw := unsafe.Pointer(unsafe.SliceData(a.storage))
	return unsafe.Add(raw, a.base+offset)
}

// Bytes returns the committed uint8 buffer for h.
func (a *Allocator) Bytes(h Handle) []byte {
	r := a.lookup(h, KindBytes)
	if r.count == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(a.pointer(r.offset)), r.count)
}

// Int32s returns the committed int32 buffer for h.
func (a *Allocator) Int32s(h Handle) []int32 {
	r := a.lookup(h, KindInt32s)
	if r.count == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(a.pointer(r.offset)), r.count)
}

func roundUp(n, m int) int {
	return (n + m - 1) / m * m
}

func roundUpPtr(p uintptr, m uintptr) uintptr {
	return (p + m - 1) / m * m
}
