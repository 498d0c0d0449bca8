// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Package eightbit is the flat-array entry point for callers that describe
// matrices the BLAS way: column-major unless transposed, with explicit
// leading dimensions.
//
// All calls share one process-wide gemm.Context that is created on first use
// and guarded by a single mutex, so concurrent callers run one after the
// other. FreePersistentResources tears it down.
//
// New code should hold its own gemm.Context instead.
package eightbit

import (
	"fmt"
	"sync"

	"github.com/ajroetker/go-lowp/gemm"
)

// BitDepthSetting selects the operand bit depths. Reduced depths are no
// longer supported; every setting computes with full 8-bit operands.
type BitDepthSetting int

const (
	// A8B8 uses 8-bit LHS and RHS.
	A8B8 BitDepthSetting = iota
	// A5B7 historically requantized the LHS to 5 bits and the RHS to 7
	// bits. It now behaves like A8B8.
	A5B7
)

func (b BitDepthSetting) String() string {
	switch b {
	case A8B8:
		return "A8B8"
	case A5B7:
		return "A5B7"
	default:
		return fmt.Sprintf("BitDepthSetting(%d)", int(b))
	}
}

func (b BitDepthSetting) check() {
	if b != A8B8 && b != A5B7 {
		panic(fmt.Sprintf("eightbit: unknown bit depth setting %v", b))
	}
}

// global is the process-wide state. Its fields are only touched with mu held.
var global struct {
	mu      sync.Mutex
	context *gemm.Context
	scratch []int32
}

// contextLocked returns the global context, creating it if needed.
func contextLocked() *gemm.Context {
	if global.context == nil {
		global.context = gemm.NewContext()
	}
	return global.context
}

// scratchLocked returns an int32 buffer of at least n entries, reusing the
// previous one when it is large enough.
func scratchLocked(n int) []int32 {
	if cap(global.scratch) < n {
		global.scratch = make([]int32, n)
	}
	return global.scratch[:n]
}

// SetMaxNumThreads sets the thread cap of the global context. See
// gemm.Context.SetMaxNumThreads.
func SetMaxNumThreads(n int) {
	global.mu.Lock()
	defer global.mu.Unlock()
	contextLocked().SetMaxNumThreads(n)
}

// FreePersistentResources stops the global worker threads and drops the
// global context and scratch buffer. The next call recreates them with
// default settings. Calling it again is a no-op.
func FreePersistentResources() {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.context != nil {
		global.context.Close()
		global.context = nil
	}
	global.scratch = nil
}

func orderOf(transposed bool) gemm.Order {
	if transposed {
		return gemm.RowMajor
	}
	return gemm.ColMajor
}

func operands(transposeA, transposeB bool, m, n, k int, a []uint8, lda int, b []uint8, ldb int) (lhs, rhs gemm.MatrixMap[uint8]) {
	lhs = gemm.NewMatrixMapStride(a, m, k, lda, orderOf(transposeA))
	rhs = gemm.NewMatrixMapStride(b, k, n, ldb, orderOf(transposeB))
	return lhs, rhs
}

// EightBitIntGemm computes the m x n matrix
//
//	c = clamp((((A + aOffset)(B + bOffset) + cOffset)*cMultInt + 2^(cShift-1)) >> cShift, 0, 255)
//
// where A is m x k and B is k x n. Each matrix is column-major with leading
// dimension lda, ldb or ldc, or row-major when its transpose flag is set.
func EightBitIntGemm(transposeA, transposeB, transposeC bool, m, n, k int,
	a []uint8, aOffset int32, lda int,
	b []uint8, bOffset int32, ldb int,
	c []uint8, cOffset, cMultInt int32, cShift int, ldc int,
	bitDepth BitDepthSetting) {
	bitDepth.check()
	lhs, rhs := operands(transposeA, transposeB, m, n, k, a, lda, b, ldb)
	result := gemm.NewMatrixMapStride(c, m, n, ldc, orderOf(transposeC))

	global.mu.Lock()
	defer global.mu.Unlock()
	gemm.Gemm(contextLocked(), lhs, rhs, result, aOffset, bOffset, cOffset, cMultInt, cShift)
}

// EightBitIntGemmInt32 stores the raw int32 product (A + aOffset)(B + bOffset)
// in c, laid out like EightBitIntGemm's result.
func EightBitIntGemmInt32(transposeA, transposeB, transposeC bool, m, n, k int,
	a []uint8, aOffset int32, lda int,
	b []uint8, bOffset int32, ldb int,
	c []int32, ldc int,
	bitDepth BitDepthSetting) {
	bitDepth.check()
	lhs, rhs := operands(transposeA, transposeB, m, n, k, a, lda, b, ldb)
	result := gemm.NewMatrixMapStride(c, m, n, ldc, orderOf(transposeC))

	global.mu.Lock()
	defer global.mu.Unlock()
	gemm.GemmWithOutputPipeline(contextLocked(), lhs, rhs, result,
		gemm.VectorDup(aOffset, m), gemm.VectorDup(bOffset, n), nil)
}

// EightBitIntGemmFloat stores cScale * (A + aOffset)(B + bOffset) in c. The
// product is computed in int32 into a reused scratch buffer; only the final
// scaling is done in floating point.
func EightBitIntGemmFloat(transposeA, transposeB, transposeC bool, m, n, k int,
	a []uint8, aOffset int32, lda int,
	b []uint8, bOffset int32, ldb int,
	c []float32, cScale float32, ldc int,
	bitDepth BitDepthSetting) {
	bitDepth.check()
	lhs, rhs := operands(transposeA, transposeB, m, n, k, a, lda, b, ldb)
	if m == 0 || n == 0 || k == 0 {
		return
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	scratch := gemm.NewMatrixMap(scratchLocked(m*n), m, n, gemm.ColMajor)
	gemm.GemmWithOutputPipeline(contextLocked(), lhs, rhs, scratch,
		gemm.VectorDup(aOffset, m), gemm.VectorDup(bOffset, n), nil)

	order := orderOf(transposeC)
	for j := range n {
		for i := range m {
			off := i + j*ldc
			if order == gemm.RowMajor {
				off = i*ldc + j
			}
			c[off] = float32(scratch.At(i, j)) * cScale
		}
	}
}
