// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"fmt"
	"math"
)

// FragmentSize is the largest extent of a Fragment along either dimension.
const FragmentSize = 8

// Fragment is a block of up to FragmentSize x FragmentSize int32 results on
// its way through an output pipeline. Row and Col locate element (0, 0) in
// the result matrix so that per-channel stages can index their vectors.
type Fragment struct {
	Row, Col   int
	Rows, Cols int

	// Data holds (r, c) at r + c*FragmentSize.
	Data [FragmentSize * FragmentSize]int32
}

// At returns the value at (r, c) relative to the fragment origin.
func (f *Fragment) At(r, c int) int32 { return f.Data[r+c*FragmentSize] }

// Set stores v at (r, c) relative to the fragment origin.
func (f *Fragment) Set(r, c int, v int32) { f.Data[r+c*FragmentSize] = v }

// mapValues replaces every live value x with fn(x).
func (f *Fragment) mapValues(fn func(x int32) int32) {
	for c := range f.Cols {
		col := f.Data[c*FragmentSize : c*FragmentSize+f.Rows]
		for i, x := range col {
			col[i] = fn(x)
		}
	}
}

// mapChannel replaces every live value x with fn(x, i), where i is the
// global row (Col shape) or column (Row shape) of x.
func (f *Fragment) mapChannel(shape VectorShape, fn func(x int32, i int) int32) {
	for c := range f.Cols {
		col := f.Data[c*FragmentSize : c*FragmentSize+f.Rows]
		for r, x := range col {
			i := f.Row + r
			if shape == Row {
				i = f.Col + c
			}
			col[r] = fn(x, i)
		}
	}
}

// OutputStage is one step of an output pipeline. Stages run in order over
// each Fragment of the offset-corrected int32 product.
type OutputStage interface {
	Eval(f *Fragment)

	// Transpose returns the stage to use when the whole product is
	// computed transposed.
	Transpose() OutputStage
}

// QuantizeDownInt32ToUint8Scale maps x to
//
//	((x + ResultOffset) * ResultMultInt + rounding) >> ResultShift
//
// where rounding is 2^(ResultShift-1), or 0 when ResultShift is 0. It does
// not saturate; follow it with SaturatingCastToUint8.
type QuantizeDownInt32ToUint8Scale struct {
	ResultOffset  int32
	ResultMultInt int32
	ResultShift   int
}

func (s QuantizeDownInt32ToUint8Scale) Eval(f *Fragment) {
	rounding := roundingTerm(s.ResultShift)
	f.mapValues(func(x int32) int32 {
		return ((x+s.ResultOffset)*s.ResultMultInt + rounding) >> s.ResultShift
	})
}

func (s QuantizeDownInt32ToUint8Scale) Transpose() OutputStage { return s }

// QuantizeDownInt32ToUint8ScalePC is the per-channel variant of
// QuantizeDownInt32ToUint8Scale: offset and multiplier are indexed by result
// row (Col shape) or result column (Row shape).
type QuantizeDownInt32ToUint8ScalePC struct {
	ResultOffset  VectorMap
	ResultMultInt VectorMap
	ResultShift   int
	Shape         VectorShape
}

func (s QuantizeDownInt32ToUint8ScalePC) Eval(f *Fragment) {
	rounding := roundingTerm(s.ResultShift)
	f.mapChannel(s.Shape, func(x int32, i int) int32 {
		return ((x+s.ResultOffset.At(i))*s.ResultMultInt.At(i) + rounding) >> s.ResultShift
	})
}

func (s QuantizeDownInt32ToUint8ScalePC) Transpose() OutputStage {
	s.Shape = s.Shape.Transposed()
	return s
}

func roundingTerm(shift int) int32 {
	if shift < 1 {
		return 0
	}
	return 1 << (shift - 1)
}

// QuantizeDownInt32ByFixedPoint multiplies by a Q0.31 fixed-point
// multiplier, divides by 2^ResultShift with rounding, and adds
// ResultOffsetAfterShift.
type QuantizeDownInt32ByFixedPoint struct {
	ResultFixedPointMultiplier int32
	ResultShift                int
	ResultOffsetAfterShift     int32
}

func (s QuantizeDownInt32ByFixedPoint) Eval(f *Fragment) {
	f.mapValues(func(x int32) int32 {
		return RoundingDivideByPOT(SaturatingRoundingDoublingHighMul(x, s.ResultFixedPointMultiplier), s.ResultShift) +
			s.ResultOffsetAfterShift
	})
}

func (s QuantizeDownInt32ByFixedPoint) Transpose() OutputStage { return s }

// BiasAddition adds a per-row (Col shape) or per-column (Row shape) bias.
type BiasAddition struct {
	Bias  VectorMap
	Shape VectorShape
}

func (s BiasAddition) Eval(f *Fragment) {
	f.mapChannel(s.Shape, func(x int32, i int) int32 {
		return x + s.Bias.At(i)
	})
}

func (s BiasAddition) Transpose() OutputStage {
	s.Shape = s.Shape.Transposed()
	return s
}

// Clamp bounds values to [Min, Max].
type Clamp struct {
	Min, Max int32
}

func (s Clamp) Eval(f *Fragment) {
	f.mapValues(func(x int32) int32 { return min(max(x, s.Min), s.Max) })
}

func (s Clamp) Transpose() OutputStage { return s }

// SaturatingCastToUint8 clamps to [0, 255]. It must end every pipeline that
// stores into a uint8 result.
type SaturatingCastToUint8 struct{}

func (SaturatingCastToUint8) Eval(f *Fragment) {
	f.mapValues(func(x int32) int32 { return min(max(x, 0), math.MaxUint8) })
}

func (s SaturatingCastToUint8) Transpose() OutputStage { return s }

// SaturatingCastToInt16 clamps to [-32768, 32767]. It must end every
// pipeline that stores into an int16 result.
type SaturatingCastToInt16 struct{}

func (SaturatingCastToInt16) Eval(f *Fragment) {
	f.mapValues(func(x int32) int32 { return min(max(x, math.MinInt16), math.MaxInt16) })
}

func (s SaturatingCastToInt16) Transpose() OutputStage { return s }

// DefaultPipeline is the pipeline of Gemm: scale down and saturate to uint8.
func DefaultPipeline(resultOffset, resultMultInt int32, resultShift int) []OutputStage {
	return []OutputStage{
		QuantizeDownInt32ToUint8Scale{
			ResultOffset:  resultOffset,
			ResultMultInt: resultMultInt,
			ResultShift:   resultShift,
		},
		SaturatingCastToUint8{},
	}
}

// checkPipeline panics unless the pipeline leaves values that fit T.
func checkPipeline[T Element](pipeline []OutputStage) {
	var last OutputStage
	if len(pipeline) > 0 {
		last = pipeline[len(pipeline)-1]
	}
	var zero T
	switch any(zero).(type) {
	case uint8:
		if _, ok := last.(SaturatingCastToUint8); !ok {
			panic(fmt.Sprintf("gemm: uint8 result needs a pipeline ending in SaturatingCastToUint8, got %T", last))
		}
	case int16:
		if _, ok := last.(SaturatingCastToInt16); !ok {
			panic(fmt.Sprintf("gemm: int16 result needs a pipeline ending in SaturatingCastToInt16, got %T", last))
		}
	}
}

func transposePipeline(pipeline []OutputStage) []OutputStage {
	out := make([]OutputStage, len(pipeline))
	for i, s := range pipeline {
		out[i] = s.Transpose()
	}
	return out
}
