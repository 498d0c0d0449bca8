// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Package cpuinfo detects the instruction-set level and cache geometry used to
// pick default kernels and blocking parameters.
//
// Detection runs once at init. The LOWP_NO_SIMD environment variable forces
// the scalar level, which is useful for testing and debugging:
//
//	LOWP_NO_SIMD=1 go test ./...
package cpuinfo

import (
	"os"
	"runtime"
	"strconv"
)

// Level represents the instruction set the kernels are tuned for.
type Level int

const (
	// LevelScalar indicates no SIMD tuning, portable kernels only.
	LevelScalar Level = iota

	// LevelSSE4 indicates SSE4.1 (x86-64 with 128-bit integer SIMD).
	LevelSSE4

	// LevelAVX2 indicates AVX2 instructions (256-bit integer SIMD).
	LevelAVX2

	// LevelAVX512 indicates AVX-512 BW instructions (512-bit integer SIMD).
	LevelAVX512

	// LevelNEON indicates ARM NEON (ASIMD) instructions.
	LevelNEON

	// LevelNEONDotProd indicates ARM NEON with the UDOT/SDOT extension.
	LevelNEONDotProd
)

// String returns a human-readable name for the level.
func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelSSE4:
		return "sse4"
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	case LevelNEONDotProd:
		return "neon-dotprod"
	default:
		return "unknown"
	}
}

// Default cache parameters. They describe how much of each cache level the
// blocking should target, not the physical size of the caches.
const (
	defaultL1CacheSize = 16 * 1024
	defaultL2CacheSize = 256 * 1024
	defaultL2RhsFactor = 0.75
)

// currentLevel, l1CacheSize, l2CacheSize and l2RhsFactor are set by the
// init() functions in cpuinfo_*.go, then adjusted by applyEnv.
var (
	currentLevel Level
	l1CacheSize          = defaultL1CacheSize
	l2CacheSize          = defaultL2CacheSize
	l2RhsFactor  float32 = defaultL2RhsFactor
	features     []string
)

// CurrentLevel returns the detected instruction-set level.
func CurrentLevel() Level {
	return currentLevel
}

// Features returns the names of the CPU features that influenced detection.
func Features() []string {
	return append([]string(nil), features...)
}

// L1CacheSize returns the number of L1 bytes the blocking should use.
func L1CacheSize() int {
	return l1CacheSize
}

// L2CacheSize returns the number of L2 bytes the blocking should use.
func L2CacheSize() int {
	return l2CacheSize
}

// L2RhsFactor returns the fraction of the L2 budget reserved for the RHS block.
func L2RhsFactor() float32 {
	return l2RhsFactor
}

// HardwareConcurrency returns the number of logical CPUs usable by this process.
func HardwareConcurrency() int {
	return max(1, runtime.GOMAXPROCS(0))
}

// NoSimdEnv checks if the LOWP_NO_SIMD environment variable is set.
// Any non-empty value that does not parse as false counts as set.
func NoSimdEnv() bool {
	val := os.Getenv("LOWP_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// EnvInt returns the integer value of the named environment variable, or def
// if the variable is unset or not a valid integer.
func EnvInt(name string, def int) int {
	val := os.Getenv(name)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

// applyEnv applies the LOWP_NO_SIMD and cache-size overrides. Called at the
// end of each architecture's init.
func applyEnv() {
	if NoSimdEnv() {
		currentLevel = LevelScalar
		features = nil
	}
	if n := EnvInt("LOWP_L1_CACHE_SIZE", 0); n > 0 {
		l1CacheSize = n
	}
	if n := EnvInt("LOWP_L2_CACHE_SIZE", 0); n > 0 {
		l2CacheSize = n
	}
}
