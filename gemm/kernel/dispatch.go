// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"maps"
	"slices"

	"github.com/ajroetker/go-lowp/internal/cpuinfo"
)

// Built-in kernels. All of them are portable Go; the detected CPU level only
// picks the tile shape: 12x8 on NEON, 8x8 on AVX2 and AVX-512, 12x4 on
// SSE4.1 and 4x4 otherwise.
var (
	Kernel4x4  Kernel = newCells4x2(1, 1)
	Kernel8x8  Kernel = newCells4x2(2, 2)
	Kernel12x4 Kernel = newCells4x2(3, 1)
	Kernel12x8 Kernel = newCells4x2(3, 2)
)

// Default returns the kernel tuned for the detected CPU level.
func Default() Kernel {
	return ForLevel(cpuinfo.CurrentLevel())
}

// ForLevel returns the kernel used for the given instruction-set level.
func ForLevel(level cpuinfo.Level) Kernel {
	switch level {
	case cpuinfo.LevelNEON, cpuinfo.LevelNEONDotProd:
		return Kernel12x8
	case cpuinfo.LevelAVX2, cpuinfo.LevelAVX512:
		return Kernel8x8
	case cpuinfo.LevelSSE4:
		return Kernel12x4
	default:
		return Kernel4x4
	}
}

// registry holds every built-in kernel, tuned and reference, keyed by name.
var registry = func() map[string]Kernel {
	reg := make(map[string]Kernel)
	for _, k := range []Kernel{Kernel4x4, Kernel8x8, Kernel12x4, Kernel12x8} {
		reg[k.Name()] = k
		ref := NewReference(k.Format())
		reg[ref.Name()] = ref
	}
	return reg
}()

// Registry returns a copy of the built-in kernels keyed by name.
func Registry() map[string]Kernel {
	return maps.Clone(registry)
}

// ByName looks up a built-in kernel.
func ByName(name string) (Kernel, bool) {
	k, ok := registry[name]
	return k, ok
}

// Names returns the sorted names of the built-in kernels.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}
