// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

//go:build arm64

package cpuinfo

import "golang.org/x/sys/cpu"

func init() {
	l1CacheSize = 16 * 1024
	l2CacheSize = 384 * 1024
	l2RhsFactor = 0.75

	// ASIMD is part of the ARMv8-A base architecture, so this is the
	// common case. The dot-product extension arrived with ARMv8.2-A.
	switch {
	case cpu.ARM64.HasASIMD && cpu.ARM64.HasASIMDDP:
		currentLevel = LevelNEONDotProd
		features = append(features, "asimd", "asimddp")
	case cpu.ARM64.HasASIMD:
		currentLevel = LevelNEON
		features = append(features, "asimd")
	default:
		currentLevel = LevelScalar
	}
	applyEnv()
}
