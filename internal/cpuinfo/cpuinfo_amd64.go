// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

//go:build amd64

package cpuinfo

import "golang.org/x/sys/cpu"

func init() {
	// x86 parts have large private L2 caches, so the RHS block is allowed to
	// take all of it.
	l1CacheSize = 32 * 1024
	l2CacheSize = 4 * 1024 * 1024
	l2RhsFactor = 1.0

	switch {
	case cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW:
		currentLevel = LevelAVX512
		features = append(features, "avx512f", "avx512bw")
		if cpu.X86.HasAVX512VNNI {
			features = append(features, "avx512vnni")
		}
	case cpu.X86.HasAVX2:
		currentLevel = LevelAVX2
		features = append(features, "avx2")
	case cpu.X86.HasSSE41:
		currentLevel = LevelSSE4
		features = append(features, "sse4.1")
	default:
		currentLevel = LevelScalar
	}
	applyEnv()
}
