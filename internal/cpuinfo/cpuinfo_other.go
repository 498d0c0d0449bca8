// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

//go:build !amd64 && !arm64

package cpuinfo

func init() {
	currentLevel = LevelScalar
	applyEnv()
}
