// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package cpuinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelScalar, "scalar"},
		{LevelSSE4, "sse4"},
		{LevelAVX2, "avx2"},
		{LevelAVX512, "avx512"},
		{LevelNEON, "neon"},
		{LevelNEONDotProd, "neon-dotprod"},
		{Level(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestNoSimdEnv(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
		{"yes", true},
	}
	for _, tt := range tests {
		t.Run("value="+tt.val, func(t *testing.T) {
			t.Setenv("LOWP_NO_SIMD", tt.val)
			assert.Equal(t, tt.want, NoSimdEnv())
		})
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("LOWP_TEST_INT", "42")
	assert.Equal(t, 42, EnvInt("LOWP_TEST_INT", 7))

	t.Setenv("LOWP_TEST_INT", "not-a-number")
	assert.Equal(t, 7, EnvInt("LOWP_TEST_INT", 7))

	t.Setenv("LOWP_TEST_INT", "")
	assert.Equal(t, 7, EnvInt("LOWP_TEST_INT", 7))
}

func TestDefaults(t *testing.T) {
	assert.Positive(t, L1CacheSize())
	assert.Greater(t, L2CacheSize(), L1CacheSize())
	assert.Greater(t, L2RhsFactor(), float32(0))
	assert.LessOrEqual(t, L2RhsFactor(), float32(1))
	assert.GreaterOrEqual(t, HardwareConcurrency(), 1)
}

func TestFeaturesIsACopy(t *testing.T) {
	f := Features()
	if len(f) == 0 {
		t.Skip("no features detected on this CPU")
	}
	f[0] = "clobbered"
	assert.NotEqual(t, "clobbered", Features()[0])
}
