// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Default", []string{"check", "--sizes", "3x5x7,20x9x33"}},
		{"Threads", []string{"check", "--sizes", "120x64x80", "--threads", "3"}},
		{"Concurrent", []string{"check", "--sizes", "17x31x9", "--concurrent", "4"}},
		{"Kernel", []string{"check", "--sizes", "40x21x50", "--kernel", "reference-12x4x2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs(tt.args)
			require.NoError(t, root.Execute())
		})
	}
}

func TestCommandErrors(t *testing.T) {
	for _, args := range [][]string{
		{"check", "--kernel", "no-such-kernel"},
		{"check", "--threads", "-1"},
		{"check", "--concurrent", "0"},
		{"bench", "--sizes", "1x2"},
	} {
		root := newRootCmd()
		root.SetArgs(args)
		assert.Error(t, root.Execute(), "%v", args)
	}
}

func TestBenchReportsEveryShape(t *testing.T) {
	flags := contextFlags{threads: 1}
	results, err := runBench(&flags, []shape{{4, 4, 4}, {9, 2, 5}}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.iters, 1)
		assert.Positive(t, r.elapsed)
	}
}
