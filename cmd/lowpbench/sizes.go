// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// shape is the size of one GEMM: Rows x Depth times Depth x Cols.
type shape struct {
	Rows, Cols, Depth int
}

func (s shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Rows, s.Cols, s.Depth)
}

// ops is the number of multiply-adds counted as two operations each.
func (s shape) ops() float64 {
	return 2 * float64(s.Rows) * float64(s.Cols) * float64(s.Depth)
}

// parseShape accepts "N" for a cube or "RxCxD".
func parseShape(text string) (shape, error) {
	parts := strings.Split(strings.TrimSpace(text), "x")
	if len(parts) != 1 && len(parts) != 3 {
		return shape{}, fmt.Errorf("invalid size %q: want N or RxCxD", text)
	}
	dims := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return shape{}, fmt.Errorf("invalid size %q: %w", text, err)
		}
		if n <= 0 {
			return shape{}, fmt.Errorf("invalid size %q: dimensions must be positive", text)
		}
		dims[i] = n
	}
	if len(dims) == 1 {
		return shape{dims[0], dims[0], dims[0]}, nil
	}
	return shape{dims[0], dims[1], dims[2]}, nil
}

// shapeList is a pflag.Value holding a comma-separated list of sizes.
// Repeating the flag appends; duplicates are dropped. The first Set replaces
// the default.
type shapeList struct {
	shapes  []shape
	changed bool
}

func newShapeList(defaults ...shape) *shapeList {
	return &shapeList{shapes: defaults}
}

func (l *shapeList) String() string {
	return strings.Join(lo.Map(l.shapes, func(s shape, _ int) string { return s.String() }), ",")
}

func (l *shapeList) Set(value string) error {
	var parsed []shape
	for _, field := range strings.Split(value, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		s, err := parseShape(field)
		if err != nil {
			return err
		}
		parsed = append(parsed, s)
	}
	if !l.changed {
		l.shapes = nil
		l.changed = true
	}
	l.shapes = lo.Uniq(append(l.shapes, parsed...))
	return nil
}

func (l *shapeList) Type() string {
	return "sizes"
}
