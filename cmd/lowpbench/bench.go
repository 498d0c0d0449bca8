// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type benchResult struct {
	shape   shape
	iters   int
	elapsed time.Duration
}

func (r benchResult) gops() float64 {
	return r.shape.ops() * float64(r.iters) / r.elapsed.Seconds() / 1e9
}

func newBenchCmd() *cobra.Command {
	var (
		flags   contextFlags
		sizes   = newShapeList(shape{256, 256, 256}, shape{1000, 500, 300})
		minTime time.Duration
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure GEMM throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := runBench(&flags, sizes.shapes, minTime)
			if err != nil {
				return fmt.Errorf("bench: %w", err)
			}
			reportBench(results)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Var(sizes, "sizes", "Comma-separated sizes, each N or RxCxD")
	cmd.Flags().DurationVar(&minTime, "min-time", 500*time.Millisecond, "Minimum measuring time per size")
	return cmd
}

func runBench(flags *contextFlags, shapes []shape, minTime time.Duration) ([]benchResult, error) {
	ctx, err := flags.newContext()
	if err != nil {
		return nil, err
	}
	defer ctx.Close()
	slog.Info("benchmarking", "kernel", ctx.Kernel().Name(), "threads", ctx.MaxNumThreads(), "sizes", len(shapes))

	results := make([]benchResult, 0, len(shapes))
	for _, s := range shapes {
		p := newProblem(s, 1)
		result := p.newResult()
		p.run(ctx, result) // Warm up the allocator and the worker pool.

		r := benchResult{shape: s}
		start := time.Now()
		for r.iters == 0 || time.Since(start) < minTime {
			p.run(ctx, result)
			r.iters++
			slog.Debug("iteration", "size", s, "iter", r.iters)
		}
		r.elapsed = time.Since(start)
		results = append(results, r)
	}
	return results, nil
}

func reportBench(results []benchResult) {
	if len(results) == 0 {
		return
	}
	for _, r := range results {
		printer.Printf("%-16s %8d iters %10.3f ms/iter %10.2f GOp/s\n",
			r.shape, r.iters, float64(r.elapsed.Microseconds())/1e3/float64(r.iters), r.gops())
	}
	best := lo.MaxBy(results, func(a, b benchResult) bool { return a.gops() > b.gops() })
	total := lo.SumBy(results, func(r benchResult) float64 { return r.shape.ops() * float64(r.iters) })
	printer.Printf("best: %v at %.2f GOp/s; %.0f operations in total\n", best.shape, best.gops(), total)
}
