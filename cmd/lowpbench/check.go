// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-lowp/gemm"
	"github.com/ajroetker/go-lowp/gemm/eightbit"
)

func newCheckCmd() *cobra.Command {
	var (
		flags      contextFlags
		sizes      = newShapeList(shape{1, 1, 1}, shape{3, 5, 7}, shape{33, 17, 9}, shape{100, 200, 300}, shape{257, 129, 65})
		concurrent int
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare results against a reference implementation",
		Long: "Check runs every size through a gemm.Context and through the legacy eightbit entry point, " +
			"and compares both against a triple-loop reference. With --concurrent N, N independent " +
			"contexts and N legacy callers run at the same time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrent < 1 {
				return fmt.Errorf("--concurrent must be >= 1, got %d", concurrent)
			}
			var g errgroup.Group
			for worker := range concurrent {
				g.Go(func() error {
					return checkSizes(&flags, sizes.shapes, worker)
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("check: %w", err)
			}
			eightbit.FreePersistentResources()
			printer.Printf("%d sizes x %d callers OK\n", len(sizes.shapes), concurrent)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Var(sizes, "sizes", "Comma-separated sizes, each N or RxCxD")
	cmd.Flags().IntVarP(&concurrent, "concurrent", "c", 1, "Number of concurrent callers")
	return cmd
}

func checkSizes(flags *contextFlags, shapes []shape, worker int) error {
	ctx, err := flags.newContext()
	if err != nil {
		return err
	}
	defer ctx.Close()
	for _, s := range shapes {
		p := newProblem(s, uint64(worker))
		want := p.reference()

		got := p.newResult()
		p.run(ctx, got)
		if err := compare(want, got); err != nil {
			return fmt.Errorf("%v with caller %d: %w", s, worker, err)
		}

		legacy := p.newResult()
		eightbit.EightBitIntGemm(false, false, false, s.Rows, s.Cols, s.Depth,
			p.lhs.Data(), p.lhsOffset, s.Rows,
			p.rhs.Data(), p.rhsOffset, s.Depth,
			legacy.Data(), p.resultOffset, p.multiply, p.shift, s.Rows,
			eightbit.A8B8)
		if err := compare(want, legacy); err != nil {
			return fmt.Errorf("%v with legacy caller %d: %w", s, worker, err)
		}
		slog.Debug("checked", "size", s, "caller", worker)
	}
	return nil
}

func compare(want, got gemm.MatrixMap[uint8]) error {
	for r := range want.Rows() {
		for c := range want.Cols() {
			if w, g := want.At(r, c), got.At(r, c); w != g {
				return fmt.Errorf("entry (%d, %d) = %d, want %d", r, c, g, w)
			}
		}
	}
	return nil
}
