// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-lowp/gemm"
	"github.com/ajroetker/go-lowp/gemm/kernel"
)

// contextFlags are the gemm.Context settings shared by bench and check.
type contextFlags struct {
	threads    int
	kernelName string
	l1Bytes    int
	l2Bytes    int
}

func (f *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 1, "Maximum number of threads (0 = hardware concurrency)")
	cmd.Flags().StringVarP(&f.kernelName, "kernel", "k", "", "Kernel name (see 'lowpbench cpuinfo'); default is the tuned kernel for this CPU")
	cmd.Flags().IntVar(&f.l1Bytes, "l1", 0, "L1 bytes to use for blocking (0 = detected)")
	cmd.Flags().IntVar(&f.l2Bytes, "l2", 0, "L2 bytes to use for blocking (0 = detected)")
}

// newContext builds a gemm.Context from the flags.
func (f *contextFlags) newContext() (*gemm.Context, error) {
	if f.threads < 0 {
		return nil, fmt.Errorf("--threads must be >= 0, got %d", f.threads)
	}
	ctx := gemm.NewContext()
	ctx.SetMaxNumThreads(f.threads)
	if f.l1Bytes > 0 {
		ctx.SetL1BytesToUse(f.l1Bytes)
	}
	if f.l2Bytes > 0 {
		ctx.SetL2BytesToUse(f.l2Bytes)
	}
	if f.kernelName != "" {
		k, ok := kernel.ByName(f.kernelName)
		if !ok {
			ctx.Close()
			return nil, fmt.Errorf("unknown kernel %q", f.kernelName)
		}
		ctx.SetKernel(k)
	}
	return ctx, nil
}

var (
	verbose bool
	printer = message.NewPrinter(language.English)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lowpbench",
		Short:         "Benchmark and check the 8-bit GEMM engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-iteration progress")
	root.AddCommand(newBenchCmd(), newCheckCmd(), newCPUInfoCmd())
	return root
}
