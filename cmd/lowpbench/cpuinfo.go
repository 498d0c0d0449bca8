// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-lowp/gemm/kernel"
	"github.com/ajroetker/go-lowp/internal/cpuinfo"
)

func newCPUInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cpuinfo",
		Short: "Print the detected CPU level, cache parameters and kernels",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printer.Printf("level:           %v\n", cpuinfo.CurrentLevel())
			printer.Printf("features:        %s\n", strings.Join(cpuinfo.Features(), " "))
			printer.Printf("hardware threads: %d\n", cpuinfo.HardwareConcurrency())
			printer.Printf("L1 bytes:        %d\n", cpuinfo.L1CacheSize())
			printer.Printf("L2 bytes:        %d\n", cpuinfo.L2CacheSize())
			printer.Printf("L2 RHS factor:   %.2f\n", cpuinfo.L2RhsFactor())
			def := kernel.Default()
			printer.Printf("default kernel:  %s (%v)\n", def.Name(), def.Format())
			for _, name := range kernel.Names() {
				printer.Printf("  %s\n", name)
			}
		},
	}
}
