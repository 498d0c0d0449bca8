// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Command lowpbench benchmarks and checks the 8-bit GEMM engine.
//
// Usage:
//
//	lowpbench bench --sizes 256,1000x500x300 --threads 4
//	lowpbench check --sizes 1x1x1,33x17x9 --concurrent 8
//	lowpbench cpuinfo
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
