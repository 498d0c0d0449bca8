// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"fmt"
	"sync"

	"github.com/ajroetker/go-lowp/gemm/kernel"
	"github.com/ajroetker/go-lowp/gemm/workers"
	"github.com/ajroetker/go-lowp/internal/allocator"
	"github.com/ajroetker/go-lowp/internal/cpuinfo"
)

// defaultMaxNumThreads is the thread cap of new contexts. LOWP_MAX_THREADS
// overrides it; 0 means one thread per CPU.
var defaultMaxNumThreads = max(0, cpuinfo.EnvInt("LOWP_MAX_THREADS", 1))

// Context holds the configuration and the persistent resources of a series
// of GEMM calls: the main allocator, the worker pool and the kernel.
//
// Calls sharing a Context are serialized. Create one Context per
// independent stream of work and Close it when done.
type Context struct {
	mu sync.Mutex

	maxNumThreads int
	l1Bytes       int
	l2Bytes       int
	l2RhsFactor   float32
	kernel        kernel.Kernel

	allocator *allocator.Allocator
	pool      *workers.Pool
}

// NewContext returns a Context configured from the detected CPU and the
// LOWP_* environment variables.
func NewContext() *Context {
	return &Context{
		maxNumThreads: defaultMaxNumThreads,
		l1Bytes:       cpuinfo.L1CacheSize(),
		l2Bytes:       cpuinfo.L2CacheSize(),
		l2RhsFactor:   cpuinfo.L2RhsFactor(),
		kernel:        kernel.Default(),
		allocator:     allocator.New(),
	}
}

// SetMaxNumThreads caps the number of threads: 0 uses one per CPU, 1 runs
// single-threaded, n > 1 allows up to n.
func (c *Context) SetMaxNumThreads(n int) {
	if n < 0 {
		panic(fmt.Sprintf("gemm: negative max thread count %d", n))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxNumThreads = n
}

// MaxNumThreads returns the thread cap.
func (c *Context) MaxNumThreads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxNumThreads
}

// SetL1BytesToUse sets the L1 budget of the block planner.
func (c *Context) SetL1BytesToUse(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("gemm: invalid L1 budget %d", n))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l1Bytes = n
}

// L1BytesToUse returns the L1 budget.
func (c *Context) L1BytesToUse() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.l1Bytes
}

// SetL2BytesToUse sets the L2 budget of the block planner.
func (c *Context) SetL2BytesToUse(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("gemm: invalid L2 budget %d", n))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l2Bytes = n
}

// L2BytesToUse returns the L2 budget.
func (c *Context) L2BytesToUse() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.l2Bytes
}

// SetL2RhsFactor sets the fraction of the L2 budget given to the RHS block.
func (c *Context) SetL2RhsFactor(f float32) {
	if f <= 0 || f > 1 {
		panic(fmt.Sprintf("gemm: L2 RHS factor %v not in (0, 1]", f))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l2RhsFactor = f
}

// L2RhsFactor returns the fraction of the L2 budget given to the RHS block.
func (c *Context) L2RhsFactor() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.l2RhsFactor
}

// SetKernel replaces the inner kernel. Every kernel gives the same results;
// only speed differs.
func (c *Context) SetKernel(k kernel.Kernel) {
	if k == nil {
		panic("gemm: nil kernel")
	}
	k.Format().Validate()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kernel = k
}

// Kernel returns the inner kernel.
func (c *Context) Kernel() kernel.Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kernel
}

// workersPool returns the worker pool, starting it on first use. c.mu must
// be held.
func (c *Context) workersPool() *workers.Pool {
	if c.pool == nil {
		c.pool = workers.NewPool()
	}
	return c.pool
}

// Close stops the worker threads. The Context stays usable; a later
// multi-threaded call starts a new pool.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}
