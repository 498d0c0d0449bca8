// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

// Package workers provides the persistent worker pool used by the
// multi-threaded GEMM driver.
//
// A Pool keeps its workers alive between calls so that a sequence of small
// products does not pay for goroutine and thread creation each time. Each
// worker owns an allocator that survives across tasks.
//
// Usage:
//
//	pool := workers.NewPool()
//	defer pool.Close()
//	pool.Execute([]workers.Task{t0, t1, t2})
package workers

import (
	"sync"

	"github.com/ajroetker/go-lowp/internal/allocator"
)

// Pool runs batches of tasks on a lazily grown set of workers. The last task
// of every batch runs on the calling goroutine.
//
// Execute and Close are serialized by an internal mutex.
type Pool struct {
	mu            sync.Mutex
	workers       []*Worker
	counter       *BlockingCounter
	mainAllocator *allocator.Allocator
	closed        bool
}

// NewPool returns a pool with no workers; they are created on demand.
func NewPool() *Pool {
	return &Pool{
		counter:       NewBlockingCounter(),
		mainAllocator: allocator.New(),
	}
}

// NumWorkers returns how many workers have been started.
func (p *Pool) NumWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// MainAllocator returns the allocator handed to the task that runs on the
// calling goroutine.
func (p *Pool) MainAllocator() *allocator.Allocator {
	return p.mainAllocator
}

// createWorkers grows the pool to at least n workers and waits until all of
// them are Ready.
func (p *Pool) createWorkers(n int) {
	if len(p.workers) >= n {
		return
	}
	p.counter.Reset(n - len(p.workers))
	for len(p.workers) < n {
		p.workers = append(p.workers, newWorker(p.counter))
	}
	p.counter.Wait()
}

// Execute runs every task exactly once and returns when all have finished.
// tasks[:len-1] go to workers; the last one runs inline with the pool's main
// allocator. Execute takes ownership of the tasks: the slice elements are
// cleared before returning.
func (p *Pool) Execute(tasks []Task) {
	if len(tasks) == 0 {
		panic("workers: Execute called with no tasks")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		panic("workers: Execute on closed pool")
	}

	n := len(tasks) - 1
	p.createWorkers(n)
	p.counter.Reset(n)
	for i, t := range tasks[:n] {
		p.workers[i].StartWork(t)
	}
	tasks[n].Run(p.mainAllocator)
	p.counter.Wait()
	clear(tasks)
}

// Close stops every worker and waits for their goroutines to exit. It is
// safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, w := range p.workers {
		w.stop()
	}
	p.workers = nil
}
