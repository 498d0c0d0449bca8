// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package workers

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-lowp/internal/allocator"
)

func TestPoolExecuteRunsEveryTaskOnce(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	for _, numTasks := range []int{1, 2, 5, 3, 8, 1} {
		runs := make([]atomic.Int32, numTasks)
		var mu sync.Mutex
		allocators := make(map[*allocator.Allocator]int)
		tasks := make([]Task, numTasks)
		for i := range tasks {
			tasks[i] = TaskFunc(func(local *allocator.Allocator) {
				runs[i].Add(1)
				mu.Lock()
				allocators[local]++
				mu.Unlock()
			})
		}
		pool.Execute(tasks)

		for i := range runs {
			assert.Equal(t, int32(1), runs[i].Load(), "task %d of %d", i, numTasks)
		}
		// Every task saw a distinct allocator, and the inline one is the pool's.
		assert.Len(t, allocators, numTasks)
		assert.Equal(t, 1, allocators[pool.MainAllocator()])
		for _, task := range tasks {
			assert.Nil(t, task, "Execute clears the task slice")
		}
	}
	// Workers are only ever added, never torn down between calls.
	assert.Equal(t, 7, pool.NumWorkers())
}

func TestPoolWorkerAllocatorsPersist(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	seen := make([]*allocator.Allocator, 2)
	record := func(i int) Task {
		return TaskFunc(func(local *allocator.Allocator) { seen[i] = local })
	}
	pool.Execute([]Task{record(0), record(1)})
	first := append([]*allocator.Allocator(nil), seen...)
	pool.Execute([]Task{record(0), record(1)})
	assert.Same(t, first[0], seen[0])
	assert.Same(t, first[1], seen[1])
}

func TestPoolClose(t *testing.T) {
	pool := NewPool()
	pool.Execute([]Task{TaskFunc(func(*allocator.Allocator) {}), TaskFunc(func(*allocator.Allocator) {})})
	require.Equal(t, 1, pool.NumWorkers())

	pool.Close()
	pool.Close()
	assert.Zero(t, pool.NumWorkers())
	assert.Panics(t, func() { pool.Execute([]Task{TaskFunc(func(*allocator.Allocator) {})}) })
	assert.Panics(t, func() { NewPool().Execute(nil) })
}
