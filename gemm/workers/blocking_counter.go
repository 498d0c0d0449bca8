// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package workers

import (
	"sync"
	"sync/atomic"
)

// BlockingCounter is a resettable N-of-N completion barrier: Wait returns
// once DecrementCount has been called as many times as the last Reset asked
// for.
type BlockingCounter struct {
	count atomic.Int64
	mu    sync.Mutex
	cond  sync.Cond
}

// NewBlockingCounter returns a counter at zero.
func NewBlockingCounter() *BlockingCounter {
	b := &BlockingCounter{}
	b.cond.L = &b.mu
	return b
}

// Reset arms the counter for n decrements. The counter must be at zero.
func (b *BlockingCounter) Reset(n int) {
	if n < 0 {
		panic("workers: BlockingCounter reset to a negative count")
	}
	if b.count.Load() != 0 {
		panic("workers: BlockingCounter reset while still counting")
	}
	b.count.Store(int64(n))
}

// DecrementCount decrements the counter and reports whether this call brought
// it to zero. Among any number of racing callers exactly one observes the
// transition to zero; that caller wakes the waiter.
func (b *BlockingCounter) DecrementCount() bool {
	n := b.count.Add(-1)
	if n < 0 {
		panic("workers: BlockingCounter decremented below zero")
	}
	if n != 0 {
		return false
	}
	b.mu.Lock()
	b.cond.Broadcast()
	b.mu.Unlock()
	return true
}

// Wait blocks until the counter reaches zero.
func (b *BlockingCounter) Wait() {
	spinThenWait(func() bool { return b.count.Load() == 0 }, &b.mu, &b.cond)
}

// Count returns the current count.
func (b *BlockingCounter) Count() int {
	return int(b.count.Load())
}
