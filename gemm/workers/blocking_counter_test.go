// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package workers

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestBlockingCounterExactlyOneReachesZero(t *testing.T) {
	maxDecrements := 1 << 16
	if testing.Short() {
		maxDecrements = 1 << 8
	}
	counter := NewBlockingCounter()
	for goroutines := 1; goroutines <= 16; goroutines++ {
		for decrements := 1; decrements <= maxDecrements; decrements *= 4 {
			t.Run(fmt.Sprintf("%dx%d", goroutines, decrements), func(t *testing.T) {
				counter.Reset(goroutines * decrements)
				var reachedZero atomic.Int32
				var g errgroup.Group
				for range goroutines {
					g.Go(func() error {
						for range decrements {
							if counter.DecrementCount() {
								reachedZero.Add(1)
							}
						}
						return nil
					})
				}
				counter.Wait()
				require.NoError(t, g.Wait())
				assert.Equal(t, int32(1), reachedZero.Load())
				assert.Zero(t, counter.Count())
			})
		}
	}
}

func TestBlockingCounterWaitAtZero(t *testing.T) {
	counter := NewBlockingCounter()
	counter.Reset(0)
	counter.Wait()
	assert.Zero(t, counter.Count())
}

func TestBlockingCounterMisuse(t *testing.T) {
	counter := NewBlockingCounter()
	assert.Panics(t, func() { counter.DecrementCount() })

	counter = NewBlockingCounter()
	counter.Reset(2)
	assert.Panics(t, func() { counter.Reset(1) }, "reset while counting")
	assert.Panics(t, func() { NewBlockingCounter().Reset(-1) })
}
