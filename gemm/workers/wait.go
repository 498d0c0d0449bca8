// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package workers

import "sync"

// MaxBusyWaitSpins is the number of polls a waiter makes before blocking on a
// condition variable. Polling catches the common case where the other side
// responds within a few hundred nanoseconds without a futex round trip.
const MaxBusyWaitSpins = 4000

// spinThenWait returns once done reports true. It first polls done without
// locking, then blocks on cond. Whoever makes done true must do so before
// broadcasting cond while holding mu, so the wakeup cannot be lost.
func spinThenWait(done func() bool, mu *sync.Mutex, cond *sync.Cond) {
	for range MaxBusyWaitSpins {
		if done() {
			return
		}
	}
	mu.Lock()
	for !done() {
		cond.Wait()
	}
	mu.Unlock()
}
