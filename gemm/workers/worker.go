// Copyright 2025 The go-lowp Authors. SPDX-License-Identifier: Apache-2.0

package workers

//go:generate go tool stringer -type=State

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ajroetker/go-lowp/internal/allocator"
)

// State is the state of a Worker.
type State int32

const (
	// ThreadStartup is the state of a worker whose goroutine has not run yet.
	ThreadStartup State = iota
	// Ready means the worker is idle and may be given a task.
	Ready
	// HasWork means a task was handed over and is running or about to run.
	HasWork
	// ExitAsSoonAsPossible is terminal: the worker goroutine returns.
	ExitAsSoonAsPossible
)

// legalTransition reports whether a worker may move from one state to another.
func legalTransition(from, to State) bool {
	switch from {
	case ThreadStartup:
		return to == Ready
	case Ready:
		return to == HasWork || to == ExitAsSoonAsPossible
	case HasWork:
		return to == Ready || to == ExitAsSoonAsPossible
	default:
		return false
	}
}

// Task is a unit of work run by a Worker, or inline by Pool.Execute.
// local is private to the goroutine running the task.
type Task interface {
	Run(local *allocator.Allocator)
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(local *allocator.Allocator)

// Run calls f(local).
func (f TaskFunc) Run(local *allocator.Allocator) { f(local) }

// Worker is a long-lived goroutine locked to its own OS thread. It runs one
// task each time it goes from Ready to HasWork, and decrements
// readyCounter every time it becomes Ready.
type Worker struct {
	state atomic.Int32
	mu    sync.Mutex
	cond  sync.Cond

	task           Task
	localAllocator *allocator.Allocator
	readyCounter   *BlockingCounter
	done           chan struct{}
}

func newWorker(readyCounter *BlockingCounter) *Worker {
	w := &Worker{
		localAllocator: allocator.New(),
		readyCounter:   readyCounter,
		done:           make(chan struct{}),
	}
	w.cond.L = &w.mu
	go w.loop()
	return w
}

// State returns the current state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// changeState moves the worker to newState, handing over task when the new
// state is HasWork. Illegal transitions panic.
func (w *Worker) changeState(newState State, task Task) {
	w.mu.Lock()
	old := w.State()
	if !legalTransition(old, newState) {
		w.mu.Unlock()
		panic(fmt.Sprintf("workers: illegal state transition %v -> %v", old, newState))
	}
	switch newState {
	case HasWork:
		if task == nil || w.task != nil {
			w.mu.Unlock()
			panic("workers: HasWork requires exactly one pending task")
		}
		w.task = task
	case Ready:
		w.task = nil
	}
	w.state.Store(int32(newState))
	w.cond.Broadcast()
	w.mu.Unlock()

	if newState == Ready {
		w.readyCounter.DecrementCount()
	}
}

// waitForStateChange blocks until the state differs from current.
func (w *Worker) waitForStateChange(current State) State {
	spinThenWait(func() bool { return w.State() != current }, &w.mu, &w.cond)
	return w.State()
}

func (w *Worker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	w.changeState(Ready, nil)
	for {
		switch s := w.waitForStateChange(Ready); s {
		case HasWork:
			w.mu.Lock()
			task := w.task
			w.mu.Unlock()
			task.Run(w.localAllocator)
			w.changeState(Ready, nil)
		case ExitAsSoonAsPossible:
			return
		default:
			panic(fmt.Sprintf("workers: unexpected state %v", s))
		}
	}
}

// StartWork hands task to an idle worker.
func (w *Worker) StartWork(task Task) {
	w.changeState(HasWork, task)
}

// stop asks the worker to exit and waits for its goroutine to return.
func (w *Worker) stop() {
	w.changeState(ExitAsSoonAsPossible, nil)
	<-w.done
}
