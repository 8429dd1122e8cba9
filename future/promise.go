// File: future/promise.go
// Author: momentics <momentics@gmail.com>

package future

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/momentics/corereactor/api"
)

// Scheduler posts a task for later, non-inline execution. A reactor main
// loop (see package reactor) implements this by pushing onto its normal
// task queue; tests can implement it with an immediate or buffered runner.
type Scheduler interface {
	Schedule(task func())
}

type state int32

const (
	notReady state = iota
	ready
	exceptional
)

// IgnoredExceptionLogger receives exceptions carried by futures that were
// garbage collected without ever being consumed via Then/ThenWrapped/Get.
// It defaults to a no-op; control/log wiring replaces it at startup.
var IgnoredExceptionLogger = func(err error) {}

type cell[T any] struct {
	mu       sync.Mutex
	st       state
	value    T
	err      error
	cont     func()
	attached bool
	sched    Scheduler
}

// Future is a single-consumer handle to a value that becomes available
// asynchronously. It is produced by exactly one Promise and consumed by
// exactly one of: a single Then/ThenWrapped/Finally attachment, or a
// single Get call.
type Future[T any] struct {
	c *cell[T]
}

// Promise is the write side of a Future. Resolve or Fail must be called
// at most once.
type Promise[T any] struct {
	c *cell[T]
}

// NewPromise creates a linked Promise/Future pair. sched is the reactor
// on which continuations attached to the returned future will run.
func NewPromise[T any](sched Scheduler) (*Promise[T], *Future[T]) {
	c := &cell[T]{sched: sched}
	runtime.SetFinalizer(c, finalizeCell[T])
	return &Promise[T]{c}, &Future[T]{c}
}

func finalizeCell[T any](c *cell[T]) {
	c.mu.Lock()
	ignored := c.st == exceptional && !c.attached
	err := c.err
	c.mu.Unlock()
	if ignored {
		IgnoredExceptionLogger(err)
	}
}

// Ready returns a future that is already resolved with value.
func Ready[T any](sched Scheduler, value T) *Future[T] {
	return &Future[T]{&cell[T]{sched: sched, st: ready, value: value}}
}

// Failed returns a future that is already resolved exceptionally.
func Failed[T any](sched Scheduler, err error) *Future[T] {
	return &Future[T]{&cell[T]{sched: sched, st: exceptional, err: err}}
}

// Resolve completes the promise successfully. Panics if already resolved.
func (p *Promise[T]) Resolve(v T) { p.complete(v, nil) }

// Fail completes the promise exceptionally. Panics if already resolved.
func (p *Promise[T]) Fail(err error) { var zero T; p.complete(zero, err) }

// Abandon marks the promise broken, standing in for the destructor-driven
// broken_promise of the original design: Go has no destructors, so a
// promise that will never be resolved must be abandoned explicitly.
func (p *Promise[T]) Abandon() {
	var zero T
	p.complete(zero, api.ErrBrokenPromise)
}

func (p *Promise[T]) complete(v T, err error) {
	c := p.c
	c.mu.Lock()
	if c.st != notReady {
		c.mu.Unlock()
		panic("future: promise resolved more than once")
	}
	c.value = v
	c.err = err
	if err != nil {
		c.st = exceptional
	} else {
		c.st = ready
	}
	cont := c.cont
	c.cont = nil
	c.mu.Unlock()
	if cont != nil {
		c.sched.Schedule(cont)
	}
}

// Available reports whether f is already resolved, without consuming it.
func (f *Future[T]) Available() bool {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.st != notReady
}

// attach installs k to run, via Schedule and never inline, once the
// future resolves. It is the single allowed consumption of f.
func attach[T any](c *cell[T], k func()) {
	c.mu.Lock()
	if c.attached {
		c.mu.Unlock()
		panic("future: future already consumed")
	}
	c.attached = true
	if c.st == notReady {
		c.cont = k
		c.mu.Unlock()
		return
	}
	sched := c.sched
	c.mu.Unlock()
	sched.Schedule(k)
}

func read[T any](c *cell[T]) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.err
}

// Peek returns the current value/error and whether the future is
// resolved yet, without consuming it. Safe to call any number of times.
func Peek[T any](f *Future[T]) (value T, err error, availableNow bool) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.value, f.c.err, f.c.st != notReady
}

// Get consumes a ready future and returns its value or error. It panics
// if the future is not yet resolved: callers without proof of readiness
// must suspend via a user-level thread (package thread) or attach a
// continuation instead.
func Get[T any](f *Future[T]) (T, error) {
	f.c.mu.Lock()
	if f.c.st == notReady {
		f.c.mu.Unlock()
		panic("future: Get called on a future that is not ready")
	}
	if f.c.attached {
		f.c.mu.Unlock()
		panic("future: future already consumed")
	}
	f.c.attached = true
	v, err := f.c.value, f.c.err
	f.c.mu.Unlock()
	return v, err
}

func safeCall1[R any](fn func() (R, error)) (r R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("future: panic in continuation: %v", rec)
		}
	}()
	return fn()
}

func safeCall0(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("future: panic in continuation: %v", rec)
		}
	}()
	fn()
	return nil
}
