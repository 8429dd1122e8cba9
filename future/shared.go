// File: future/shared.go
// Author: momentics <momentics@gmail.com>

package future

import "sync"

// SharedPromise is the write side of a SharedFuture.
type SharedPromise[T any] struct {
	s *sharedState[T]
}

// SharedFuture fans a single result out to any number of independent
// consumers, each obtained via GetFuture. Unlike a plain Future, a
// SharedFuture may be read by many callers; each call to GetFuture
// returns its own ordinary, singly-consumable Future.
type SharedFuture[T any] struct {
	s *sharedState[T]
}

type sharedState[T any] struct {
	mu       sync.Mutex
	sched    Scheduler
	resolved bool
	value    T
	err      error
	waiters  []*Promise[T]
}

// NewSharedPromise creates a linked SharedPromise/SharedFuture pair.
func NewSharedPromise[T any](sched Scheduler) (*SharedPromise[T], *SharedFuture[T]) {
	s := &sharedState[T]{sched: sched}
	return &SharedPromise[T]{s}, &SharedFuture[T]{s}
}

// Resolve completes the shared promise successfully, waking every
// consumer registered so far via GetFuture.
func (sp *SharedPromise[T]) Resolve(v T) { sp.complete(v, nil) }

// Fail completes the shared promise exceptionally.
func (sp *SharedPromise[T]) Fail(err error) { var zero T; sp.complete(zero, err) }

func (sp *SharedPromise[T]) complete(v T, err error) {
	s := sp.s
	s.mu.Lock()
	if s.resolved {
		s.mu.Unlock()
		panic("future: shared promise resolved more than once")
	}
	s.resolved, s.value, s.err = true, v, err
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()
	for _, w := range waiters {
		if err != nil {
			w.Fail(err)
		} else {
			w.Resolve(v)
		}
	}
}

// GetFuture returns a fresh, independently consumable Future carrying
// the shared result. Safe to call any number of times, before or after
// resolution.
func (sf *SharedFuture[T]) GetFuture() *Future[T] {
	s := sf.s
	s.mu.Lock()
	if s.resolved {
		v, err := s.value, s.err
		s.mu.Unlock()
		if err != nil {
			return Failed[T](s.sched, err)
		}
		return Ready[T](s.sched, v)
	}
	p, f := NewPromise[T](s.sched)
	s.waiters = append(s.waiters, p)
	s.mu.Unlock()
	return f
}
