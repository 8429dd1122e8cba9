// File: future/loops.go
// Author: momentics <momentics@gmail.com>
//
// Iterative, stack-safe looping combinators. Each iteration is attached
// as a fresh continuation rather than called recursively in-line, so the
// call stack does not grow with iteration count: every step returns to
// the reactor's task dispatch loop between iterations.

package future

// Option carries an optional value, used by RepeatUntilValue to signal
// whether the loop should continue (Valid == false) or stop with a
// result (Valid == true).
type Option[T any] struct {
	Valid bool
	Value T
}

// Some returns a present Option.
func Some[T any](v T) Option[T] { return Option[T]{Valid: true, Value: v} }

// None returns an absent Option.
func None[T any]() Option[T] { return Option[T]{} }

// Repeat invokes body repeatedly; body signals the loop should stop by
// resolving its returned future with true. A body failure fails the
// returned future.
func Repeat(sched Scheduler, body func() *Future[bool]) *Future[struct{}] {
	p, out := NewPromise[struct{}](sched)
	var step func()
	step = func() {
		ThenWrapped(body(), func(f *Future[bool]) (struct{}, error) {
			stop, err, _ := Peek(f)
			if err != nil {
				p.Fail(err)
				return struct{}{}, nil
			}
			if stop {
				p.Resolve(struct{}{})
				return struct{}{}, nil
			}
			step()
			return struct{}{}, nil
		})
	}
	step()
	return out
}

// RepeatUntilValue invokes body repeatedly until it produces a present
// Option, which becomes the result of the returned future.
func RepeatUntilValue[R any](sched Scheduler, body func() *Future[Option[R]]) *Future[R] {
	p, out := NewPromise[R](sched)
	var step func()
	step = func() {
		ThenWrapped(body(), func(f *Future[Option[R]]) (struct{}, error) {
			opt, err, _ := Peek(f)
			if err != nil {
				p.Fail(err)
				return struct{}{}, nil
			}
			if opt.Valid {
				p.Resolve(opt.Value)
				return struct{}{}, nil
			}
			step()
			return struct{}{}, nil
		})
	}
	step()
	return out
}

// DoUntil runs action repeatedly until cond reports true, checking cond
// before every iteration (including the first).
func DoUntil(sched Scheduler, cond func() bool, action func() *Future[struct{}]) *Future[struct{}] {
	p, out := NewPromise[struct{}](sched)
	var step func()
	step = func() {
		if cond() {
			p.Resolve(struct{}{})
			return
		}
		ThenWrapped(action(), func(f *Future[struct{}]) (struct{}, error) {
			_, err, _ := Peek(f)
			if err != nil {
				p.Fail(err)
				return struct{}{}, nil
			}
			step()
			return struct{}{}, nil
		})
	}
	step()
	return out
}
