// File: future/combinators.go
// Author: momentics <momentics@gmail.com>
//
// Go methods cannot introduce new type parameters, so the continuation
// combinators that change the value type (then, then_wrapped) are
// package-level generic functions taking the upstream future as their
// first argument rather than methods on Future[T].

package future

// Then attaches fn to run once f resolves successfully, producing a new
// future of (possibly different) type R. If f resolves exceptionally,
// the exception propagates to the returned future without running fn.
// fn is always invoked via Schedule, never inline with the call to Then.
func Then[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	p, out := NewPromise[R](f.c.sched)
	attach(f.c, func() {
		v, err := read(f.c)
		if err != nil {
			p.Fail(err)
			return
		}
		r, err2 := safeCall1(func() (R, error) { return fn(v) })
		if err2 != nil {
			p.Fail(err2)
			return
		}
		p.Resolve(r)
	})
	return out
}

// ThenCompose attaches fn to run once f resolves successfully, where fn
// itself returns a future; the returned future resolves when that inner
// future does. Equivalent to then() in the original design when the
// continuation returns a future rather than a plain value.
func ThenCompose[T, R any](f *Future[T], fn func(T) *Future[R]) *Future[R] {
	p, out := NewPromise[R](f.c.sched)
	attach(f.c, func() {
		v, err := read(f.c)
		if err != nil {
			p.Fail(err)
			return
		}
		inner, ferr := safeCall1(func() (*Future[R], error) { return fn(v), nil })
		if ferr != nil {
			p.Fail(ferr)
			return
		}
		ForwardTo(inner, p)
	})
	return out
}

// ThenWrapped attaches fn to run once f resolves, whether successfully or
// exceptionally; fn receives f itself and inspects it via Peek (Get would
// panic, since attaching fn has already consumed f). Equivalent to
// then_wrapped() in the original design.
func ThenWrapped[T, R any](f *Future[T], fn func(*Future[T]) (R, error)) *Future[R] {
	p, out := NewPromise[R](f.c.sched)
	attach(f.c, func() {
		r, err := safeCall1(func() (R, error) { return fn(f) })
		if err != nil {
			p.Fail(err)
			return
		}
		p.Resolve(r)
	})
	return out
}

// Finally attaches fn to run once f resolves, for cleanup that must run
// regardless of outcome. The returned future carries f's original result
// unless fn itself fails, in which case fn's exception replaces it.
func Finally[T any](f *Future[T], fn func()) *Future[T] {
	p, out := NewPromise[T](f.c.sched)
	attach(f.c, func() {
		v, err := read(f.c)
		if ferr := safeCall0(fn); ferr != nil {
			p.Fail(ferr)
			return
		}
		if err != nil {
			p.Fail(err)
			return
		}
		p.Resolve(v)
	})
	return out
}

// ForwardTo arranges for p to be resolved/failed with whatever f resolves
// to. f is consumed by this call.
func ForwardTo[T any](f *Future[T], p *Promise[T]) {
	attach(f.c, func() {
		v, err := read(f.c)
		if err != nil {
			p.Fail(err)
		} else {
			p.Resolve(v)
		}
	})
}
