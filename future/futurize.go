// File: future/futurize.go
// Author: momentics <momentics@gmail.com>
//
// Apply lifts an ordinary, possibly-panicking function into the future
// world, matching futurize<T>::apply from the original design: whatever
// a reactor-bound call does, synchronous return or panic, ends up as a
// resolved or failed future rather than propagating out of the caller.

package future

// Apply invokes fn immediately and wraps its outcome (including any
// panic) as an already-resolved Future bound to sched.
func Apply[T any](sched Scheduler, fn func() (T, error)) *Future[T] {
	v, err := safeCall1(fn)
	if err != nil {
		return Failed[T](sched, err)
	}
	return Ready[T](sched, v)
}

// ApplyAsync invokes fn immediately, where fn itself returns a future; a
// panic raised before fn returns its future is captured and reported as
// a failed future instead of propagating.
func ApplyAsync[T any](sched Scheduler, fn func() *Future[T]) *Future[T] {
	f, err := safeCall1(func() (*Future[T], error) { return fn(), nil })
	if err != nil {
		return Failed[T](sched, err)
	}
	return f
}
