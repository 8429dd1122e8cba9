// File: thread/thread.go
// Author: momentics <momentics@gmail.com>

package thread

import (
	"time"

	"github.com/momentics/corereactor/future"
)

// Sleeper is implemented by schedulers that can also arm a timed
// wakeup; reactor.Engine satisfies it. A scheduler that does not is
// still usable, but scheduling-group yields degrade to a busy re-check
// on every loop iteration instead of a single armed timer.
type Sleeper interface {
	Sleep(d time.Duration) *future.Future[struct{}]
}

// parkSignal carries the continuation a driving task must attach to
// the future a thread just parked on.
type parkSignal struct {
	attach func()
}

// Thread is a user-level thread pinned to the reactor that created it.
// It is never referenced directly by callers; Go and Async return only
// the future that resolves when the underlying function returns.
type Thread struct {
	sched    future.Scheduler
	group    *SchedulingGroup
	runCh    chan struct{}
	waitCh   chan parkSignal
	doneCh   chan struct{}
	onFinish func()
}

// Context is passed to a thread's function, and is the only way to
// suspend on a future from within it.
type Context struct {
	t         *Thread
	checkedAt time.Time
}

// Go spawns a new user-level thread running fn, pinned to sched. The
// returned future resolves with fn's result once it returns. group may
// be nil for an unconstrained thread.
func Go[T any](sched future.Scheduler, group *SchedulingGroup, fn func(ctx *Context) (T, error)) *future.Future[T] {
	t := &Thread{
		sched:  sched,
		group:  group,
		runCh:  make(chan struct{}),
		waitCh: make(chan parkSignal),
		doneCh: make(chan struct{}),
	}
	ctx := &Context{t: t, checkedAt: time.Now()}

	var result T
	var ferr error
	go func() {
		<-t.runCh
		result, ferr = safeCallThread(fn, ctx)
		close(t.doneCh)
	}()

	p, f := future.NewPromise[T](sched)
	t.onFinish = func() {
		if ferr != nil {
			p.Fail(ferr)
		} else {
			p.Resolve(result)
		}
	}
	sched.Schedule(func() { drive(t) })
	return f
}

func safeCallThread[T any](fn func(ctx *Context) (T, error), ctx *Context) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{rec: rec}
		}
	}()
	return fn(ctx)
}

type panicError struct{ rec any }

func (e *panicError) Error() string { return "thread: panic in thread function" }

// Async runs fn on a fresh thread that never suspends, matching
// spec.md §4.6's async(f, args...): forward fn's result to a promise
// and return its future. fn receives no Context since it cannot call
// Get.
func Async[T any](sched future.Scheduler, fn func() (T, error)) *future.Future[T] {
	return Go[T](sched, nil, func(ctx *Context) (T, error) { return fn() })
}

// drive runs one leg of t: it releases the thread goroutine to run
// until it either parks on a future (in which case the attached
// continuation becomes the next leg's driver) or finishes, in which
// case t.onFinish runs. drive blocks the calling goroutine — normally
// the single reactor loop goroutine — for exactly as long as the
// thread is actively running, which is the emulated coroutine switch
// spec.md §4.6 describes.
func drive(t *Thread) {
	t.runCh <- struct{}{}
	select {
	case sig := <-t.waitCh:
		sig.attach()
	case <-t.doneCh:
		t.onFinish()
	}
}

// checkpoint charges the time elapsed since ctx's last checkpoint to
// its scheduling group and resets the checkpoint to now. Every Get call
// is a checkpoint, matching spec.md §4.6's dispatcher check — a thread
// that never calls Get is never charged and never yields, since
// suspension occurs exclusively at Get boundaries.
func (ctx *Context) checkpoint() {
	if ctx.t.group == nil {
		return
	}
	now := time.Now()
	ctx.t.group.charge(now.Sub(ctx.checkedAt))
	ctx.checkedAt = now
}

// Get suspends the calling thread until f resolves, per spec.md §4.6:
// control switches back to the reactor's task loop while parked, and
// back into the thread once a task notices f is ready. Only valid from
// within a function passed to Go/Async.
func Get[T any](ctx *Context, f *future.Future[T]) (T, error) {
	ctx.checkpoint()
	if ctx.t.group != nil && ctx.t.group.ShouldYield() {
		yield(ctx)
		ctx.checkedAt = time.Now()
	}

	if _, _, ok := future.Peek(f); ok {
		return future.Get(f)
	}

	var result T
	var ferr error
	attach := func() {
		future.ThenWrapped(f, func(rf *future.Future[T]) (struct{}, error) {
			result, ferr, _ = future.Peek(rf)
			drive(ctx.t)
			return struct{}{}, nil
		})
	}
	ctx.t.waitCh <- parkSignal{attach: attach}
	<-ctx.t.runCh
	return result, ferr
}

// yield parks the thread until its scheduling group's next quota
// period, re-arming via sched's Sleep if available, or a repeated
// reschedule-and-recheck otherwise.
func yield(ctx *Context) {
	if s, ok := ctx.t.sched.(Sleeper); ok {
		remaining := ctx.t.group.untilNextPeriod()
		_, _ = Get(ctx, s.Sleep(remaining))
		return
	}
	p, f := future.NewPromise[struct{}](ctx.t.sched)
	var recheck func()
	recheck = func() {
		if ctx.t.group.ShouldYield() {
			ctx.t.sched.Schedule(recheck)
			return
		}
		p.Resolve(struct{}{})
	}
	ctx.t.sched.Schedule(recheck)
	_, _ = Get(ctx, f)
}
