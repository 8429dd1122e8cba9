// File: timer/hires.go
// Author: momentics <momentics@gmail.com>

package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/future"
)

// HiResWheel is the high-resolution deadline-ordered timer structure. A
// single background goroutine stands in for the kernel timer signal of
// the original design: it blocks on a time.Timer reset to the earliest
// armed deadline and, on firing, hands each due callback to sched rather
// than invoking it directly.
type HiResWheel struct {
	mu    sync.Mutex
	h     entryHeap
	seq   int64
	t     *time.Timer
	sched future.Scheduler

	closed chan struct{}
}

// NewHiResWheel constructs a wheel whose callbacks are scheduled onto
// sched (normally the owning reactor's Engine).
func NewHiResWheel(sched future.Scheduler) *HiResWheel {
	t := time.NewTimer(time.Hour)
	t.Stop()
	w := &HiResWheel{
		t:      t,
		sched:  sched,
		closed: make(chan struct{}),
	}
	heap.Init(&w.h)
	go w.run()
	return w
}

// Close stops the background wait goroutine. Armed timers are left
// unfired; callers should cancel anything still pending first.
func (w *HiResWheel) Close() {
	close(w.closed)
}

// Now returns the current wall-clock time in nanoseconds since the Unix
// epoch.
func (w *HiResWheel) Now() int64 { return time.Now().UnixNano() }

// Arm schedules fn to run once deadline passes.
func (w *HiResWheel) Arm(deadline time.Time, fn func()) api.Cancelable {
	return w.arm(deadline, 0, fn)
}

// ArmDuration schedules fn to run once d elapses.
func (w *HiResWheel) ArmDuration(d time.Duration, fn func()) api.Cancelable {
	return w.arm(time.Now().Add(d), 0, fn)
}

// ArmPeriodic schedules fn to run every period, starting after the first
// period elapses. A periodic timer re-arms itself from its firing point,
// not from the original deadline, so a slow callback does not cause
// back-to-back catch-up firings.
func (w *HiResWheel) ArmPeriodic(period time.Duration, fn func()) api.Cancelable {
	return w.arm(time.Now().Add(period), period, fn)
}

func (w *HiResWheel) arm(deadline time.Time, period time.Duration, fn func()) api.Cancelable {
	w.mu.Lock()
	w.seq++
	e := &entry{deadline: deadline, seq: w.seq, fn: fn, period: period}
	heap.Push(&w.h, e)
	w.rearmWaitLocked()
	w.mu.Unlock()
	return &cancelHandle{w: w, e: e, done: make(chan struct{})}
}

// rearm resets the background timer to fire at the new earliest
// deadline. Must be called with w.mu held.
func (w *HiResWheel) rearmWaitLocked() {
	if len(w.h) == 0 {
		return
	}
	w.t.Stop()
	d := time.Until(w.h[0].deadline)
	if d < 0 {
		d = 0
	}
	w.t.Reset(d)
}

func (w *HiResWheel) run() {
	for {
		select {
		case <-w.closed:
			return
		case <-w.t.C:
			w.fireDue()
		}
	}
}

func (w *HiResWheel) fireDue() {
	now := time.Now()
	var due []*entry
	w.mu.Lock()
	for len(w.h) > 0 && !w.h[0].deadline.After(now) {
		e := heap.Pop(&w.h).(*entry)
		if e.canceled {
			continue
		}
		e.firing = true
		due = append(due, e)
	}
	w.rearmWaitLocked()
	w.mu.Unlock()

	for _, e := range due {
		fn := e.fn
		w.sched.Schedule(fn)
		if e.period > 0 {
			w.mu.Lock()
			if !e.canceled {
				w.seq++
				e.seq = w.seq
				e.deadline = time.Now().Add(e.period)
				e.firing = false
				heap.Push(&w.h, e)
				w.rearmWaitLocked()
			}
			w.mu.Unlock()
		}
	}
}

// Schedule implements api.Scheduler for callers that want the
// generic delay-based contract instead of Arm/ArmDuration.
func (w *HiResWheel) Schedule(delayNanos int64, fn func()) (api.Cancelable, error) {
	return w.ArmDuration(time.Duration(delayNanos), fn), nil
}

// Cancel implements api.Scheduler.
func (w *HiResWheel) Cancel(c api.Cancelable) error { return c.Cancel() }

type cancelHandle struct {
	w    *HiResWheel
	e    *entry
	done chan struct{}
}

// Cancel removes the timer if still armed. Returns nil whether or not it
// was armed; the handle does not report which: Done is closed only by
// Cancel itself, and Err always returns nil.
func (c *cancelHandle) Cancel() error {
	c.w.mu.Lock()
	if !c.e.canceled && !c.e.firing && c.e.index >= 0 {
		heap.Remove(&c.w.h, c.e.index)
	}
	c.e.canceled = true
	c.w.mu.Unlock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return nil
}

func (c *cancelHandle) Done() <-chan struct{} { return c.done }

func (c *cancelHandle) Err() error { return nil }
