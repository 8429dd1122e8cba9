// File: reactor/engine.go
// Author: momentics <momentics@gmail.com>
//
// Engine is the per-core reactor: a cooperative, single-goroutine main
// loop owning a high-priority task FIFO, a normal task FIFO, and a set
// of registered pollers. It implements future.Scheduler so that futures
// created on this reactor schedule their continuations here.

package reactor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/corereactor/control"
	"github.com/momentics/corereactor/future"
)

// DefaultTaskQuota bounds how many normal-priority tasks run per
// iteration before the loop checks pollers again, standing in for the
// kernel-timer-refreshed time slice of the original design.
const DefaultTaskQuota = 128

// Engine is one core's reactor. All of its methods other than Schedule
// and ScheduleHighPriority (which are safe to call from any goroutine,
// matching how a completion callback or a cross-core SMP delivery might
// enqueue work) are meant to be called only from the owning goroutine.
type Engine struct {
	CPU int

	Log zerolog.Logger

	// Config is a reference to the process-wide control.ConfigStore, per
	// spec.md §2 (shared, not a copy). nil unless set via SetConfig
	// (app.App wires it for every shard it builds).
	Config *control.ConfigStore

	taskQuota int

	mu       sync.Mutex
	normal   *taskQueue
	highPrio *taskQueue

	pollers []Poller

	atExitMu sync.Mutex
	atExit   []func()

	stopping atomic.Bool
	exitCode int

	idleSpins atomic.Int64
}

// NewEngine constructs a reactor for the given CPU index. cpu is
// advisory (used for logging and affinity pinning by the caller); it
// does not itself pin the calling OS thread.
func NewEngine(cpu int, log zerolog.Logger) *Engine {
	return &Engine{
		CPU:       cpu,
		Log:       log.With().Int("cpu", cpu).Logger(),
		taskQuota: DefaultTaskQuota,
		normal:    newTaskQueue(),
		highPrio:  newTaskQueue(),
	}
}

// Schedule implements future.Scheduler: task is appended to the normal
// FIFO. Safe to call from any goroutine; normal use is that it is only
// ever called from the owning reactor goroutine itself, since futures
// created on this engine are only ever touched there.
func (e *Engine) Schedule(task func()) {
	e.mu.Lock()
	e.normal.push(task)
	e.mu.Unlock()
}

// ScheduleHighPriority appends task to the FIFO drained completely at
// the start of every loop iteration, ahead of any normal task.
func (e *Engine) ScheduleHighPriority(task func()) {
	e.mu.Lock()
	e.highPrio.push(task)
	e.mu.Unlock()
}

// RegisterPoller adds p to the set invoked once per loop iteration.
// Must be called before Run starts, or from within a task running on
// this engine.
func (e *Engine) RegisterPoller(p Poller) {
	e.pollers = append(e.pollers, p)
}

// AtExit arranges for fn to run after the loop stops, in registration
// order, before Run returns.
func (e *Engine) AtExit(fn func()) {
	e.atExitMu.Lock()
	e.atExit = append(e.atExit, fn)
	e.atExitMu.Unlock()
}

// Exit requests the loop stop after the current iteration, with code
// recorded for the caller to inspect via ExitCode.
func (e *Engine) Exit(code int) {
	e.exitCode = code
	e.stopping.Store(true)
}

// ExitCode returns the code passed to the Exit call that stopped the
// loop, or 0 if Exit was never called.
func (e *Engine) ExitCode() int { return e.exitCode }

// SetConfig installs cs as this engine's shared config reference. Meant
// to be called once at construction, before Run starts.
func (e *Engine) SetConfig(cs *control.ConfigStore) { e.Config = cs }

// SetTaskQuota updates how many normal-priority tasks run per loop
// iteration before the next poller pass. Meant to be called only from
// the owning goroutine — typically from within a config-apply closure
// delivered via smp.SubmitTo, matching spec.md §2's hot-reload path.
func (e *Engine) SetTaskQuota(n int) {
	if n > 0 {
		e.taskQuota = n
	}
}

// Sleep returns a future that resolves after d elapses, scheduled on
// this engine. It is a thin convenience over time.AfterFunc; production
// code wanting wheel-backed timers should use the timer package instead,
// which integrates with this engine as a Poller.
func (e *Engine) Sleep(d time.Duration) *future.Future[struct{}] {
	p, f := future.NewPromise[struct{}](e)
	time.AfterFunc(d, func() { p.Resolve(struct{}{}) })
	return f
}

// Run enters the main loop: drain high-priority tasks completely, run a
// quota-bounded batch of normal tasks, poll every registered poller
// once, and sleep if nothing was ready and every poller agrees it is
// safe to block. It returns once Exit has been called and every at-exit
// callback has run.
func (e *Engine) Run() {
	backoff := time.Microsecond
	const maxBackoff = 10 * time.Millisecond

	for !e.stopping.Load() {
		if e.step(backoff) {
			backoff = time.Microsecond
			continue
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	e.atExitMu.Lock()
	hooks := e.atExit
	e.atExitMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// RunOnce executes a single main-loop iteration (high-priority drain,
// one normal-task batch, one pass over every poller) without blocking
// or sleeping, and reports whether it did any work. It is meant for
// tests and for embedding this engine's loop inside another driver
// rather than owning the OS thread itself.
func (e *Engine) RunOnce() bool {
	return e.step(0)
}

// step runs one iteration and reports whether any work happened. When
// idle and every poller agrees sleeping is safe, it blocks on the first
// sleepable poller for up to backoff before giving up; backoff of 0
// disables that wait, making the call non-blocking (used by RunOnce).
func (e *Engine) step(backoff time.Duration) bool {
	e.drainHighPriority()

	ranTasks := e.runNormalBatch()

	pollerDidWork := false
	allCanSleep := true
	for _, p := range e.pollers {
		did, err := p.Poll()
		if err != nil {
			e.Log.Error().Err(err).Msg("poller error")
			continue
		}
		if did {
			pollerDidWork = true
		}
		if !p.CanSleep() {
			allCanSleep = false
		}
	}

	if ranTasks || pollerDidWork {
		return true
	}

	e.idleSpins.Add(1)
	if backoff <= 0 {
		return false
	}
	if allCanSleep && e.blockOnSleepablePollers(backoff) {
		return true
	}
	time.Sleep(backoff)
	return false
}

// sleepablePoller is implemented by pollers whose backend supports a
// true blocking wait (EpollPoller's epoll_wait/IOCP); the main loop
// uses it instead of a fixed backoff sleep when every poller reports
// CanSleep.
type sleepablePoller interface {
	WaitBlocking(timeout time.Duration) (bool, error)
}

// blockOnSleepablePollers blocks on the first sleepable poller found,
// for up to timeout, and reports whether it observed any work. It exists
// so an idle reactor parks in a real OS wait instead of busy-spinning.
func (e *Engine) blockOnSleepablePollers(timeout time.Duration) bool {
	for _, p := range e.pollers {
		if sp, ok := p.(sleepablePoller); ok {
			did, err := sp.WaitBlocking(timeout)
			if err != nil {
				e.Log.Error().Err(err).Msg("sleepable poller error")
				continue
			}
			return did
		}
	}
	return false
}

func (e *Engine) drainHighPriority() {
	for {
		e.mu.Lock()
		task := e.highPrio.pop()
		e.mu.Unlock()
		if task == nil {
			return
		}
		e.runTask(task)
	}
}

func (e *Engine) runNormalBatch() bool {
	ran := false
	for i := 0; i < e.taskQuota; i++ {
		e.mu.Lock()
		task := e.normal.pop()
		e.mu.Unlock()
		if task == nil {
			break
		}
		e.runTask(task)
		ran = true
	}
	return ran
}

// runTask executes task with a recover guard: an exception thrown in a
// task terminates only that task, never the loop.
func (e *Engine) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error().Interface("panic", r).Msg("task panicked")
		}
	}()
	task()
}
