// File: aio/context.go
// Author: momentics <momentics@gmail.com>

package aio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

// Class identifies a priority class competing for a reactor's AIO slots.
// Requests under a higher-weight class are dispatched more often when
// several classes have pending work, matching spec.md §4.4's "weighted
// fair share determines submission order."
type Class int

// DefaultClass is used by callers that do not care about priority.
const DefaultClass Class = 0

// DefaultCapacity is the default number of in-flight slots per reactor's
// AIO context, matching spec.md §5's "one shared semaphore per reactor
// (default capacity 128, tunable)."
const DefaultCapacity = 128

type request struct {
	work    func() (int64, error)
	promise *future.Promise[int64]
}

type classState struct {
	weight  int
	credit  int
	pending []*request
}

// Context is one reactor's AIO submission queue: a bounded in-flight
// slot count shared across every registered Class, drained by a poller
// registered on the owning Engine.
type Context struct {
	engine   *reactor.Engine
	capacity int
	inFlight atomic.Int64

	completed atomic.Uint64
	failed    atomic.Uint64

	mu      sync.Mutex
	classes map[Class]*classState
	order   []Class
	rrIndex int
}

// IOQueueStats is a point-in-time observability snapshot of a Context,
// per spec.md §3: capacity, current occupancy, backlog, and lifetime
// completion counts, meant to be published into a control.MetricsRegistry
// (or any other StatsSink) rather than read directly off the Context.
type IOQueueStats struct {
	Capacity  int
	InFlight  int64
	Pending   int
	Completed uint64
	Failed    uint64
}

// Stats returns a snapshot of this context's current queue occupancy
// and lifetime completion counts.
func (c *Context) Stats() IOQueueStats {
	c.mu.Lock()
	pending := 0
	for _, cs := range c.classes {
		pending += len(cs.pending)
	}
	c.mu.Unlock()
	return IOQueueStats{
		Capacity:  c.capacity,
		InFlight:  c.inFlight.Load(),
		Pending:   pending,
		Completed: c.completed.Load(),
		Failed:    c.failed.Load(),
	}
}

// StatsSink is the subset of control.MetricsRegistry's API PublishStats
// needs, kept as a local interface so aio does not depend on control.
type StatsSink interface {
	Set(key string, value any)
}

// PublishStats records this context's current Stats into sink under
// key, for a caller to poll periodically (e.g. from a cmd/ entrypoint)
// and expose through control.MetricsRegistry.GetSnapshot.
func (c *Context) PublishStats(sink StatsSink, key string) {
	sink.Set(key, c.Stats())
}

// NewContext creates an AIO context bound to engine with the given
// in-flight slot capacity (DefaultCapacity if capacity <= 0), registers
// DefaultClass with weight 1, and installs its poller on engine.
func NewContext(engine *reactor.Engine, capacity int) *Context {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Context{
		engine:   engine,
		capacity: capacity,
		classes:  make(map[Class]*classState),
	}
	c.RegisterClass(DefaultClass, 1)
	engine.RegisterPoller(reactor.PollerFunc(c.poll))
	return c
}

// Engine returns the reactor this context submits completions onto.
func (c *Context) Engine() *reactor.Engine { return c.engine }

// RegisterClass declares a priority class with the given weighted fair
// share. Safe to call again for an already-registered class, in which
// case it is a no-op: the weight of a class in use is fixed at first
// registration.
func (c *Context) RegisterClass(class Class, weight int) {
	if weight <= 0 {
		weight = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.classes[class]; ok {
		return
	}
	c.classes[class] = &classState{weight: weight}
	c.order = append(c.order, class)
}

// Submit enqueues work under class and returns a future that resolves
// with the byte count work reports (or fails with its error) once a
// slot is available and the class's weighted share makes it eligible.
// work runs on a separate goroutine; its completion is always handed
// back to the owning Engine via Schedule.
func (c *Context) Submit(class Class, work func() (int64, error)) *future.Future[int64] {
	p, f := future.NewPromise[int64](c.engine)
	c.mu.Lock()
	cs, ok := c.classes[class]
	if !ok {
		cs = &classState{weight: 1}
		c.classes[class] = cs
		c.order = append(c.order, class)
	}
	cs.pending = append(cs.pending, &request{work: work, promise: p})
	c.mu.Unlock()
	return f
}

// poll is registered as the engine's AIO poller: while in-flight slots
// remain, it picks the next eligible class by deficit-weighted round
// robin and dispatches its head request.
func (c *Context) poll() (bool, error) {
	didWork := false
	for c.inFlight.Load() < int64(c.capacity) {
		req := c.nextEligible()
		if req == nil {
			break
		}
		c.inFlight.Add(1)
		didWork = true
		go c.run(req)
	}
	return didWork, nil
}

func (c *Context) nextEligible() *request {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.order)
	for i := 0; i < n; i++ {
		idx := (c.rrIndex + i) % n
		cls := c.order[idx]
		cs := c.classes[cls]
		if len(cs.pending) == 0 {
			cs.credit = 0
			continue
		}
		if cs.credit < 1 {
			cs.credit += cs.weight
		}
		cs.credit--
		req := cs.pending[0]
		cs.pending = cs.pending[1:]
		if cs.credit > 0 {
			c.rrIndex = idx
		} else {
			c.rrIndex = (idx + 1) % n
		}
		return req
	}
	return nil
}

func (c *Context) run(req *request) {
	defer c.inFlight.Add(-1)
	n, err := func() (n int64, rerr error) {
		defer func() {
			if r := recover(); r != nil {
				n, rerr = 0, fmt.Errorf("aio: panic in request: %v", r)
			}
		}()
		return req.work()
	}()
	if err != nil {
		c.failed.Add(1)
	} else {
		c.completed.Add(1)
	}
	c.engine.Schedule(func() {
		if err != nil {
			req.promise.Fail(err)
			return
		}
		req.promise.Resolve(n)
	})
}
