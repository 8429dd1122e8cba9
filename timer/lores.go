// File: timer/lores.go
// Author: momentics <momentics@gmail.com>

package timer

import (
	"sync/atomic"
	"time"

	"github.com/momentics/corereactor/api"
)

// LoResResolution is the granularity of the shared low-resolution clock.
const LoResResolution = 10 * time.Millisecond

// LoResClock is a shared, lock-free, 10ms-granularity clock. One
// reactor (conventionally CPU 0) owns the periodic task that refreshes
// it; every reactor reads it via Now without locking or contending with
// the writer, since the underlying store is a single atomic word.
type LoResClock struct {
	nowNanos atomic.Int64
}

// NewLoResClock constructs a clock initialized to the current time.
// Share the returned pointer across every reactor in the process.
func NewLoResClock() *LoResClock {
	c := &LoResClock{}
	c.nowNanos.Store(time.Now().UnixNano())
	return c
}

// Now returns the clock's last-refreshed time in nanoseconds since the
// Unix epoch. May lag real time by up to LoResResolution.
func (c *LoResClock) Now() int64 { return c.nowNanos.Load() }

// StartUpdater arms a periodic timer on wheel that refreshes the clock
// every LoResResolution. Call this exactly once, from the reactor that
// owns the clock (CPU 0 by convention).
func (c *LoResClock) StartUpdater(wheel *HiResWheel) api.Cancelable {
	return wheel.ArmPeriodic(LoResResolution, func() {
		c.nowNanos.Store(time.Now().UnixNano())
	})
}
