// File: thread/scheduling_group.go
// Author: momentics <momentics@gmail.com>

package thread

import (
	"sync"
	"time"
)

// DefaultStackBudget documents the 128 KiB-equivalent stack budget
// spec.md §4.6 names for a thread; Go goroutine stacks grow on demand
// from a few KiB, so this constant is never used for actual stack sizing;
// nothing in this package, including the scheduling-group quota
// bookkeeping below, reads it.
const DefaultStackBudget = 128 * 1024

// SchedulingGroup is a quota-based fair share across threads within a
// reactor, per spec.md §4.6: a group has (period, quota); a thread's
// dispatcher checks ShouldYield and, once the group's remaining quota
// for the current period is exhausted, yields and re-arms for the next
// period.
type SchedulingGroup struct {
	mu          sync.Mutex
	period      time.Duration
	quota       time.Duration
	used        time.Duration
	periodStart time.Time
}

// NewSchedulingGroup constructs a group with the given period and
// per-period quota.
func NewSchedulingGroup(period, quota time.Duration) *SchedulingGroup {
	return &SchedulingGroup{period: period, quota: quota, periodStart: time.Now()}
}

// charge records d as having been spent running threads in this group,
// rolling the period over if it has elapsed.
func (g *SchedulingGroup) charge(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rolloverLocked(time.Now())
	g.used += d
}

func (g *SchedulingGroup) rolloverLocked(now time.Time) {
	if now.Sub(g.periodStart) >= g.period {
		g.periodStart = now
		g.used = 0
	}
}

// ShouldYield reports whether the group's quota for the current period
// is exhausted. A caller that observes true should suspend until the
// next period boundary rather than continuing to run.
func (g *SchedulingGroup) ShouldYield() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rolloverLocked(time.Now())
	return g.used >= g.quota
}

// untilNextPeriod returns how long remains until the group's quota
// resets.
func (g *SchedulingGroup) untilNextPeriod() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	remaining := g.period - time.Since(g.periodStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}
