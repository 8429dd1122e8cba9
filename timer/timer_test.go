// File: timer/timer_test.go
// Author: momentics <momentics@gmail.com>

package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// inlineScheduler runs tasks synchronously on whatever goroutine calls
// Schedule, for deterministic assertions in tests that don't need a
// full reactor.
type inlineScheduler struct{}

func (s *inlineScheduler) Schedule(task func()) { task() }

func TestHiResWheelFiresInDeadlineOrder(t *testing.T) {
	sched := &inlineScheduler{}
	w := NewHiResWheel(sched)
	defer w.Close()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(3)
	record := func(i int) func() {
		return func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		}
	}

	w.ArmDuration(30*time.Millisecond, record(3))
	w.ArmDuration(10*time.Millisecond, record(1))
	w.ArmDuration(20*time.Millisecond, record(2))

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestHiResWheelCancelPreventsFiring(t *testing.T) {
	sched := &inlineScheduler{}
	w := NewHiResWheel(sched)
	defer w.Close()

	fired := false
	c := w.ArmDuration(20*time.Millisecond, func() { fired = true })
	require.NoError(t, c.Cancel())

	time.Sleep(60 * time.Millisecond)
	require.False(t, fired)
}

func TestHiResWheelPeriodicRearms(t *testing.T) {
	sched := &inlineScheduler{}
	w := NewHiResWheel(sched)
	defer w.Close()

	var mu sync.Mutex
	count := 0
	var cancel interface{ Cancel() error }
	c := w.ArmPeriodic(10*time.Millisecond, func() {
		mu.Lock()
		count++
		n := count
		mu.Unlock()
		if n >= 3 {
			cancel.Cancel()
		}
	})
	cancel = c

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, count, 3)
}

func TestLoResClockUpdatesPeriodically(t *testing.T) {
	sched := &inlineScheduler{}
	w := NewHiResWheel(sched)
	defer w.Close()

	clock := NewLoResClock()
	c := clock.StartUpdater(w)
	defer c.Cancel()

	first := clock.Now()
	time.Sleep(3 * LoResResolution)
	second := clock.Now()

	require.Greater(t, second, first)
}
