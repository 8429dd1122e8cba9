// File: thread/thread_test.go
// Author: momentics <momentics@gmail.com>

package thread

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

// inlineScheduler runs tasks synchronously on whatever goroutine calls
// Schedule, for deterministic single-goroutine assertions.
type inlineScheduler struct{}

func (s *inlineScheduler) Schedule(task func()) { task() }

func TestAsyncResolvesWithoutSuspension(t *testing.T) {
	sched := &inlineScheduler{}
	f := Async(sched, func() (int, error) { return 7, nil })

	_, _, ok := future.Peek(f)
	require.True(t, ok)
	v, err := future.Get(f)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestAsyncPropagatesPanicAsError(t *testing.T) {
	sched := &inlineScheduler{}
	f := Async(sched, func() (int, error) { panic("boom") })

	_, err := future.Get(f)
	require.Error(t, err)
}

func TestGoSuspendsOnGetAndResumesAfterResolve(t *testing.T) {
	sched := &inlineScheduler{}
	inner, f2 := future.NewPromise[int](sched)

	outer := Go(sched, nil, func(ctx *Context) (int, error) {
		v, err := Get(ctx, f2)
		if err != nil {
			return 0, err
		}
		return v * 2, nil
	})

	_, _, ok := future.Peek(outer)
	require.False(t, ok, "thread must park instead of completing before f2 resolves")

	inner.Resolve(21)

	v, err := future.Get(outer)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestGoPropagatesSuspendedFutureFailure(t *testing.T) {
	sched := &inlineScheduler{}
	inner, f2 := future.NewPromise[int](sched)

	wantErr := errors.New("boom")
	outer := Go(sched, nil, func(ctx *Context) (int, error) {
		_, err := Get(ctx, f2)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})

	inner.Fail(wantErr)

	_, err := future.Get(outer)
	require.ErrorIs(t, err, wantErr)
}

func TestGoChainsMultipleSuspensionPoints(t *testing.T) {
	sched := &inlineScheduler{}
	p1, f1 := future.NewPromise[int](sched)
	p2, f2 := future.NewPromise[int](sched)

	outer := Go(sched, nil, func(ctx *Context) (int, error) {
		a, err := Get(ctx, f1)
		if err != nil {
			return 0, err
		}
		b, err := Get(ctx, f2)
		if err != nil {
			return 0, err
		}
		return a + b, nil
	})

	p1.Resolve(10)
	_, _, ok := future.Peek(outer)
	require.False(t, ok)

	p2.Resolve(32)
	v, err := future.Get(outer)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestSchedulingGroupYieldsAfterQuotaExhausted(t *testing.T) {
	g := NewSchedulingGroup(20*time.Millisecond, 5*time.Millisecond)
	require.False(t, g.ShouldYield())

	g.charge(6 * time.Millisecond)
	require.True(t, g.ShouldYield())

	time.Sleep(25 * time.Millisecond)
	require.False(t, g.ShouldYield())
}

func pumpUntil[T any](t *testing.T, e *reactor.Engine, f *future.Future[T]) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !f.Available() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for future")
		}
		e.RunOnce()
		time.Sleep(time.Millisecond)
	}
}

func TestGoYieldsViaEngineSleepWhenGroupExhausted(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	group := NewSchedulingGroup(15*time.Millisecond, time.Millisecond)

	outer := Go(e, group, func(ctx *Context) (int, error) {
		a, err := Get(ctx, future.Ready(e, 1))
		if err != nil {
			return 0, err
		}
		// First checkpoint above charged ~0; force the group over quota
		// before the next Get so the yield path actually engages.
		group.charge(5 * time.Millisecond)
		b, err := Get(ctx, future.Ready(e, 41))
		if err != nil {
			return 0, err
		}
		return a + b, nil
	})

	pumpUntil(t, e, outer)
	v, err := future.Get(outer)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}
