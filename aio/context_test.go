// File: aio/context_test.go
// Author: momentics <momentics@gmail.com>

package aio

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

func TestSubmitResolvesWithByteCount(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := NewContext(e, 4)

	out := ctx.Submit(DefaultClass, func() (int64, error) { return 42, nil })

	var v int64
	var err error
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200 && !out.Available(); i++ {
			e.RunOnce()
			time.Sleep(time.Millisecond)
		}
		v, err = future.Get(out)
		close(done)
	}()
	<-done
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
}

func TestSubmitPropagatesError(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := NewContext(e, 4)

	out := ctx.Submit(DefaultClass, func() (int64, error) { return 0, fmt.Errorf("boom") })

	var err error
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200 && !out.Available(); i++ {
			e.RunOnce()
			time.Sleep(time.Millisecond)
		}
		_, err = future.Get(out)
		close(done)
	}()
	<-done
	require.Error(t, err)
}

func TestHigherWeightClassServedMoreOften(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := NewContext(e, 1)

	const heavy Class = 1
	ctx.RegisterClass(heavy, 4)

	var lightRuns, heavyRuns int
	for i := 0; i < 20; i++ {
		ctx.Submit(DefaultClass, func() (int64, error) { lightRuns++; return 0, nil })
		ctx.Submit(heavy, func() (int64, error) { heavyRuns++; return 0, nil })
	}

	for i := 0; i < 16; i++ {
		req := ctx.nextEligible()
		if req == nil {
			break
		}
		_, _ = req.work()
	}
	require.Greater(t, heavyRuns, lightRuns)
}

type fakeSink struct{ values map[string]any }

func (s *fakeSink) Set(key string, value any) { s.values[key] = value }

func TestPublishStatsRecordsCompletedAndFailedCounts(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := NewContext(e, 4)

	ok := ctx.Submit(DefaultClass, func() (int64, error) { return 1, nil })
	bad := ctx.Submit(DefaultClass, func() (int64, error) { return 0, fmt.Errorf("boom") })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200 && !(ok.Available() && bad.Available()); i++ {
			e.RunOnce()
			time.Sleep(time.Millisecond)
		}
		close(done)
	}()
	<-done

	sink := &fakeSink{values: make(map[string]any)}
	ctx.PublishStats(sink, "aio.test")

	stats, ok2 := sink.values["aio.test"].(IOQueueStats)
	require.True(t, ok2)
	require.Equal(t, uint64(1), stats.Completed)
	require.Equal(t, uint64(1), stats.Failed)
	require.Equal(t, 4, stats.Capacity)
}

func TestPanicInRequestBecomesError(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := NewContext(e, 4)

	out := ctx.Submit(DefaultClass, func() (int64, error) { panic("kaboom") })

	var err error
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200 && !out.Available(); i++ {
			e.RunOnce()
			time.Sleep(time.Millisecond)
		}
		_, err = future.Get(out)
		close(done)
	}()
	<-done
	require.Error(t, err)
}
