// File: future/future_test.go
// Author: momentics <momentics@gmail.com>

package future

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// queueScheduler is a deterministic, single-threaded Scheduler: tasks are
// appended to a FIFO and only run when Drain is called. This lets tests
// assert that attaching a continuation never runs it inline.
type queueScheduler struct {
	tasks []func()
}

func (q *queueScheduler) Schedule(task func()) {
	q.tasks = append(q.tasks, task)
}

// Drain runs every pending task, including ones newly scheduled while
// draining, until the queue is empty.
func (q *queueScheduler) Drain() {
	for len(q.tasks) > 0 {
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		t()
	}
}

func TestThenChainComposition(t *testing.T) {
	sched := &queueScheduler{}
	p, f := NewPromise[int](sched)

	g := Then(f, func(v int) (int, error) { return v + 1, nil })
	h := Then(g, func(v int) (string, error) { return fmt.Sprintf("v=%d", v), nil })

	p.Resolve(41)
	sched.Drain()

	v, err := Get(h)
	require.NoError(t, err)
	require.Equal(t, "v=42", v)
}

func TestThenChainMillionDeep(t *testing.T) {
	sched := &queueScheduler{}
	p, f := NewPromise[int](sched)

	const depth = 1_000_000
	cur := f
	for i := 0; i < depth; i++ {
		cur = Then(cur, func(v int) (int, error) { return v + 1, nil })
	}

	p.Resolve(0)
	sched.Drain()

	v, err := Get(cur)
	require.NoError(t, err)
	require.Equal(t, depth, v)
}

func TestAttachOnReadyFutureIsNotInline(t *testing.T) {
	sched := &queueScheduler{}
	p, f := NewPromise[int](sched)
	p.Resolve(7)

	ran := false
	out := Then(f, func(v int) (int, error) {
		ran = true
		return v, nil
	})
	require.False(t, ran, "continuation on an already-ready future must not run inline")

	sched.Drain()
	require.True(t, ran)

	v, err := Get(out)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestFinallyRunsExactlyOnceOnSuccessAndFailure(t *testing.T) {
	sched := &queueScheduler{}

	p1, f1 := NewPromise[int](sched)
	count1 := 0
	out1 := Finally(f1, func() { count1++ })
	p1.Resolve(1)
	sched.Drain()
	_, _ = Get(out1)
	require.Equal(t, 1, count1)

	p2, f2 := NewPromise[int](sched)
	count2 := 0
	out2 := Finally(f2, func() { count2++ })
	p2.Fail(fmt.Errorf("boom"))
	sched.Drain()
	_, err := Get(out2)
	require.Error(t, err)
	require.Equal(t, 1, count2)
}

func TestParallelForEachResolvesAllDespiteEarlyFailure(t *testing.T) {
	sched := &queueScheduler{}
	const n = 11000
	ran := make([]bool, n)

	items := make([]int, n)
	for i := range items {
		items[i] = i
	}

	out := ParallelForEach(sched, items, func(i int) *Future[struct{}] {
		p, f := NewPromise[struct{}](sched)
		ran[i] = true
		if i%1777 == 1337 {
			p.Fail(fmt.Errorf("item %d failed", i))
		} else {
			p.Resolve(struct{}{})
		}
		return f
	})

	sched.Drain()

	for i, r := range ran {
		require.True(t, r, "item %d must have run despite earlier failures", i)
	}

	_, err := Get(out)
	require.Error(t, err)
}

func TestWhenAllPreservesIndependentOutcomes(t *testing.T) {
	sched := &queueScheduler{}

	p1, f1 := NewPromise[int](sched)
	p2, f2 := NewPromise[int](sched)
	p3, f3 := NewPromise[int](sched)

	out := WhenAll(sched, f1, f2, f3)

	p1.Resolve(10)
	p2.Fail(fmt.Errorf("mid failure"))
	p3.Resolve(30)
	sched.Drain()

	results, err := Get(out)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, 10, results[0].Value)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.Equal(t, 30, results[2].Value)
	require.NoError(t, results[2].Err)
}

func TestSharedFutureFanOut(t *testing.T) {
	sched := &queueScheduler{}
	sp, sf := NewSharedPromise[int](sched)

	consumers := make([]*Future[int], 5)
	for i := range consumers {
		consumers[i] = sf.GetFuture()
	}

	sp.Resolve(99)
	sched.Drain()

	for _, c := range consumers {
		v, err := Get(c)
		require.NoError(t, err)
		require.Equal(t, 99, v)
	}

	// A consumer requested after resolution must also observe the value.
	late := sf.GetFuture()
	v, err := Get(late)
	require.NoError(t, err)
	require.Equal(t, 99, v)
}

func TestMapReduceSquareSum(t *testing.T) {
	sched := &queueScheduler{}
	const n = 100

	items := make([]int, n)
	for i := range items {
		items[i] = i
	}

	out := MapReduce(sched, items, func(i int) *Future[int] {
		return Ready(sched, i*i)
	}, 0, func(acc, v int) int { return acc + v })

	sched.Drain()

	v, err := Get(out)
	require.NoError(t, err)

	want := 0
	for i := 0; i < n; i++ {
		want += i * i
	}
	require.Equal(t, want, v)
}

func TestRepeatUntilValue(t *testing.T) {
	sched := &queueScheduler{}
	count := 0

	out := RepeatUntilValue(sched, func() *Future[Option[int]] {
		count++
		if count >= 5 {
			return Ready(sched, Some(count))
		}
		return Ready(sched, None[int]())
	})
	sched.Drain()

	v, err := Get(out)
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

func TestRepeatPropagatesFailure(t *testing.T) {
	sched := &queueScheduler{}
	step := 0

	out := Repeat(sched, func() *Future[bool] {
		step++
		if step == 2 {
			return Failed[bool](sched, fmt.Errorf("failed at step 2"))
		}
		return Ready(sched, false)
	})
	sched.Drain()

	_, err := Get(out)
	require.Error(t, err)
	require.Equal(t, 2, step)
}

func TestDoubleAttachPanics(t *testing.T) {
	sched := &queueScheduler{}
	p, f := NewPromise[int](sched)
	p.Resolve(1)

	_ = Then(f, func(v int) (int, error) { return v, nil })

	require.Panics(t, func() {
		Then(f, func(v int) (int, error) { return v, nil })
	})
}

func TestApplyCapturesPanicAsFailure(t *testing.T) {
	sched := &queueScheduler{}
	out := Apply[int](sched, func() (int, error) {
		panic("kaboom")
	})
	_, err := Get(out)
	require.Error(t, err)
}
