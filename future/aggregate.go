// File: future/aggregate.go
// Author: momentics <momentics@gmail.com>

package future

import (
	"sync/atomic"

	"github.com/momentics/corereactor/api"
)

// WhenAll resolves once every future in futures has resolved, carrying
// each one's individual outcome (value or error) in input order. It
// never fails itself: a failing child is reported through its slot in
// the result slice, not by failing the aggregate.
func WhenAll[T any](sched Scheduler, futures ...*Future[T]) *Future[[]api.Result[T]] {
	n := len(futures)
	p, out := NewPromise[[]api.Result[T]](sched)
	results := make([]api.Result[T], n)
	if n == 0 {
		p.Resolve(results)
		return out
	}
	var remaining atomic.Int64
	remaining.Store(int64(n))
	for i, fut := range futures {
		idx := i
		ThenWrapped(fut, func(f *Future[T]) (struct{}, error) {
			v, err, _ := Peek(f)
			results[idx] = api.Result[T]{Value: v, Err: err}
			if remaining.Add(-1) == 0 {
				p.Resolve(results)
			}
			return struct{}{}, nil
		})
	}
	return out
}

// ParallelForEach runs body concurrently over every item, waiting for all
// of them to finish regardless of individual failures. If any body
// future failed, the returned future fails with one of the encountered
// exceptions (the lowest-indexed one); otherwise it resolves.
func ParallelForEach[T any](sched Scheduler, items []T, body func(T) *Future[struct{}]) *Future[struct{}] {
	futures := make([]*Future[struct{}], len(items))
	for i, it := range items {
		futures[i] = body(it)
	}
	all := WhenAll(sched, futures...)
	return Then(all, func(results []api.Result[struct{}]) (struct{}, error) {
		for _, r := range results {
			if r.Err != nil {
				return struct{}{}, r.Err
			}
		}
		return struct{}{}, nil
	})
}

// MapReduce maps each item to a future via mapper, waits for every
// mapped future, then folds the results with reduce in input order
// starting from init. It fails with the lowest-indexed mapper error, if
// any, without running reduce over later elements.
func MapReduce[T, M, R any](sched Scheduler, items []T, mapper func(T) *Future[M], init R, reduce func(R, M) R) *Future[R] {
	mapped := make([]*Future[M], len(items))
	for i, it := range items {
		mapped[i] = mapper(it)
	}
	all := WhenAll(sched, mapped...)
	return Then(all, func(results []api.Result[M]) (R, error) {
		acc := init
		for _, r := range results {
			if r.Err != nil {
				return acc, r.Err
			}
			acc = reduce(acc, r.Value)
		}
		return acc, nil
	})
}
