// File: smp/collective.go
// Author: momentics <momentics@gmail.com>

package smp

import (
	"github.com/momentics/corereactor/future"
)

// SubmitTo packages f as a work item and runs it on dstCPU's reactor,
// returning a future (bound to src's reactor) that resolves with f's
// result once the remote call completes. A local submission (dstCPU ==
// src.CPU) short-circuits through Futurize::apply instead of crossing a
// ring, since there is nothing to marshal.
func SubmitTo[R any](src *Shard, dstCPU int, f func() (R, error)) *future.Future[R] {
	if dstCPU == src.CPU {
		return future.Apply[R](src.Engine, f)
	}

	p, out := future.NewPromise[R](src.Engine)

	// The completion travels back boxed in `any`; this closure, carried
	// on the work item itself, is what unboxes it to R once it returns.
	resolve := func(value any, marshalErr *crossCoreError) {
		if marshalErr != nil {
			p.Fail(marshalErr.rehydrate())
			return
		}
		var zero R
		if value == nil {
			p.Resolve(zero)
			return
		}
		p.Resolve(value.(R))
	}

	src.enqueueOut(dstCPU, &message{
		kind: kindWork,
		work: &workItem{
			run:     func() (any, error) { return f() },
			resolve: resolve,
		},
	})
	return out
}

// InvokeOnAll runs f on every shard in sys, including the caller's own,
// and resolves once all of them have. Implemented directly as
// parallel_for_each(all_cpus, submit_to) per spec.md §4.3.
func InvokeOnAll(src *Shard, sys *System, f func() error) *future.Future[struct{}] {
	cpus := make([]int, sys.NumCPUs())
	for i := range cpus {
		cpus[i] = i
	}
	return future.ParallelForEach(src.Engine, cpus, func(cpu int) *future.Future[struct{}] {
		return future.Then(SubmitTo(src, cpu, func() (struct{}, error) {
			return struct{}{}, f()
		}), func(v struct{}) (struct{}, error) { return v, nil })
	})
}

// MapReduce0 submits mapper to every shard and folds the results
// locally on src's reactor with reduce, starting from init, in CPU
// order.
func MapReduce0[M, R any](src *Shard, sys *System, mapper func() (M, error), init R, reduce func(R, M) R) *future.Future[R] {
	cpus := make([]int, sys.NumCPUs())
	for i := range cpus {
		cpus[i] = i
	}
	return future.MapReduce(src.Engine, cpus, func(cpu int) *future.Future[M] {
		return SubmitTo(src, cpu, mapper)
	}, init, reduce)
}
