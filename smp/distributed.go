// File: smp/distributed.go
// Author: momentics <momentics@gmail.com>

package smp

import "github.com/momentics/corereactor/future"

// Distributed constructs one instance of T per CPU in sys, built by
// factory on each shard's own reactor, and dispatches member calls to
// the right instance via SubmitTo.
type Distributed[T any] struct {
	sys *System
	// local holds the instance for each CPU. Since an instance is only
	// ever touched from its owning shard's reactor goroutine (every
	// access goes through SubmitTo, which runs fn on that shard), this
	// needs no additional synchronization even though the slice is
	// shared — same discipline as spec.md's single-threaded-per-reactor
	// ownership rule.
	local []*T
}

// NewDistributed builds one T per CPU in sys by invoking factory() on
// each shard in turn, and returns once every instance is constructed.
func NewDistributed[T any](owner *Shard, sys *System, factory func() (*T, error)) *future.Future[*Distributed[T]] {
	d := &Distributed[T]{sys: sys, local: make([]*T, sys.NumCPUs())}
	cpus := make([]int, sys.NumCPUs())
	for i := range cpus {
		cpus[i] = i
	}
	built := future.ParallelForEach(owner.Engine, cpus, func(cpu int) *future.Future[struct{}] {
		return future.Then(SubmitTo(owner, cpu, func() (*T, error) {
			return factory()
		}), func(inst *T) (struct{}, error) {
			d.local[cpu] = inst
			return struct{}{}, nil
		})
	})
	return future.Then(built, func(struct{}) (*Distributed[T], error) { return d, nil })
}

// InvokeOn dispatches fn to the instance owned by cpu, via SubmitTo.
func InvokeOn[T, R any](owner *Shard, d *Distributed[T], cpu int, fn func(*T) (R, error)) *future.Future[R] {
	return SubmitTo(owner, cpu, func() (R, error) {
		return fn(d.local[cpu])
	})
}

// InvokeOnAllInstances dispatches fn to every instance and resolves
// once all have run.
func InvokeOnAllInstances[T any](owner *Shard, d *Distributed[T], fn func(*T) error) *future.Future[struct{}] {
	cpus := make([]int, d.sys.NumCPUs())
	for i := range cpus {
		cpus[i] = i
	}
	return future.ParallelForEach(owner.Engine, cpus, func(cpu int) *future.Future[struct{}] {
		return future.Then(SubmitTo(owner, cpu, func() (struct{}, error) {
			return struct{}{}, fn(d.local[cpu])
		}), func(v struct{}) (struct{}, error) { return v, nil })
	})
}
