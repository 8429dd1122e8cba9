// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package future implements the future/promise concurrency primitive: a
// single-consumer, at-most-once-resolved deferred value plus the
// combinators (then, then_wrapped, finally, when_all, parallel_for_each,
// repeat, map_reduce, shared_future) built on top of it.
//
// A *Future[T] is produced by exactly one *Promise[T] and consumed by at
// most one continuation or one Get call. Every continuation attached to a
// future — whether the future is already resolved or not — runs as a task
// posted to the Scheduler captured at the future's creation, never inline.
// This is the core discipline the rest of the package exists to enforce;
// see attach in promise.go.
package future
