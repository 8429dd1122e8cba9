// File: thread/doc.go
// Author: momentics <momentics@gmail.com>

// Package thread implements user-level threads on futures, per spec.md
// §4.6: a stackful coroutine that may call Get as a suspension point,
// pinned to the reactor that created it and cooperating with its task
// loop rather than running freely alongside it.
//
// There is no setcontext/ucontext stack switch here — each thread is a
// real goroutine, and forward progress is serialized against the
// driving reactor task by a pair of unbuffered handoff channels, so
// only one of {reactor task, thread goroutine} is ever doing work at a
// time. This is the "alternative language-level stackless coroutine
// pipeline" spec.md §9 allows in place of fixed per-thread stacks.
package thread
