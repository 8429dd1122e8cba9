// File: aio/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package aio is the reactor's asynchronous I/O submission queue: a
// bounded slot semaphore shared by every priority class, draining
// pending requests in weighted-fair order as slots free up. Requests
// run on worker goroutines (there being no portable way to drive a real
// io_uring from pure Go without cgo); completions are always handed
// back to the owning reactor's Scheduler, never resolved from the
// worker goroutine directly.
package aio
