// File: stream/output.go
// Author: momentics <momentics@gmail.com>

package stream

import (
	"sync"

	"github.com/momentics/corereactor/aio"
	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/file"
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/pool"
)

// OutputStream accumulates Put data and dispatches buffer_size chunks
// through a write-behind slot semaphore of depth writeBehind, per
// spec.md §4.4. Each dispatched write is merged into a running
// background-writes accumulator via when_all; once any write has
// failed, subsequent writes short-circuit and propagate the error.
type OutputStream struct {
	sched       future.Scheduler
	f           *file.File
	class       aio.Class
	bufferSize  int
	writeBehind int
	pool        api.BufferPool

	mu       sync.Mutex
	buf      []byte
	pos      int64
	inFlight int
	waiters  []*future.Promise[struct{}]
	bgDone   *future.Future[struct{}]
	failed   error
}

// NewOutputStream constructs a write-behind stream over f starting at
// logical offset 0.
func NewOutputStream(sched future.Scheduler, f *file.File, bufferSize, writeBehind int, class aio.Class) *OutputStream {
	if writeBehind <= 0 {
		writeBehind = 1
	}
	return &OutputStream{
		sched:       sched,
		f:           f,
		class:       class,
		bufferSize:  bufferSize,
		writeBehind: writeBehind,
		pool:        pool.DefaultPool(-1),
		bgDone:      future.Ready(sched, struct{}{}),
	}
}

// Put appends data to the accumulation buffer, dispatching any
// buffer_size-aligned chunks it completes.
func (o *OutputStream) Put(data []byte) *future.Future[struct{}] {
	o.mu.Lock()
	o.buf = append(o.buf, data...)
	var last *future.Future[struct{}]
	for len(o.buf) >= o.bufferSize {
		chunk := o.pool.Get(o.bufferSize, -1)
		copy(chunk.Bytes(), o.buf[:o.bufferSize])
		o.buf = o.buf[o.bufferSize:]
		o.mu.Unlock()
		last = o.dispatch(chunk)
		o.mu.Lock()
	}
	o.mu.Unlock()
	if last == nil {
		return future.Ready(o.sched, struct{}{})
	}
	return last
}

// Flush dispatches whatever is currently accumulated, even if it falls
// short of buffer_size.
func (o *OutputStream) Flush() *future.Future[struct{}] {
	o.mu.Lock()
	pending := o.buf
	o.buf = nil
	o.mu.Unlock()
	if len(pending) == 0 {
		return future.Ready(o.sched, struct{}{})
	}
	chunk := o.pool.Get(len(pending), -1)
	copy(chunk.Bytes(), pending)
	return o.dispatch(chunk)
}

func (o *OutputStream) acquireSlot() *future.Future[struct{}] {
	o.mu.Lock()
	if o.inFlight < o.writeBehind {
		o.inFlight++
		o.mu.Unlock()
		return future.Ready(o.sched, struct{}{})
	}
	p, f := future.NewPromise[struct{}](o.sched)
	o.waiters = append(o.waiters, p)
	o.mu.Unlock()
	return f
}

func (o *OutputStream) releaseSlot() {
	o.mu.Lock()
	if len(o.waiters) > 0 {
		next := o.waiters[0]
		o.waiters = o.waiters[1:]
		o.mu.Unlock()
		next.Resolve(struct{}{})
		return
	}
	o.inFlight--
	o.mu.Unlock()
}

// dispatch acquires a write-behind slot, issues the aligned write at
// the stream's current logical position, and merges its outcome into
// bgDone via a fanned-out SharedFuture so the caller and the background
// accumulator can each consume their own copy of the completion.
func (o *OutputStream) dispatch(buf api.Buffer) *future.Future[struct{}] {
	data := buf.Bytes()
	pos := o.advancePos(len(data))
	return future.ThenCompose(o.acquireSlot(), func(struct{}) *future.Future[struct{}] {
		o.mu.Lock()
		failed := o.failed
		o.mu.Unlock()
		if failed != nil {
			o.releaseSlot()
			buf.Release()
			return future.Failed[struct{}](o.sched, failed)
		}

		write := future.Then(o.f.DmaWrite(pos, buf, o.class), func(n int64) (struct{}, error) {
			if int(n) != len(data) {
				return struct{}{}, api.NewError(api.ErrCodeInternal, "short dma write").
					WithContext("wanted", len(data)).WithContext("got", n)
			}
			return struct{}{}, nil
		})

		sp, sf := future.NewSharedPromise[struct{}](o.sched)
		future.ThenWrapped(write, func(wf *future.Future[struct{}]) (struct{}, error) {
			_, werr, _ := future.Peek(wf)
			o.releaseSlot()
			buf.Release()
			if werr != nil {
				o.mu.Lock()
				if o.failed == nil {
					o.failed = werr
				}
				o.mu.Unlock()
				sp.Fail(werr)
			} else {
				sp.Resolve(struct{}{})
			}
			return struct{}{}, nil
		})

		o.mu.Lock()
		prevBg := o.bgDone
		o.bgDone = future.Then(future.WhenAll(o.sched, prevBg, sf.GetFuture()), func(results []api.Result[struct{}]) (struct{}, error) {
			for _, r := range results {
				if r.Err != nil {
					return struct{}{}, r.Err
				}
			}
			return struct{}{}, nil
		})
		o.mu.Unlock()

		return sf.GetFuture()
	})
}

func (o *OutputStream) advancePos(n int) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	pos := o.pos
	o.pos += int64(n)
	return pos
}

// Close flushes any accumulated tail (padding it into an aligned
// scratch buffer if it falls short of the file's DMA length alignment,
// writing that, then truncating back to the logical length), waits for
// every background write to complete, and closes the file — per
// spec.md §4.4.
func (o *OutputStream) Close() *future.Future[struct{}] {
	align := o.f.Alignment().Length

	o.mu.Lock()
	tail := o.buf
	o.buf = nil
	logicalLen := o.pos + int64(len(tail))
	o.mu.Unlock()

	var flushFut *future.Future[struct{}]
	switch {
	case len(tail) == 0:
		flushFut = future.Ready(o.sched, struct{}{})
	case align <= 1 || len(tail)%align == 0:
		chunk := o.pool.Get(len(tail), -1)
		copy(chunk.Bytes(), tail)
		flushFut = o.dispatch(chunk)
	default:
		padded := o.pool.Get(alignUp(len(tail), align), -1)
		copy(padded.Bytes(), tail)
		flushFut = o.dispatch(padded)
	}

	return future.ThenCompose(flushFut, func(struct{}) *future.Future[struct{}] {
		o.mu.Lock()
		bg := o.bgDone
		o.mu.Unlock()
		return future.ThenCompose(bg, func(struct{}) *future.Future[struct{}] {
			return future.ThenCompose(o.f.Truncate(logicalLen), func(struct{}) *future.Future[struct{}] {
				return o.f.Close()
			})
		})
	})
}

func alignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
