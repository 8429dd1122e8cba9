// File: net/stream.go
// Author: momentics <momentics@gmail.com>
//
// Socket-backed analogs of stream.InputStream/OutputStream, simpler
// than the file versions since sockets carry no DMA alignment and
// spec.md's write-behind-depth semaphore is specific to file output —
// a single in-flight write suffices here because the socket itself
// already serializes writes at the fd.

package net

import (
	"sync"

	"github.com/momentics/corereactor/future"
)

// DefaultStreamBufferSize is used when a caller passes bufferSize <= 0.
const DefaultStreamBufferSize = 8192

// InputStream reads from a Connection in DefaultStreamBufferSize (or
// caller-chosen) chunks. Get returns a zero-length slice at EOF.
type InputStream struct {
	sched future.Scheduler
	conn  asyncConn
	size  int
}

func newInputStream(sched future.Scheduler, conn asyncConn) *InputStream {
	return &InputStream{sched: sched, conn: conn, size: DefaultStreamBufferSize}
}

// Get reads the next chunk of data, or a zero-length slice at EOF.
func (s *InputStream) Get() *future.Future[[]byte] {
	buf := make([]byte, s.size)
	return future.Then(s.conn.readAsync(buf), func(n int) ([]byte, error) {
		return buf[:n], nil
	})
}

// Close shuts down the read direction; the connection itself is closed
// through Connection.Close.
func (s *InputStream) Close() error { return s.conn.shutdownRead() }

// OutputStream writes to a Connection, allowing one in-flight write at
// a time so callers may pipeline Put calls without racing the fd.
type OutputStream struct {
	sched future.Scheduler
	conn  asyncConn

	mu   sync.Mutex
	last *future.SharedFuture[struct{}]
}

func newOutputStream(sched future.Scheduler, conn asyncConn) *OutputStream {
	sp, last := future.NewSharedPromise[struct{}](sched)
	sp.Resolve(struct{}{})
	return &OutputStream{sched: sched, conn: conn, last: last}
}

// Put queues data for writing after any write already in flight,
// handling short writes by looping until the whole buffer is sent.
func (s *OutputStream) Put(data []byte) *future.Future[struct{}] {
	s.mu.Lock()
	prev := s.last
	next := future.ThenCompose(prev.GetFuture(), func(struct{}) *future.Future[struct{}] {
		return s.writeAll(data)
	})
	sp, shared := future.NewSharedPromise[struct{}](s.sched)
	future.ThenWrapped(next, func(nf *future.Future[struct{}]) (struct{}, error) {
		if _, err, _ := future.Peek(nf); err != nil {
			sp.Fail(err)
		} else {
			sp.Resolve(struct{}{})
		}
		return struct{}{}, nil
	})
	s.last = shared
	s.mu.Unlock()
	return shared.GetFuture()
}

func (s *OutputStream) writeAll(data []byte) *future.Future[struct{}] {
	if len(data) == 0 {
		return future.Ready(s.sched, struct{}{})
	}
	return future.ThenCompose(s.conn.writeAsync(data), func(n int) *future.Future[struct{}] {
		return s.writeAll(data[n:])
	})
}

// Flush waits for every write queued via Put to complete.
func (s *OutputStream) Flush() *future.Future[struct{}] {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	return last.GetFuture()
}

// Close flushes pending writes, then shuts down the write direction.
func (s *OutputStream) Close() *future.Future[struct{}] {
	return future.ThenCompose(s.Flush(), func(struct{}) *future.Future[struct{}] {
		return future.Apply(s.sched, func() (struct{}, error) {
			return struct{}{}, s.conn.shutdownWrite()
		})
	})
}
