// File: stream/input.go
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

// DefaultReadAhead is used when a caller passes readAhead <= 0.
const DefaultReadAhead = 4

// InputStream maintains a FIFO of pending read futures ahead of what
// the consumer has pulled with Get, per spec.md §4.4: after each
// completion it speculatively issues more reads to keep the FIFO at
// readAhead depth.
type InputStream struct {
	sched      future.Scheduler
	f          *file.File
	class      aio.Class
	bufferSize int
	readAhead  int
	pool       api.BufferPool

	mu      sync.Mutex
	pos     int64
	pending []*future.Future[api.Buffer]
	eof     bool
}

// NewInputStream constructs a read-ahead stream over f starting at
// offset 0, immediately issuing up to readAhead speculative reads.
func NewInputStream(sched future.Scheduler, f *file.File, bufferSize, readAhead int, class aio.Class) *InputStream {
	if readAhead <= 0 {
		readAhead = DefaultReadAhead
	}
	s := &InputStream{
		sched: sched, f: f, class: class, bufferSize: bufferSize, readAhead: readAhead,
		pool: pool.DefaultPool(-1),
	}
	s.mu.Lock()
	s.fillAheadLocked()
	s.mu.Unlock()
	return s
}

func (s *InputStream) issueReadLocked() *future.Future[api.Buffer] {
	buf := s.pool.Get(s.bufferSize, -1)
	pos := s.pos
	s.pos += int64(s.bufferSize)
	read := s.f.DmaRead(pos, buf, s.class)
	return future.Then(read, func(n int64) (api.Buffer, error) {
		if n == 0 {
			buf.Release()
			s.mu.Lock()
			s.eof = true
			s.mu.Unlock()
			return emptyBuffer{}, nil
		}
		return buf.Slice(0, int(n)), nil
	})
}

func (s *InputStream) fillAheadLocked() {
	for !s.eof && len(s.pending) < s.readAhead {
		s.pending = append(s.pending, s.issueReadLocked())
	}
}

// Get returns the next buffer in stream order; an empty buffer signals
// EOF.
func (s *InputStream) Get() *future.Future[api.Buffer] {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.fillAheadLocked()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return future.Ready[api.Buffer](s.sched, emptyBuffer{})
		}
	}
	f := s.pending[0]
	s.pending = s.pending[1:]
	s.fillAheadLocked()
	s.mu.Unlock()
	return f
}

// Close waits for all outstanding reads to drain, then closes the
// underlying file.
func (s *InputStream) Close() *future.Future[struct{}] {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.eof = true
	s.mu.Unlock()

	drained := future.WhenAll(s.sched, pending...)
	return future.ThenCompose(drained, func(results []api.Result[api.Buffer]) *future.Future[struct{}] {
		for _, r := range results {
			if r.Err == nil && r.Value != nil {
				r.Value.Release()
			}
		}
		return s.f.Close()
	})
}
