// File: rpc/transport.go
// Author: momentics <momentics@gmail.com>
//
// frameLoop drives the buffer-and-decode cycle shared by Client and
// Server: pull the next chunk from the connection's InputStream,
// append it to what's left over from the previous chunk, decode as
// many complete frames as the buffer holds, and recurse — the same
// read-ahead-then-drain shape stream.InputStream uses, but chained
// through future.ThenWrapped instead of a FIFO, since the reactor
// schedules each continuation rather than running it inline (spec.md
// §8 invariant 2: chains do not grow the stack unboundedly).

package rpc

import (
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/net"
)

// frameLoop reads from in indefinitely, calling decode on the
// accumulated buffer after every chunk. decode returns (consumed, err):
// consumed == 0 and err == nil means "need more data"; consumed > 0
// advances the buffer by that much and may be called again against the
// remainder before the next read; err stops the loop and resolves the
// returned future with err. The loop also stops, resolving
// successfully, when in reports EOF (a zero-length read).
func frameLoop(sched future.Scheduler, in *net.InputStream, decode func([]byte) (int, error)) *future.Future[struct{}] {
	return frameLoopFrom(sched, in, nil, decode)
}

// frameLoopFrom is frameLoop seeded with bytes already read past a
// preceding frame (the negotiation handshake) that belong to the first
// request/response frame.
func frameLoopFrom(sched future.Scheduler, in *net.InputStream, seed []byte, decode func([]byte) (int, error)) *future.Future[struct{}] {
	p, f := future.NewPromise[struct{}](sched)
	buf := append([]byte(nil), seed...)

	// drain decodes every complete frame currently in buf, returning
	// false (having failed or resolved p) if the loop should stop.
	drain := func() bool {
		for {
			n, derr := decode(buf)
			if derr != nil {
				p.Fail(derr)
				return false
			}
			if n == 0 {
				return true
			}
			buf = buf[n:]
		}
	}

	var step func()
	step = func() {
		future.ThenWrapped(in.Get(), func(rf *future.Future[[]byte]) (struct{}, error) {
			chunk, err, _ := future.Peek(rf)
			if err != nil {
				p.Fail(err)
				return struct{}{}, nil
			}
			if len(chunk) == 0 {
				p.Resolve(struct{}{})
				return struct{}{}, nil
			}
			buf = append(buf, chunk...)
			if drain() {
				step()
			}
			return struct{}{}, nil
		})
	}
	if drain() {
		step()
	}
	return f
}
