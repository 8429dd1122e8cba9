// File: rpc/client.go
// Author: momentics <momentics@gmail.com>

package rpc

import (
	"sync"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/net"
	"github.com/momentics/corereactor/reactor"
)

// Client issues requests over a connected socket and dispatches
// responses back to the matching Call, per spec.md §6: "responses may
// arrive out of request order; not every request must be answered."
type Client struct {
	conn  *net.Connection
	sched future.Scheduler

	mu      sync.Mutex
	nextID  int64
	pending map[int64]*future.Promise[[]byte]
	closed  bool
}

// Dial connects to addr and negotiates per spec.md §6 before resolving
// with a ready Client. own is this side's negotiation frame.
func Dial(engine *reactor.Engine, addr string, own Negotiation) *future.Future[*Client] {
	return future.ThenCompose(net.Dial(engine, addr), func(conn *net.Connection) *future.Future[*Client] {
		return negotiate(engine, conn, own)
	})
}

func negotiate(engine *reactor.Engine, conn *net.Connection, own Negotiation) *future.Future[*Client] {
	sent := conn.Output().Put(EncodeNegotiation(own))
	return future.ThenCompose(sent, func(struct{}) *future.Future[*Client] {
		p, f := future.NewPromise[*Client](engine)
		var buf []byte
		var readPeer func()
		readPeer = func() {
			future.ThenWrapped(conn.Input().Get(), func(rf *future.Future[[]byte]) (struct{}, error) {
				chunk, err, _ := future.Peek(rf)
				if err != nil {
					p.Fail(err)
					return struct{}{}, nil
				}
				if len(chunk) == 0 {
					p.Fail(ErrConnectionClosed)
					return struct{}{}, nil
				}
				buf = append(buf, chunk...)
				peer, n, derr := DecodeNegotiation(buf)
				if derr != nil {
					p.Fail(derr)
					return struct{}{}, nil
				}
				if n == 0 {
					readPeer()
					return struct{}{}, nil
				}
				if peer.RequiredFeatures&^own.OptionalFeatures&^own.RequiredFeatures != 0 {
					p.Fail(ErrFeatureMismatch)
					return struct{}{}, nil
				}
				c := newClient(engine, conn, buf[n:])
				p.Resolve(c)
				return struct{}{}, nil
			})
		}
		readPeer()
		return f
	})
}

// newClient wraps an already-negotiated connection. leftover is any
// bytes already read past the negotiation frame that belong to the
// first request/response frame.
func newClient(sched future.Scheduler, conn *net.Connection, leftover []byte) *Client {
	c := &Client{conn: conn, sched: sched, pending: make(map[int64]*future.Promise[[]byte])}
	loop := frameLoopFrom(sched, conn.Input(), leftover, c.onChunk)
	future.Finally(loop, func() { c.abandonAll(ErrConnectionClosed) })
	return c
}

func (c *Client) onChunk(buf []byte) (int, error) {
	resp, n, err := DecodeResponse(buf)
	if err != nil || n == 0 {
		return n, err
	}
	id := resp.MsgID
	if id < 0 {
		id = -id
	}
	c.mu.Lock()
	p, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if !ok {
		return n, nil
	}
	if resp.MsgID < 0 {
		exc, derr := DecodeException(resp.Payload)
		if derr != nil {
			p.Fail(derr)
		} else {
			p.Fail(&RemoteError{Exception: *exc})
		}
		return n, nil
	}
	p.Resolve(resp.Payload)
	return n, nil
}

func (c *Client) abandonAll(err error) {
	c.mu.Lock()
	c.closed = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, p := range pending {
		p.Fail(err)
	}
}

// Call sends a verb invocation and resolves with the response payload,
// or a *RemoteError if the peer answered with an exception.
func (c *Client) Call(verbType uint64, payload []byte) *future.Future[[]byte] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return future.Failed[[]byte](c.sched, ErrConnectionClosed)
	}
	if c.nextID == (1<<63 - 1) {
		c.mu.Unlock()
		return future.Failed[[]byte](c.sched, ErrIDSpaceExhausted)
	}
	c.nextID++
	id := c.nextID
	p, f := future.NewPromise[[]byte](c.sched)
	c.pending[id] = p
	c.mu.Unlock()

	frame := EncodeRequest(Request{VerbType: verbType, MsgID: id, Payload: payload})
	return future.ThenCompose(c.conn.Output().Put(frame), func(struct{}) *future.Future[[]byte] {
		return f
	})
}

// Close closes the underlying connection and fails every pending Call.
func (c *Client) Close() *future.Future[struct{}] {
	c.abandonAll(ErrConnectionClosed)
	return c.conn.Close()
}
