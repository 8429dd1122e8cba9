// File: rpc/server.go
// Author: momentics <momentics@gmail.com>

package rpc

import (
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/net"
)

// Handler answers a single verb invocation. Returning a non-nil error
// sends back a user exception carrying err.Error(); a successful
// return sends back payload as the response.
type Handler func(payload []byte) ([]byte, error)

// Server dispatches incoming requests on an already-accepted
// connection to registered verb Handlers.
type Server struct {
	sched    future.Scheduler
	conn     *net.Connection
	handlers map[uint64]Handler
	own      Negotiation
}

// NewServer constructs a Server over conn that will answer with own's
// negotiation frame when Serve is called.
func NewServer(sched future.Scheduler, conn *net.Connection, own Negotiation) *Server {
	return &Server{sched: sched, conn: conn, handlers: make(map[uint64]Handler), own: own}
}

// Handle registers fn to answer verb.
func (s *Server) Handle(verb uint64, fn Handler) { s.handlers[verb] = fn }

// Serve negotiates, then dispatches requests until the connection
// closes or the peer sends a malformed frame.
func (s *Server) Serve() *future.Future[struct{}] {
	sent := s.conn.Output().Put(EncodeNegotiation(s.own))
	return future.ThenCompose(sent, func(struct{}) *future.Future[struct{}] {
		p, f := future.NewPromise[struct{}](s.sched)
		var buf []byte
		var readPeer func()
		readPeer = func() {
			future.ThenWrapped(s.conn.Input().Get(), func(rf *future.Future[[]byte]) (struct{}, error) {
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
				if peer.RequiredFeatures&^s.own.OptionalFeatures&^s.own.RequiredFeatures != 0 {
					p.Fail(ErrFeatureMismatch)
					return struct{}{}, nil
				}
				future.Finally(frameLoopFrom(s.sched, s.conn.Input(), buf[n:], s.onRequest), func() {
					p.Resolve(struct{}{})
				})
				return struct{}{}, nil
			})
		}
		readPeer()
		return f
	})
}

func (s *Server) onRequest(buf []byte) (int, error) {
	req, n, err := DecodeRequest(buf)
	if err != nil || n == 0 {
		return n, err
	}
	handler, ok := s.handlers[req.VerbType]
	if !ok {
		s.reply(Response{MsgID: -req.MsgID, Payload: EncodeException(NewUnknownVerbException(req.VerbType))})
		return n, nil
	}
	payload, herr := handler(req.Payload)
	if herr != nil {
		s.reply(Response{MsgID: -req.MsgID, Payload: EncodeException(NewUserException(herr.Error()))})
		return n, nil
	}
	s.reply(Response{MsgID: req.MsgID, Payload: payload})
	return n, nil
}

func (s *Server) reply(r Response) {
	s.conn.Output().Put(EncodeResponse(r))
}
