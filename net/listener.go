// File: net/listener.go
// Author: momentics <momentics@gmail.com>

package net

import (
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

// Listener accepts inbound connections, per spec.md §6's listen/accept
// surface.
type Listener struct {
	engine  *reactor.Engine
	backend asyncListener
}

// Listen binds addr and returns a Listener pinned to engine.
func Listen(engine *reactor.Engine, addr string) (*Listener, error) {
	poller, err := pollerFor(engine)
	if err != nil {
		return nil, err
	}
	backend, err := newListenerBackend(engine, poller, addr)
	if err != nil {
		return nil, err
	}
	return &Listener{engine: engine, backend: backend}, nil
}

// Accept resolves with the next inbound Connection.
func (l *Listener) Accept() *future.Future[*Connection] {
	return future.Then(l.backend.accept(), func(c asyncConn) (*Connection, error) {
		return &Connection{engine: l.engine, backend: c}, nil
	})
}

// Addr is the address the listener is bound to.
func (l *Listener) Addr() string { return l.backend.addr() }

// AbortAccept fails every Accept call currently pending on l with err.
func (l *Listener) AbortAccept(err error) { l.backend.abortAccept(err) }

// Close stops accepting and releases the listening socket.
func (l *Listener) Close() *future.Future[struct{}] { return l.backend.close() }
