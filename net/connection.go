// File: net/connection.go
// Author: momentics <momentics@gmail.com>

package net

import (
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

// Connection is a connected TCP socket, per spec.md §6's
// connected_socket: an input stream, an output stream, and shutdown
// control over each direction independently.
type Connection struct {
	engine  *reactor.Engine
	backend asyncConn

	in  *InputStream
	out *OutputStream
}

// Dial connects to addr and resolves with the established Connection.
func Dial(engine *reactor.Engine, addr string) *future.Future[*Connection] {
	poller, err := pollerFor(engine)
	if err != nil {
		return future.Failed[*Connection](engine, err)
	}
	return future.Then(dialBackend(engine, poller, addr), func(c asyncConn) (*Connection, error) {
		return &Connection{engine: engine, backend: c}, nil
	})
}

// SetNoDelay toggles TCP_NODELAY on the underlying socket.
func (c *Connection) SetNoDelay(v bool) error { return c.backend.setNoDelay(v) }

// RemoteAddr is the peer's address as seen at accept/dial time.
func (c *Connection) RemoteAddr() string { return c.backend.remoteAddr() }

// Input returns the connection's InputStream, constructing it on first
// use.
func (c *Connection) Input() *InputStream {
	if c.in == nil {
		c.in = newInputStream(c.engine, c.backend)
	}
	return c.in
}

// Output returns the connection's OutputStream, constructing it on
// first use.
func (c *Connection) Output() *OutputStream {
	if c.out == nil {
		c.out = newOutputStream(c.engine, c.backend)
	}
	return c.out
}

// ShutdownInput half-closes the read direction.
func (c *Connection) ShutdownInput() error { return c.backend.shutdownRead() }

// ShutdownOutput half-closes the write direction.
func (c *Connection) ShutdownOutput() error { return c.backend.shutdownWrite() }

// AbortReader fails any read currently pending on the connection with
// err, per spec.md §6's abort_reader.
func (c *Connection) AbortReader(err error) { c.backend.abortRead(err) }

// AbortWriter fails any write currently pending on the connection with
// err.
func (c *Connection) AbortWriter(err error) { c.backend.abortWrite(err) }

// Close releases the connection.
func (c *Connection) Close() *future.Future[struct{}] { return c.backend.close() }
