// File: net/udp.go
// Author: momentics <momentics@gmail.com>
//
// UDP mirror of Listener/Connection, per spec.md §6: "the UDP surface
// mirrors this with datagram read/send" in place of a byte stream.

package net

import (
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

// PacketConn is a bound UDP socket.
type PacketConn struct {
	engine  *reactor.Engine
	backend asyncPacketConn
}

// ListenUDP binds addr for datagram I/O.
func ListenUDP(engine *reactor.Engine, addr string) (*PacketConn, error) {
	poller, err := pollerFor(engine)
	if err != nil {
		return nil, err
	}
	backend, err := newPacketBackend(engine, poller, addr)
	if err != nil {
		return nil, err
	}
	return &PacketConn{engine: engine, backend: backend}, nil
}

// ReadFrom resolves with the next datagram received.
func (c *PacketConn) ReadFrom(buf []byte) *future.Future[Datagram] {
	return c.backend.recvFrom(buf)
}

// SendTo sends buf to addr, resolving with the number of bytes sent.
func (c *PacketConn) SendTo(buf []byte, addr string) *future.Future[int] {
	return c.backend.sendTo(buf, addr)
}

// Addr is the address the socket is bound to.
func (c *PacketConn) Addr() string { return c.backend.addr() }

// Close releases the socket.
func (c *PacketConn) Close() *future.Future[struct{}] { return c.backend.close() }
