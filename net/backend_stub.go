//go:build !linux

// File: net/backend_stub.go
// Author: momentics <momentics@gmail.com>
//
// Off Linux there is no epoll-driven non-blocking socket layer in this
// module (reactor's own EventReactor is Linux/Windows-specific and the
// Windows IOCP path is not wired here), so connections are relayed onto
// the reactor via one worker goroutine per blocking operation, the same
// degrade posture file_stub.go takes for AIO.

package net

import (
	stdnet "net"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

type relayConn struct {
	engine *reactor.Engine
	conn   stdnet.Conn
}

func (c *relayConn) readAsync(buf []byte) *future.Future[int] {
	return future.Apply(c.engine, func() (int, error) { return c.conn.Read(buf) })
}

func (c *relayConn) writeAsync(buf []byte) *future.Future[int] {
	return future.Apply(c.engine, func() (int, error) { return c.conn.Write(buf) })
}

func (c *relayConn) setNoDelay(v bool) error {
	if tc, ok := c.conn.(*stdnet.TCPConn); ok {
		return tc.SetNoDelay(v)
	}
	return nil
}

func (c *relayConn) shutdownRead() error {
	if tc, ok := c.conn.(*stdnet.TCPConn); ok {
		return tc.CloseRead()
	}
	return nil
}

func (c *relayConn) shutdownWrite() error {
	if tc, ok := c.conn.(*stdnet.TCPConn); ok {
		return tc.CloseWrite()
	}
	return nil
}

// abortRead/abortWrite cannot interrupt an in-flight blocking syscall on
// this fallback path; closing the connection is the only cancellation
// available, matching aio's non-Linux posture.
func (c *relayConn) abortRead(error)  {}
func (c *relayConn) abortWrite(error) {}

func (c *relayConn) remoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *relayConn) close() *future.Future[struct{}] {
	return future.Apply(c.engine, func() (struct{}, error) {
		return struct{}{}, c.conn.Close()
	})
}

// pollerHandle is the platform-specific multiplexer handle threaded
// through the neutral Listen/Dial/ListenUDP constructors; this fallback
// has no multiplexer, so it carries no state.
type pollerHandle = *struct{}

func dialBackend(engine *reactor.Engine, _ pollerHandle, addr string) *future.Future[asyncConn] {
	return future.Apply[asyncConn](engine, func() (asyncConn, error) {
		conn, err := stdnet.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &relayConn{engine: engine, conn: conn}, nil
	})
}

type relayListener struct {
	engine *reactor.Engine
	ln     stdnet.Listener
}

func newListenerBackend(engine *reactor.Engine, _ pollerHandle, addr string) (asyncListener, error) {
	ln, err := stdnet.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &relayListener{engine: engine, ln: ln}, nil
}

func (l *relayListener) accept() *future.Future[asyncConn] {
	return future.Apply[asyncConn](l.engine, func() (asyncConn, error) {
		conn, err := l.ln.Accept()
		if err != nil {
			return nil, err
		}
		return &relayConn{engine: l.engine, conn: conn}, nil
	})
}

// abortAccept cannot interrupt a blocked Accept call on this fallback
// path; closing the listener is the only way to unblock it.
func (l *relayListener) abortAccept(error) {}

func (l *relayListener) addr() string { return l.ln.Addr().String() }

func (l *relayListener) close() *future.Future[struct{}] {
	return future.Apply(l.engine, func() (struct{}, error) {
		return struct{}{}, l.ln.Close()
	})
}

type relayPacketConn struct {
	engine *reactor.Engine
	pc     stdnet.PacketConn
}

func newPacketBackend(engine *reactor.Engine, _ pollerHandle, addr string) (asyncPacketConn, error) {
	pc, err := stdnet.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	return &relayPacketConn{engine: engine, pc: pc}, nil
}

func (c *relayPacketConn) recvFrom(buf []byte) *future.Future[Datagram] {
	return future.Apply(c.engine, func() (Datagram, error) {
		n, from, err := c.pc.ReadFrom(buf)
		if err != nil {
			return Datagram{}, err
		}
		return Datagram{Data: buf[:n], From: from.String()}, nil
	})
}

func (c *relayPacketConn) sendTo(buf []byte, addr string) *future.Future[int] {
	return future.Apply(c.engine, func() (int, error) {
		dst, err := stdnet.ResolveUDPAddr("udp", addr)
		if err != nil {
			return 0, err
		}
		return c.pc.WriteTo(buf, dst)
	})
}

func (c *relayPacketConn) addr() string { return c.pc.LocalAddr().String() }

func (c *relayPacketConn) close() *future.Future[struct{}] {
	return future.Apply(c.engine, func() (struct{}, error) {
		return struct{}{}, c.pc.Close()
	})
}

func pollerFor(e *reactor.Engine) (pollerHandle, error) { return nil, nil }
