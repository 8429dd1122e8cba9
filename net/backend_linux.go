//go:build linux

// File: net/backend_linux.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking TCP/UDP sockets multiplexed through the reactor's
// EpollPoller, generalized from internal/transport/transport_linux.go's
// non-blocking-socket-plus-TCP_NODELAY construction and
// reactor/epoll_poller.go's per-fd callback registration.

package net

import (
	"fmt"
	stdnet "net"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

func resolveInet4(addr string) (unix.SockaddrInet4, error) {
	a, err := stdnet.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return unix.SockaddrInet4{}, err
	}
	var sa unix.SockaddrInet4
	ip := a.IP.To4()
	if ip == nil {
		ip = []byte{0, 0, 0, 0}
	}
	copy(sa.Addr[:], ip)
	sa.Port = a.Port
	return sa, nil
}

func sockaddrString(sa unix.Sockaddr) string {
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		return fmt.Sprintf("%d.%d.%d.%d:%d", in4.Addr[0], in4.Addr[1], in4.Addr[2], in4.Addr[3], in4.Port)
	}
	return "unknown"
}

func isEAGAIN(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// --- connected socket ---

type ioReq struct {
	buf []byte
	p   *future.Promise[int]
}

type epollConn struct {
	fd     int
	remote string
	engine *reactor.Engine
	poller *reactor.EpollPoller

	mu       sync.Mutex
	readReq  *ioReq
	writeReq *ioReq
	closed   bool
}

func newEpollConn(engine *reactor.Engine, poller *reactor.EpollPoller, fd int, remote string) (*epollConn, error) {
	c := &epollConn{fd: fd, remote: remote, engine: engine, poller: poller}
	if err := poller.Register(uintptr(fd), c.onReady); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return c, nil
}

func (c *epollConn) onReady(uintptr) {
	c.mu.Lock()
	rr, wr := c.readReq, c.writeReq
	c.mu.Unlock()
	if rr != nil {
		c.tryRead(rr)
	}
	if wr != nil {
		c.tryWrite(wr)
	}
}

func (c *epollConn) tryRead(req *ioReq) {
	n, err := unix.Read(c.fd, req.buf)
	if err != nil {
		if isEAGAIN(err) {
			return
		}
		c.mu.Lock()
		c.readReq = nil
		c.mu.Unlock()
		req.p.Fail(err)
		return
	}
	c.mu.Lock()
	c.readReq = nil
	c.mu.Unlock()
	req.p.Resolve(n)
}

func (c *epollConn) tryWrite(req *ioReq) {
	n, err := unix.Write(c.fd, req.buf)
	if err != nil {
		if isEAGAIN(err) {
			return
		}
		c.mu.Lock()
		c.writeReq = nil
		c.mu.Unlock()
		req.p.Fail(err)
		return
	}
	c.mu.Lock()
	c.writeReq = nil
	c.mu.Unlock()
	req.p.Resolve(n)
}

func (c *epollConn) readAsync(buf []byte) *future.Future[int] {
	p, f := future.NewPromise[int](c.engine)
	req := &ioReq{buf: buf, p: p}
	c.mu.Lock()
	c.readReq = req
	c.mu.Unlock()
	c.tryRead(req)
	return f
}

func (c *epollConn) writeAsync(buf []byte) *future.Future[int] {
	p, f := future.NewPromise[int](c.engine)
	req := &ioReq{buf: buf, p: p}
	c.mu.Lock()
	c.writeReq = req
	c.mu.Unlock()
	c.tryWrite(req)
	return f
}

func (c *epollConn) setNoDelay(v bool) error {
	n := 0
	if v {
		n = 1
	}
	return unix.SetsockoptInt(c.fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, n)
}

func (c *epollConn) shutdownRead() error  { return unix.Shutdown(c.fd, unix.SHUT_RD) }
func (c *epollConn) shutdownWrite() error { return unix.Shutdown(c.fd, unix.SHUT_WR) }

func (c *epollConn) abortRead(err error) {
	c.mu.Lock()
	req := c.readReq
	c.readReq = nil
	c.mu.Unlock()
	if req != nil {
		req.p.Fail(err)
	}
}

func (c *epollConn) abortWrite(err error) {
	c.mu.Lock()
	req := c.writeReq
	c.writeReq = nil
	c.mu.Unlock()
	if req != nil {
		req.p.Fail(err)
	}
}

func (c *epollConn) remoteAddr() string { return c.remote }

func (c *epollConn) close() *future.Future[struct{}] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return future.Ready(c.engine, struct{}{})
	}
	c.closed = true
	rr, wr := c.readReq, c.writeReq
	c.readReq, c.writeReq = nil, nil
	c.mu.Unlock()

	cancelled := api.NewError(api.ErrCodeInternal, "connection closed")
	if rr != nil {
		rr.p.Fail(cancelled)
	}
	if wr != nil {
		wr.p.Fail(cancelled)
	}
	_ = c.poller.Unregister(uintptr(c.fd))
	return future.Apply(c.engine, func() (struct{}, error) {
		return struct{}{}, unix.Close(c.fd)
	})
}

// pollerHandle is the platform-specific multiplexer handle threaded
// through the neutral Listen/Dial/ListenUDP constructors.
type pollerHandle = *reactor.EpollPoller

func dialBackend(engine *reactor.Engine, poller pollerHandle, addr string) *future.Future[asyncConn] {
	return future.Apply[asyncConn](engine, func() (asyncConn, error) {
		sa, err := resolveInet4(addr)
		if err != nil {
			return nil, err
		}
		fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
		if err != nil {
			return nil, err
		}
		if err := unix.Connect(fd, &sa); err != nil && err != unix.EINPROGRESS {
			_ = unix.Close(fd)
			return nil, err
		}
		return newEpollConn(engine, poller, fd, addr)
	})
}

// --- listening socket ---

type acceptReq struct {
	p *future.Promise[asyncConn]
}

type epollListener struct {
	fd     int
	local  string
	engine *reactor.Engine
	poller *reactor.EpollPoller

	mu      sync.Mutex
	pending []*acceptReq
	closed  bool
}

func newListenerBackend(engine *reactor.Engine, poller pollerHandle, addr string) (asyncListener, error) {
	sa, err := resolveInet4(addr)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err := unix.Bind(fd, &sa); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, 128); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	local := addr
	if bound, err := unix.Getsockname(fd); err == nil {
		local = sockaddrString(bound)
	}
	l := &epollListener{fd: fd, local: local, engine: engine, poller: poller}
	if err := poller.Register(uintptr(fd), l.onReady); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return l, nil
}

func (l *epollListener) addr() string { return l.local }

func (l *epollListener) onReady(uintptr) {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		req := l.pending[0]
		l.mu.Unlock()

		nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK)
		if err != nil {
			if isEAGAIN(err) {
				return
			}
			l.mu.Lock()
			l.pending = l.pending[1:]
			l.mu.Unlock()
			req.p.Fail(err)
			continue
		}
		l.mu.Lock()
		l.pending = l.pending[1:]
		l.mu.Unlock()
		conn, cerr := newEpollConn(l.engine, l.poller, nfd, sockaddrString(sa))
		if cerr != nil {
			req.p.Fail(cerr)
			continue
		}
		req.p.Resolve(conn)
	}
}

func (l *epollListener) accept() *future.Future[asyncConn] {
	p, f := future.NewPromise[asyncConn](l.engine)
	l.mu.Lock()
	l.pending = append(l.pending, &acceptReq{p: p})
	l.mu.Unlock()
	l.onReady(0)
	return f
}

func (l *epollListener) abortAccept(err error) {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()
	for _, req := range pending {
		req.p.Fail(err)
	}
}

func (l *epollListener) close() *future.Future[struct{}] {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return future.Ready(l.engine, struct{}{})
	}
	l.closed = true
	l.mu.Unlock()
	l.abortAccept(api.NewError(api.ErrCodeInternal, "listener closed"))
	_ = l.poller.Unregister(uintptr(l.fd))
	return future.Apply(l.engine, func() (struct{}, error) {
		return struct{}{}, unix.Close(l.fd)
	})
}

// --- UDP ---

type recvReq struct {
	buf []byte
	p   *future.Promise[Datagram]
}

type epollPacketConn struct {
	fd     int
	local  string
	engine *reactor.Engine
	poller *reactor.EpollPoller

	mu      sync.Mutex
	pending []*recvReq
	closed  bool
}

func newPacketBackend(engine *reactor.Engine, poller pollerHandle, addr string) (asyncPacketConn, error) {
	sa, err := resolveInet4(addr)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.Bind(fd, &sa); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	local := addr
	if bound, err := unix.Getsockname(fd); err == nil {
		local = sockaddrString(bound)
	}
	c := &epollPacketConn{fd: fd, local: local, engine: engine, poller: poller}
	if err := poller.Register(uintptr(fd), c.onReady); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return c, nil
}

func (c *epollPacketConn) addr() string { return c.local }

func (c *epollPacketConn) onReady(uintptr) {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		req := c.pending[0]
		c.mu.Unlock()

		n, sa, err := unix.Recvfrom(c.fd, req.buf, 0)
		if err != nil {
			if isEAGAIN(err) {
				return
			}
			c.mu.Lock()
			c.pending = c.pending[1:]
			c.mu.Unlock()
			req.p.Fail(err)
			continue
		}
		c.mu.Lock()
		c.pending = c.pending[1:]
		c.mu.Unlock()
		req.p.Resolve(Datagram{Data: req.buf[:n], From: sockaddrString(sa)})
	}
}

func (c *epollPacketConn) recvFrom(buf []byte) *future.Future[Datagram] {
	p, f := future.NewPromise[Datagram](c.engine)
	c.mu.Lock()
	c.pending = append(c.pending, &recvReq{buf: buf, p: p})
	c.mu.Unlock()
	c.onReady(0)
	return f
}

func (c *epollPacketConn) sendTo(buf []byte, addr string) *future.Future[int] {
	return future.Apply(c.engine, func() (int, error) {
		sa, err := resolveInet4(addr)
		if err != nil {
			return 0, err
		}
		if err := unix.Sendto(c.fd, buf, 0, &sa); err != nil {
			return 0, err
		}
		return len(buf), nil
	})
}

func (c *epollPacketConn) close() *future.Future[struct{}] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return future.Ready(c.engine, struct{}{})
	}
	c.closed = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	cancelled := api.NewError(api.ErrCodeInternal, "packet conn closed")
	for _, req := range pending {
		req.p.Fail(cancelled)
	}
	_ = c.poller.Unregister(uintptr(c.fd))
	return future.Apply(c.engine, func() (struct{}, error) {
		return struct{}{}, unix.Close(c.fd)
	})
}
