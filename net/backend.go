// File: net/backend.go
// Author: momentics <momentics@gmail.com>

package net

import "github.com/momentics/corereactor/future"

// asyncConn is the platform-specific half of Connection: one in-flight
// read and one in-flight write at a time, each a future.
type asyncConn interface {
	readAsync(buf []byte) *future.Future[int]
	writeAsync(buf []byte) *future.Future[int]
	setNoDelay(v bool) error
	shutdownRead() error
	shutdownWrite() error
	abortRead(err error)
	abortWrite(err error)
	remoteAddr() string
	close() *future.Future[struct{}]
}

// asyncListener is the platform-specific half of Listener.
type asyncListener interface {
	accept() *future.Future[asyncConn]
	abortAccept(err error)
	addr() string
	close() *future.Future[struct{}]
}

// asyncPacketConn is the platform-specific half of PacketConn.
type asyncPacketConn interface {
	recvFrom(buf []byte) *future.Future[Datagram]
	sendTo(buf []byte, addr string) *future.Future[int]
	addr() string
	close() *future.Future[struct{}]
}

// Datagram is one UDP packet and the address it arrived from.
type Datagram struct {
	Data []byte
	From string
}
