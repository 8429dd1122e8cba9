// File: net/net_test.go
// Author: momentics <momentics@gmail.com>

package net

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
)

var errTestAbort = errors.New("aborted")

func pumpUntil[T any](t *testing.T, e *reactor.Engine, f *future.Future[T]) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !f.Available() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for future")
		}
		e.RunOnce()
		time.Sleep(time.Millisecond)
	}
}

func TestListenDialEcho(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())

	ln, err := Listen(e, "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	acceptF := ln.Accept()

	dialF := Dial(e, ln.Addr())
	pumpUntil(t, e, dialF)
	client, err := future.Get(dialF)
	require.NoError(t, err)

	pumpUntil(t, e, acceptF)
	server, err := future.Get(acceptF)
	require.NoError(t, err)

	writeF := client.Output().Put([]byte("hello"))
	pumpUntil(t, e, writeF)
	_, err = future.Get(writeF)
	require.NoError(t, err)

	readF := server.Input().Get()
	pumpUntil(t, e, readF)
	got, err := future.Get(readF)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	closeF := client.Close()
	pumpUntil(t, e, closeF)
	_, err = future.Get(closeF)
	require.NoError(t, err)
}

func TestListenAbortAcceptFailsPending(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())

	ln, err := Listen(e, "127.0.0.1:0")
	require.NoError(t, err)

	acceptF := ln.Accept()
	ln.AbortAccept(errTestAbort)

	pumpUntil(t, e, acceptF)
	_, err = future.Get(acceptF)
	require.Error(t, err)
}

func TestUDPSendRecv(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())

	server, err := ListenUDP(e, "127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	client, err := ListenUDP(e, "127.0.0.1:0")
	require.NoError(t, err)
	defer client.Close()

	recvF := server.ReadFrom(make([]byte, 64))

	sendF := client.SendTo([]byte("ping"), server.Addr())
	pumpUntil(t, e, sendF)
	n, err := future.Get(sendF)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	pumpUntil(t, e, recvF)
	dgram, err := future.Get(recvF)
	require.NoError(t, err)
	require.Equal(t, "ping", string(dgram.Data))
}
