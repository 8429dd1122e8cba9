// File: rpc/rpc_test.go
// Author: momentics <momentics@gmail.com>

package rpc

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/net"
	"github.com/momentics/corereactor/reactor"
)

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

const verbEcho uint64 = 1
const verbFail uint64 = 2

func TestEncodeDecodeRoundTrip(t *testing.T) {
	neg := Negotiation{RequiredFeatures: 1, OptionalFeatures: 2, Data: []byte("hi")}
	got, n, err := DecodeNegotiation(EncodeNegotiation(neg))
	require.NoError(t, err)
	require.Equal(t, len(EncodeNegotiation(neg)), n)
	require.Equal(t, neg, *got)

	req := Request{VerbType: 7, MsgID: 42, Payload: []byte("payload")}
	gotReq, n, err := DecodeRequest(EncodeRequest(req))
	require.NoError(t, err)
	require.Equal(t, len(EncodeRequest(req)), n)
	require.Equal(t, req, *gotReq)

	resp := Response{MsgID: -42, Payload: EncodeException(NewUserException("boom"))}
	gotResp, n, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)
	require.Equal(t, len(EncodeResponse(resp)), n)
	require.Equal(t, resp, *gotResp)

	exc, err := DecodeException(resp.Payload)
	require.NoError(t, err)
	require.Equal(t, ExceptionUser, exc.Type)
	require.Equal(t, "boom", string(exc.Payload))
}

func TestDecodeIncompleteFrameReturnsZero(t *testing.T) {
	full := EncodeRequest(Request{VerbType: 1, MsgID: 1, Payload: []byte("abcdef")})
	_, n, err := DecodeRequest(full[:len(full)-2])
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestDecodeNegotiationBadMagic(t *testing.T) {
	bad := EncodeNegotiation(Negotiation{})
	bad[0] = 'X'
	_, _, err := DecodeNegotiation(bad)
	require.ErrorIs(t, err, ErrBadMagic)
}

func setupLoopback(t *testing.T, e *reactor.Engine) (*net.Connection, *net.Connection) {
	t.Helper()
	ln, err := net.Listen(e, "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	acceptF := ln.Accept()
	dialF := net.Dial(e, ln.Addr())
	pumpUntil(t, e, dialF)
	client, err := future.Get(dialF)
	require.NoError(t, err)
	pumpUntil(t, e, acceptF)
	server, err := future.Get(acceptF)
	require.NoError(t, err)
	return client, server
}

func TestClientServerEchoAndUnknownVerb(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	clientConn, serverConn := setupLoopback(t, e)

	srv := NewServer(e, serverConn, Negotiation{})
	srv.Handle(verbEcho, func(payload []byte) ([]byte, error) {
		return payload, nil
	})
	srv.Handle(verbFail, func(payload []byte) ([]byte, error) {
		return nil, errBoom
	})
	serveF := srv.Serve()

	clientF := negotiate(e, clientConn, Negotiation{})
	pumpUntil(t, e, clientF)
	client, err := future.Get(clientF)
	require.NoError(t, err)

	echoF := client.Call(verbEcho, []byte("hello"))
	pumpUntil(t, e, echoF)
	got, err := future.Get(echoF)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	failF := client.Call(verbFail, nil)
	pumpUntil(t, e, failF)
	_, err = future.Get(failF)
	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, ExceptionUser, remote.Exception.Type)

	unknownF := client.Call(999, nil)
	pumpUntil(t, e, unknownF)
	_, err = future.Get(unknownF)
	require.Error(t, err)
	require.ErrorAs(t, err, &remote)
	require.Equal(t, ExceptionUnknownVerb, remote.Exception.Type)

	_ = serveF
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
