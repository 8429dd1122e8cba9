// File: stream/stream_test.go
// Author: momentics <momentics@gmail.com>

package stream

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/aio"
	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/file"
	"github.com/momentics/corereactor/future"
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

func newTestContext(t *testing.T) (*reactor.Engine, *aio.Context, string) {
	t.Helper()
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := aio.NewContext(e, 8)
	path := filepath.Join(t.TempDir(), "stream.bin")
	return e, ctx, path
}

func openForWrite(t *testing.T, e *reactor.Engine, ctx *aio.Context, path string) *file.File {
	t.Helper()
	openFut := file.OpenFileDMA(ctx, path, file.FlagRW|file.FlagCreate|file.FlagTruncate)
	pumpUntil(t, e, openFut)
	f, err := future.Get(openFut)
	require.NoError(t, err)
	return f
}

func openForRead(t *testing.T, e *reactor.Engine, ctx *aio.Context, path string) *file.File {
	t.Helper()
	openFut := file.OpenFileDMA(ctx, path, file.FlagRO)
	pumpUntil(t, e, openFut)
	f, err := future.Get(openFut)
	require.NoError(t, err)
	return f
}

func writePayload(t *testing.T, e *reactor.Engine, f *file.File, align int, payload []byte) {
	t.Helper()
	out := NewOutputStream(e, f, align, 2, aio.DefaultClass)
	putFut := out.Put(payload)
	pumpUntil(t, e, putFut)
	_, err := future.Get(putFut)
	require.NoError(t, err)
	closeFut := out.Close()
	pumpUntil(t, e, closeFut)
	_, err = future.Get(closeFut)
	require.NoError(t, err)
}

func TestOutputStreamWriteBehindAndCloseTruncates(t *testing.T) {
	e, ctx, path := newTestContext(t)
	wf := openForWrite(t, e, ctx, path)
	align := wf.Alignment().Length
	if align <= 1 {
		align = 4096
	}

	payload := make([]byte, align+17)
	for i := range payload {
		payload[i] = byte(i % 200)
	}
	writePayload(t, e, wf, align, payload)

	sizeFut := file.Size(e, path)
	pumpUntil(t, e, sizeFut)
	size, err := future.Get(sizeFut)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), size)
}

func TestInputStreamReadsBackWhatOutputWrote(t *testing.T) {
	e, ctx, path := newTestContext(t)
	wf := openForWrite(t, e, ctx, path)
	align := wf.Alignment().Length
	if align <= 1 {
		align = 4096
	}

	payload := make([]byte, align*3)
	for i := range payload {
		payload[i] = byte(i % 97)
	}
	writePayload(t, e, wf, align, payload)

	rf := openForRead(t, e, ctx, path)
	in := NewInputStream(e, rf, align, 2, aio.DefaultClass)

	var got []byte
	for {
		getFut := in.Get()
		pumpUntil(t, e, getFut)
		buf, err := future.Get(getFut)
		require.NoError(t, err)
		if len(buf.Bytes()) == 0 {
			break
		}
		got = append(got, buf.Bytes()...)
	}

	require.Equal(t, payload, got)

	closeFut := in.Close()
	pumpUntil(t, e, closeFut)
	_, err := future.Get(closeFut)
	require.NoError(t, err)
}

func TestConsumeRunsUntilEndOfStream(t *testing.T) {
	e, ctx, path := newTestContext(t)
	wf := openForWrite(t, e, ctx, path)
	align := wf.Alignment().Length
	if align <= 1 {
		align = 4096
	}

	data := make([]byte, align*2)
	for i := range data {
		data[i] = byte(1)
	}
	writePayload(t, e, wf, align, data)

	rf := openForRead(t, e, ctx, path)
	in := NewInputStream(e, rf, align, 2, aio.DefaultClass)

	var seenBytes int
	consumeFut := Consume(e, in, func(buf api.Buffer) *future.Future[future.Option[api.Buffer]] {
		seenBytes += len(buf.Bytes())
		// Engaged-but-empty remainder: keep consuming until the stream's
		// own EOF (an empty pulled buffer) ends the loop naturally.
		return future.Ready(e, future.Some[api.Buffer](emptyBuffer{}))
	})
	pumpUntil(t, e, consumeFut)
	_, err := future.Get(consumeFut)
	require.NoError(t, err)
	require.Equal(t, len(data), seenBytes)
}
