// File: file/file_test.go
// Author: momentics <momentics@gmail.com>

package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/aio"
	"github.com/momentics/corereactor/api"
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

func newTestFile(t *testing.T) (*reactor.Engine, *aio.Context, string) {
	t.Helper()
	e := reactor.NewEngine(0, zerolog.Nop())
	ctx := aio.NewContext(e, 8)
	dir := t.TempDir()
	return e, ctx, filepath.Join(dir, "data.bin")
}

func TestDmaReadWriteAlignedRoundTrip(t *testing.T) {
	e, ctx, path := newTestFile(t)

	openFut := OpenFileDMA(ctx, path, FlagRW|FlagCreate|FlagTruncate)
	pumpUntil(t, e, openFut)
	f, err := future.Get(openFut)
	require.NoError(t, err)

	align := f.Alignment()
	data := AllocateAligned(align.Length, align.Memory)
	for i := range data {
		data[i] = byte(i)
	}

	writeFut := f.DmaWrite(0, &rawBuffer{data: data}, aio.DefaultClass)
	pumpUntil(t, e, writeFut)
	n, err := future.Get(writeFut)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)

	readBuf := AllocateAligned(align.Length, align.Memory)
	readFut := f.DmaRead(0, &rawBuffer{data: readBuf}, aio.DefaultClass)
	pumpUntil(t, e, readFut)
	n, err = future.Get(readFut)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)
	require.Equal(t, data, readBuf)

	closeFut := f.Close()
	pumpUntil(t, e, closeFut)
	_, err = future.Get(closeFut)
	require.NoError(t, err)
}

func TestDmaReadRejectsMisalignedPosition(t *testing.T) {
	e, ctx, path := newTestFile(t)
	openFut := OpenFileDMA(ctx, path, FlagRW|FlagCreate|FlagTruncate)
	pumpUntil(t, e, openFut)
	f, err := future.Get(openFut)
	require.NoError(t, err)

	if f.Alignment().Length <= 1 {
		t.Skip("platform reports no DMA alignment requirement")
	}

	buf := AllocateAligned(f.Alignment().Length, f.Alignment().Memory)
	readFut := f.DmaRead(1, &rawBuffer{data: buf}, aio.DefaultClass)
	require.True(t, readFut.Available())
	_, err = future.Get(readFut)
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, api.ErrCodeInvalidArgument, apiErr.Code)
}

func TestDmaReadBulkUnalignedWindow(t *testing.T) {
	e, ctx, path := newTestFile(t)
	openFut := OpenFileDMA(ctx, path, FlagRW|FlagCreate|FlagTruncate)
	pumpUntil(t, e, openFut)
	f, err := future.Get(openFut)
	require.NoError(t, err)

	align := f.Alignment()
	full := AllocateAligned(align.Length*2, align.Memory)
	for i := range full {
		full[i] = byte(i % 251)
	}
	writeFut := f.DmaWrite(0, &rawBuffer{data: full}, aio.DefaultClass)
	pumpUntil(t, e, writeFut)
	_, err = future.Get(writeFut)
	require.NoError(t, err)

	start := align.Length/2 + 3
	length := align.Length
	bulkFut := f.DmaReadBulk(int64(start), length, aio.DefaultClass)
	pumpUntil(t, e, bulkFut)
	buf, err := future.Get(bulkFut)
	require.NoError(t, err)
	require.Equal(t, full[start:start+length], buf.Bytes())
}

func TestFileMetadataOperations(t *testing.T) {
	e := reactor.NewEngine(0, zerolog.Nop())
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")

	mkFut := MakeDirectory(e, sub)
	pumpUntil(t, e, mkFut)
	_, err := future.Get(mkFut)
	require.NoError(t, err)

	path := filepath.Join(sub, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	existsFut := Exists(e, path)
	pumpUntil(t, e, existsFut)
	exists, err := future.Get(existsFut)
	require.NoError(t, err)
	require.True(t, exists)

	sizeFut := Size(e, path)
	pumpUntil(t, e, sizeFut)
	size, err := future.Get(sizeFut)
	require.NoError(t, err)
	require.Equal(t, int64(2), size)

	statFut := Stat(e, path)
	pumpUntil(t, e, statFut)
	ft, err := future.Get(statFut)
	require.NoError(t, err)
	require.Equal(t, FileTypeRegular, ft)

	renamed := filepath.Join(sub, "g.txt")
	renameFut := RenameFile(e, path, renamed)
	pumpUntil(t, e, renameFut)
	_, err = future.Get(renameFut)
	require.NoError(t, err)

	rmFut := RemoveFile(e, renamed)
	pumpUntil(t, e, rmFut)
	_, err = future.Get(rmFut)
	require.NoError(t, err)
}

func TestAllocateAlignedRespectsBoundary(t *testing.T) {
	buf := AllocateAligned(4096, 512)
	require.Len(t, buf, 4096)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	require.Zero(t, addr%512)
}
