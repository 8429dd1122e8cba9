// File: file/file.go
// Author: momentics <momentics@gmail.com>

package file

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/corereactor/aio"
	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/future"
)

// OpenFlags mirrors spec.md §6's open_file_dma flag set.
type OpenFlags int

const (
	FlagRO OpenFlags = 1 << iota
	FlagWO
	FlagRW
	FlagCreate
	FlagTruncate
	FlagExclusive
)

// File is a reference-counted, DMA-capable file handle. Close is
// explicit and awaitable: the underlying descriptor only actually
// closes once every Ref has had a matching Close, per spec.md §5's
// "file handles are reference-counted; close is explicit and
// awaitable."
type File struct {
	aio   *aio.Context
	osf   *os.File
	align DMAAlignment
	refs  atomic.Int64

	mu     sync.Mutex
	closed bool
}

// OpenFileDMA opens path under flags, querying its DMA alignment
// requirements, per spec.md §6. Filesystems that reject O_DIRECT (tmpfs
// among them) fail the open with EINVAL; OpenFileDMA retries without it
// and reports NoAlignment rather than surfacing the error, the same
// degrade-off-Linux posture file_stub.go takes unconditionally.
func OpenFileDMA(ctx *aio.Context, path string, flags OpenFlags) *future.Future[*File] {
	return future.Apply[*File](ctx.Engine(), func() (*File, error) {
		osFlags, mode := translateFlags(flags)
		f, err := openDirect(path, osFlags, mode)
		align := DefaultDMAAlignment
		if err != nil {
			if !isEINVAL(err) {
				return nil, err
			}
			f, err = os.OpenFile(path, osFlags, mode)
			if err != nil {
				return nil, err
			}
			align = NoAlignment
		} else {
			align = queryAlignment(f)
		}
		file := &File{aio: ctx, osf: f, align: align}
		file.refs.Store(1)
		return file, nil
	})
}

func translateFlags(flags OpenFlags) (int, os.FileMode) {
	osFlags := os.O_RDONLY
	switch {
	case flags&FlagRW != 0:
		osFlags = os.O_RDWR
	case flags&FlagWO != 0:
		osFlags = os.O_WRONLY
	}
	if flags&FlagCreate != 0 {
		osFlags |= os.O_CREATE
	}
	if flags&FlagTruncate != 0 {
		osFlags |= os.O_TRUNC
	}
	if flags&FlagExclusive != 0 {
		osFlags |= os.O_EXCL
	}
	return osFlags, 0o644
}

// Alignment returns the file's DMA alignment requirements.
func (f *File) Alignment() DMAAlignment { return f.align }

// Ref increments the reference count and returns f, for callers sharing
// a handle across multiple concurrent consumers (e.g. an input and an
// output stream over the same file).
func (f *File) Ref() *File {
	f.refs.Add(1)
	return f
}

// Close drops one reference; the descriptor is actually closed only
// once the count reaches zero.
func (f *File) Close() *future.Future[struct{}] {
	if f.refs.Add(-1) > 0 {
		return future.Ready(f.aio.Engine(), struct{}{})
	}
	return future.Apply(f.aio.Engine(), func() (struct{}, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return struct{}{}, nil
		}
		f.closed = true
		return struct{}{}, f.osf.Close()
	})
}

// Truncate resizes the file to size, per the output stream's tail-pad
// cleanup in spec.md §4.4.
func (f *File) Truncate(size int64) *future.Future[struct{}] {
	return future.Apply(f.aio.Engine(), func() (struct{}, error) {
		return struct{}{}, f.osf.Truncate(size)
	})
}

func (f *File) checkAligned(pos int64, buf []byte) error {
	if pos%int64(f.align.Length) != 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "dma position not aligned").
			WithContext("pos", pos).WithContext("align", f.align.Length)
	}
	if len(buf)%f.align.Length != 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "dma length not aligned").
			WithContext("len", len(buf)).WithContext("align", f.align.Length)
	}
	if f.align.Memory > 1 && len(buf) > 0 {
		addr := uintptr(unsafe.Pointer(&buf[0]))
		if addr%uintptr(f.align.Memory) != 0 {
			return api.NewError(api.ErrCodeInvalidArgument, "dma buffer not aligned").
				WithContext("align", f.align.Memory)
		}
	}
	return nil
}

// DmaRead issues an aligned read of buf's length at pos under class,
// per spec.md §4.4: pos, buf's address, and buf's length must all
// satisfy the file's DMAAlignment. Returns the byte count actually
// transferred; a short result (including zero) indicates EOF.
func (f *File) DmaRead(pos int64, buf api.Buffer, class aio.Class) *future.Future[int64] {
	data := buf.Bytes()
	if err := f.checkAligned(pos, data); err != nil {
		return future.Failed[int64](f.aio.Engine(), err)
	}
	return f.aio.Submit(class, func() (int64, error) {
		n, err := preadAt(f.osf, data, pos)
		if err != nil && isEOF(err) {
			return int64(n), nil
		}
		return int64(n), err
	})
}

// DmaWrite issues an aligned write of buf's contents at pos under
// class. Returns the byte count actually transferred; a short result
// indicates an I/O error the caller must escalate.
func (f *File) DmaWrite(pos int64, buf api.Buffer, class aio.Class) *future.Future[int64] {
	data := buf.Bytes()
	if err := f.checkAligned(pos, data); err != nil {
		return future.Failed[int64](f.aio.Engine(), err)
	}
	return f.aio.Submit(class, func() (int64, error) {
		n, err := pwriteAt(f.osf, data, pos)
		return int64(n), err
	})
}

// DmaReadBulk handles an arbitrary pos/length window per spec.md §4.4:
// it aligns pos down and length up to the file's DMAAlignment, issues a
// single aligned read covering the window, and trims the result's
// front and back to exactly what was requested. A short first read
// falls back to sequential single-block reads to distinguish EOF from
// a transient error, treating an EINVAL from a realigned tail read as
// EOF.
func (f *File) DmaReadBulk(pos int64, length int, class aio.Class) *future.Future[api.Buffer] {
	align := f.align.Length
	alignedPos := alignDown64(pos, align)
	frontTrim := int(pos - alignedPos)
	alignedEnd := alignUp64(pos+int64(length), align)
	bufLen := int(alignedEnd - alignedPos)

	raw := AllocateAligned(bufLen, f.align.Memory)
	sched := f.aio.Engine()

	first := f.aio.Submit(class, func() (int64, error) {
		n, err := preadAt(f.osf, raw, alignedPos)
		if err != nil && isEOF(err) {
			return int64(n), nil
		}
		return int64(n), err
	})

	return future.ThenCompose(first, func(n int64) *future.Future[api.Buffer] {
		got := int(n)
		if got >= bufLen || got == 0 {
			return finishBulk(sched, raw, got, frontTrim, length)
		}
		return f.bulkFallback(raw, got, alignedPos, bufLen, frontTrim, length, class, sched)
	})
}

func (f *File) bulkFallback(raw []byte, got int, alignedPos int64, bufLen, frontTrim, length int, class aio.Class, sched future.Scheduler) *future.Future[api.Buffer] {
	final := future.RepeatUntilValue(sched, func() *future.Future[future.Option[int]] {
		if got >= bufLen {
			return future.Ready(sched, future.Some(got))
		}
		offset := alignedPos + int64(got)
		remaining := raw[got:]
		return future.Then(f.aio.Submit(class, func() (int64, error) {
			n, err := preadAt(f.osf, remaining, offset)
			if err != nil && (isEOF(err) || isEINVAL(err)) {
				return int64(n), nil
			}
			return int64(n), err
		}), func(n int64) (future.Option[int], error) {
			if n == 0 {
				return future.Some(got), nil
			}
			got += int(n)
			return future.None[int](), nil
		})
	})
	return future.ThenCompose(final, func(total int) *future.Future[api.Buffer] {
		return finishBulk(sched, raw, total, frontTrim, length)
	})
}

func finishBulk(sched future.Scheduler, raw []byte, got, frontTrim, length int) *future.Future[api.Buffer] {
	start := frontTrim
	if start > got {
		start = got
	}
	end := frontTrim + length
	if end > got {
		end = got
	}
	return future.Ready[api.Buffer](sched, &rawBuffer{data: raw[start:end]})
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
