// File: stream/buffer.go
// Author: momentics <momentics@gmail.com>

package stream

import "github.com/momentics/corereactor/api"

// rawBytesBuffer is a minimal api.Buffer over a plain byte slice, used
// for consume() windows assembled in memory.
type rawBytesBuffer struct {
	data []byte
}

func (b *rawBytesBuffer) Bytes() []byte { return b.data }

func (b *rawBytesBuffer) Slice(from, to int) api.Buffer {
	return &rawBytesBuffer{data: b.data[from:to]}
}

func (b *rawBytesBuffer) Release() {}

func (b *rawBytesBuffer) Copy() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *rawBytesBuffer) NUMANode() int { return -1 }

// emptyBuffer signals EOF from InputStream.Get.
type emptyBuffer struct{}

func (emptyBuffer) Bytes() []byte             { return nil }
func (emptyBuffer) Slice(int, int) api.Buffer { return emptyBuffer{} }
func (emptyBuffer) Release()                  {}
func (emptyBuffer) Copy() []byte              { return nil }
func (emptyBuffer) NUMANode() int             { return -1 }
