// File: file/buffer.go
// Author: momentics <momentics@gmail.com>

package file

import "github.com/momentics/corereactor/api"

// rawBuffer is a minimal api.Buffer over a plain byte slice, used for
// DMA-aligned scratch allocations that do not come from a pool.
type rawBuffer struct {
	data []byte
}

func (b *rawBuffer) Bytes() []byte { return b.data }

func (b *rawBuffer) Slice(from, to int) api.Buffer {
	return &rawBuffer{data: b.data[from:to]}
}

func (b *rawBuffer) Release() {}

func (b *rawBuffer) Copy() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *rawBuffer) NUMANode() int { return -1 }

// NewBuffer wraps an existing byte slice (e.g. from AllocateAligned) as
// an api.Buffer, for callers driving DmaRead/DmaWrite directly without
// a BufferPool.
func NewBuffer(data []byte) api.Buffer {
	return &rawBuffer{data: data}
}
