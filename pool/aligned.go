// File: pool/aligned.go
// Author: momentics <momentics@gmail.com>
//
// Cross-platform, page-aligned BufferPool backing the DMA-aligned scratch
// buffers file and stream allocate on every read/write. Uses the same
// over-allocate-and-offset trick as file.AllocateAligned, but recycles
// the oversized backing array instead of discarding it, so a steady
// read-ahead or write-behind loop stops paying the alignment cost on
// every call.

package pool

import (
	"sync"
	"unsafe"

	"github.com/momentics/corereactor/api"
)

// pageAlign covers any DMA alignment requirement this module's file
// package reports (DefaultDMAAlignment.Memory divides it cleanly).
const pageAlign = 4096

type alignedBuffer struct {
	raw    []byte
	data   []byte
	pool   *alignedBufferPool
	numaID int
}

func (b *alignedBuffer) Bytes() []byte { return b.data }

func (b *alignedBuffer) Slice(from, to int) api.Buffer {
	return &alignedBuffer{raw: b.raw, data: b.data[from:to], pool: b.pool, numaID: b.numaID}
}

func (b *alignedBuffer) Release() {
	if b.pool != nil {
		b.pool.recycle(b)
	}
}

func (b *alignedBuffer) Copy() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *alignedBuffer) NUMANode() int { return b.numaID }

func allocateAlignedRaw(size int) (raw, data []byte) {
	if size <= 0 {
		return nil, nil
	}
	raw = make([]byte, size+pageAlign)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := int((-addr) & uintptr(pageAlign-1))
	return raw, raw[offset : offset+size]
}

// alignedBufferPool recycles page-aligned backing arrays per NUMA node.
type alignedBufferPool struct {
	numaID int

	mu         sync.Mutex
	free       []*alignedBuffer
	totalAlloc int64
	totalFree  int64
}

func newAlignedBufferPool(numaNode int) api.BufferPool {
	return &alignedBufferPool{numaID: numaNode}
}

const alignedPoolCapacity = 1024

func (p *alignedBufferPool) Get(size, numaPreferred int) api.Buffer {
	p.mu.Lock()
	for i := len(p.free) - 1; i >= 0; i-- {
		cand := p.free[i]
		if len(cand.raw) >= size+pageAlign {
			p.free = append(p.free[:i], p.free[i+1:]...)
			p.totalAlloc++
			p.mu.Unlock()
			addr := uintptr(unsafe.Pointer(&cand.raw[0]))
			offset := int((-addr) & uintptr(pageAlign-1))
			cand.data = cand.raw[offset : offset+size]
			return cand
		}
	}
	p.totalAlloc++
	p.mu.Unlock()

	raw, data := allocateAlignedRaw(size)
	return &alignedBuffer{raw: raw, data: data, pool: p, numaID: numaPreferred}
}

func (p *alignedBufferPool) recycle(b *alignedBuffer) {
	p.mu.Lock()
	p.totalFree++
	if len(p.free) < alignedPoolCapacity {
		p.free = append(p.free, b)
	}
	p.mu.Unlock()
}

func (p *alignedBufferPool) Put(b api.Buffer) {
	if ab, ok := b.(*alignedBuffer); ok {
		p.recycle(ab)
	}
}

func (p *alignedBufferPool) Stats() api.BufferPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return api.BufferPoolStats{
		TotalAlloc: p.totalAlloc,
		TotalFree:  p.totalFree,
		InUse:      p.totalAlloc - p.totalFree,
		NUMAStats:  map[int]int64{p.numaID: p.totalAlloc},
	}
}

var _ api.BufferPool = (*alignedBufferPool)(nil)
