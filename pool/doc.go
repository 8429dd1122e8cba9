// Package pool
// Author: momentics <momentics@gmail.com>
//
// NUMA-segmented, page-aligned api.BufferPool implementation backing the
// DMA-aligned scratch buffers file and stream allocate for every read
// and write. See bufferpool.go for the per-NUMA-node manager and
// aligned.go for the recycling allocator itself.
package pool
