// File: stream/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package stream layers sequential read-ahead and write-behind access
// over a DMA-capable file.File, plus a consume loop for buffer-at-a-time
// protocol parsing, per spec.md §4.4.
package stream
