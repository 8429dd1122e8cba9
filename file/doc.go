// File: file/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package file is the DMA-capable file layer: aligned reads and writes
// issued through an aio.Context, plus the filesystem metadata
// operations (open/stat/rename/…) from spec.md §6's File API, each
// returning a future rather than blocking the calling reactor.
package file
