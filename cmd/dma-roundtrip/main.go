// File: cmd/dma-roundtrip/main.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §8's aligned disk round trip: open a file DMA, write one
// aligned block, read it back on the same shard, verify it matches.
package main

import (
	"bytes"
	"os"

	"github.com/momentics/corereactor/aio"
	"github.com/momentics/corereactor/app"
	"github.com/momentics/corereactor/file"
	"github.com/momentics/corereactor/future"
)

func main() {
	a, err := app.New(app.Config{Name: "dma-roundtrip", NumCPUs: 1})
	if err != nil {
		panic(err)
	}
	e := a.Engines[0]
	ctx := aio.NewContext(e, 32)

	path := os.TempDir() + "/corereactor-dma-roundtrip.bin"

	openF := file.OpenFileDMA(ctx, path, file.FlagRW|file.FlagCreate|file.FlagTruncate)
	run := future.ThenCompose(openF, func(f *file.File) *future.Future[struct{}] {
		align := f.Alignment()
		block := file.AllocateAligned(align.Length, align.Memory)
		for i := range block {
			block[i] = byte(i)
		}
		want := append([]byte(nil), block...)

		written := f.DmaWrite(0, file.NewBuffer(block), aio.DefaultClass)
		return future.ThenCompose(written, func(int64) *future.Future[struct{}] {
			readBuf := file.AllocateAligned(align.Length, align.Memory)
			read := f.DmaRead(0, file.NewBuffer(readBuf), aio.DefaultClass)
			return future.Then(read, func(n int64) (struct{}, error) {
				if !bytes.Equal(want, readBuf[:n]) {
					e.Log.Error().Msg("dma round trip mismatch")
				} else {
					e.Log.Info().Msg("dma round trip verified")
				}
				ctx.PublishStats(a.Metrics, "aio.dma-roundtrip")
				return struct{}{}, nil
			})
		})
	})

	future.Finally(run, func() { a.ExitAll(0) })
	a.Run()
}
