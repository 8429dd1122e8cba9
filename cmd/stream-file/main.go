// File: cmd/stream-file/main.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §8's unaligned file stream scenario: write arbitrary-length
// chunks through stream.OutputStream, then read them back through
// stream.InputStream using stream.Consume.
package main

import (
	"bytes"
	"os"

	"github.com/momentics/corereactor/aio"
	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/app"
	"github.com/momentics/corereactor/file"
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/stream"
)

func main() {
	a, err := app.New(app.Config{Name: "stream-file", NumCPUs: 1})
	if err != nil {
		panic(err)
	}
	e := a.Engines[0]
	ctx := aio.NewContext(e, 32)

	path := os.TempDir() + "/corereactor-stream-file.bin"

	openF := file.OpenFileDMA(ctx, path, file.FlagRW|file.FlagCreate|file.FlagTruncate)
	run := future.ThenCompose(openF, func(f *file.File) *future.Future[struct{}] {
		out := stream.NewOutputStream(e, f, 4096, 2, aio.DefaultClass)
		payload := []byte("the quick brown fox jumps over the lazy dog, repeated unaligned")

		written := future.ThenCompose(out.Put(payload), func(struct{}) *future.Future[struct{}] {
			return out.Flush()
		})
		closed := future.ThenCompose(written, func(struct{}) *future.Future[struct{}] { return out.Close() })

		return future.ThenCompose(closed, func(struct{}) *future.Future[struct{}] {
			rf := file.OpenFileDMA(ctx, path, file.FlagRO)
			return future.ThenCompose(rf, func(inFile *file.File) *future.Future[struct{}] {
				in := stream.NewInputStream(e, inFile, 4096, 2, aio.DefaultClass)
				var got []byte
				consumed := stream.Consume(e, in, func(b api.Buffer) *future.Future[future.Option[api.Buffer]] {
					got = append(got, b.Bytes()...)
					return future.Ready(e, future.Some[api.Buffer](file.NewBuffer(nil)))
				})
				return future.Then(consumed, func(struct{}) (struct{}, error) {
					if bytes.HasPrefix(got, payload) {
						e.Log.Info().Msg("unaligned stream round trip verified")
					} else {
						e.Log.Error().Msg("unaligned stream round trip mismatch")
					}
					ctx.PublishStats(a.Metrics, "aio.stream-file")
					return struct{}{}, nil
				})
			})
		})
	})

	future.Finally(run, func() { a.ExitAll(0) })
	a.Run()
}
