// File: cmd/hello-sleep/main.go
// Author: momentics <momentics@gmail.com>
//
// The simplest scenario spec.md §8 names: sleep(1s).then(print "Hello
// World"), run on shard 0, then exit every shard.
package main

import (
	"os"
	"time"

	"github.com/momentics/corereactor/app"
	"github.com/momentics/corereactor/future"
)

func main() {
	opts, err := app.ParseFlags("hello-sleep", os.Args[1:])
	if err != nil {
		panic(err)
	}
	if opts.NumCPUs <= 0 {
		opts.NumCPUs = 1
	}

	a, err := app.New(opts.Config())
	if err != nil {
		panic(err)
	}
	e := a.Engines[0]

	future.Then(e.Sleep(time.Second), func(struct{}) (struct{}, error) {
		e.Log.Info().Msg("Hello World")
		a.ExitAll(0)
		return struct{}{}, nil
	})

	a.Run()
}
