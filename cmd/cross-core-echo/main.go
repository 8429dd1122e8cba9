// File: cmd/cross-core-echo/main.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §8's cross-core echo scenario: map_reduce0 dispatches a
// mapper to every shard via submit_to and folds the per-shard replies
// back into a sum on the calling shard, counting how many shards
// answered.
package main

import (
	"github.com/momentics/corereactor/app"
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/smp"
)

func main() {
	a, err := app.New(app.Config{Name: "cross-core-echo", NumCPUs: 4})
	if err != nil {
		panic(err)
	}
	origin := a.Shard(0)

	sum := smp.MapReduce0(origin, a.System, func() (int, error) {
		return 1, nil
	}, 0, func(acc int, v int) int { return acc + v })

	future.Finally(sum, func() {
		total, err := future.Get(sum)
		if err != nil {
			origin.Engine.Log.Error().Err(err).Msg("cross-core echo failed")
		} else {
			origin.Engine.Log.Info().Int("sum", total).Msg("cross-core echo complete")
		}
		a.ExitAll(0)
	})

	a.Run()
}
