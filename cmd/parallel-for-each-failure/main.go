// File: cmd/parallel-for-each-failure/main.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §8's early-failure scenario: parallel_for_each over a batch
// where one item fails; the aggregate future resolves with the error
// once every item has run, per when_all's all-complete-before-resolve
// semantics.
package main

import (
	"fmt"

	"github.com/momentics/corereactor/app"
	"github.com/momentics/corereactor/future"
)

func main() {
	a, err := app.New(app.Config{Name: "parallel-for-each-failure", NumCPUs: 1})
	if err != nil {
		panic(err)
	}
	e := a.Engines[0]

	items := []int{0, 1, 2, 3, 4}
	done := future.ParallelForEach(e, items, func(i int) *future.Future[struct{}] {
		if i == 2 {
			return future.Failed[struct{}](e, fmt.Errorf("item %d failed", i))
		}
		return future.Ready(e, struct{}{})
	})

	future.Finally(done, func() {
		_, err := future.Get(done)
		if err != nil {
			e.Log.Info().Err(err).Msg("parallel_for_each surfaced the expected failure")
		} else {
			e.Log.Error().Msg("expected a failure, got none")
		}
		a.ExitAll(0)
	})

	a.Run()
}
