// File: cmd/repeat-failure/main.go
// Author: momentics <momentics@gmail.com>
//
// spec.md §8's exception-at-step-2 scenario: repeat() runs a body that
// fails on its second iteration; the loop stops immediately and the
// returned future fails rather than continuing to a third step.
package main

import (
	"fmt"

	"github.com/momentics/corereactor/app"
	"github.com/momentics/corereactor/future"
)

func main() {
	a, err := app.New(app.Config{Name: "repeat-failure", NumCPUs: 1})
	if err != nil {
		panic(err)
	}
	e := a.Engines[0]

	step := 0
	loop := future.Repeat(e, func() *future.Future[bool] {
		step++
		if step == 2 {
			return future.Failed[bool](e, fmt.Errorf("failed at step %d", step))
		}
		return future.Ready(e, false)
	})

	future.Finally(loop, func() {
		_, err := future.Get(loop)
		if err != nil && step == 2 {
			e.Log.Info().Err(err).Int("steps_run", step).Msg("repeat stopped at the expected step")
		} else {
			e.Log.Error().Int("steps_run", step).Msg("repeat did not stop where expected")
		}
		a.ExitAll(0)
	})

	a.Run()
}
