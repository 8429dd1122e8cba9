// control/logging_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/future"
)

func TestWireIgnoredExceptionLoggerLogsDroppedFutures(t *testing.T) {
	t.Cleanup(func() { future.IgnoredExceptionLogger = func(error) {} })

	var buf bytes.Buffer
	WireIgnoredExceptionLogger(zerolog.New(&buf))

	future.IgnoredExceptionLogger(errors.New("boom"))

	require.Contains(t, buf.String(), "boom")
	require.Contains(t, buf.String(), "future dropped without being consumed")
}
