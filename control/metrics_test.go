// control/metrics_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsRegistrySetAndGetSnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("requests", 42)
	mr.Set("latency-ms", 3.5)
	require.Equal(t, map[string]any{"requests": 42, "latency-ms": 3.5}, mr.GetSnapshot())
}

func TestMetricsRegistrySnapshotIsACopy(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("a", 1)
	snap := mr.GetSnapshot()
	snap["a"] = 99
	require.Equal(t, 1, mr.GetSnapshot()["a"])
}
