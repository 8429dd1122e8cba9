// control/plane_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaneDelegatesToUnderlyingStores(t *testing.T) {
	cs := NewConfigStore()
	mr := NewMetricsRegistry()
	dp := NewDebugProbes()
	p := NewPlane(cs, mr, dp)

	p.SetConfig(map[string]any{"a": 1})
	require.Equal(t, 1, p.GetConfig()["a"])

	mr.Set("b", 2)
	require.Equal(t, 2, p.Stats()["b"])

	p.RegisterDebugProbe("c", func() any { return 3 })
	require.Equal(t, 3, dp.DumpState()["c"])
}
