// control/debug_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebugProbesDumpState(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("a", func() any { return 1 })
	dp.RegisterProbe("b", func() any { return "two" })
	require.Equal(t, map[string]any{"a": 1, "b": "two"}, dp.DumpState())
}

func TestRegisterPlatformProbesAddsCPUCount(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	state := dp.DumpState()
	_, ok := state["platform.cpus"]
	require.True(t, ok)
}
