// control/config_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetAndGetSnapshot(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{"a": 1})
	cs.SetConfig(map[string]any{"b": 2})
	require.Equal(t, map[string]any{"a": 1, "b": 2}, cs.GetSnapshot())
}

func TestConfigStoreSnapshotIsACopy(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{"a": 1})
	snap := cs.GetSnapshot()
	snap["a"] = 99
	require.Equal(t, 1, cs.GetSnapshot()["a"])
}

func TestConfigStoreOnReloadFiresOnSetConfig(t *testing.T) {
	cs := NewConfigStore()
	var wg sync.WaitGroup
	wg.Add(1)
	cs.OnReload(func() { wg.Done() })
	cs.SetConfig(map[string]any{"a": 1})
	wg.Wait()
}
