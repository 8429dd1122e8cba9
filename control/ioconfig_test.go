// control/ioconfig_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConf(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "io.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadIOConfigKeyValueForm(t *testing.T) {
	path := writeTempConf(t, "max-io-requests=128\nnum-io-queues=4\n")
	cfg, err := LoadIOConfig(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.MaxIORequests)
	require.Equal(t, 4, cfg.NumIOQueues)
}

func TestLoadIOConfigSeastarIOForm(t *testing.T) {
	path := writeTempConf(t, `SEASTAR_IO="--max-io-requests=256 --num-io-queues=8"`+"\n")
	cfg, err := LoadIOConfig(path)
	require.NoError(t, err)
	require.Equal(t, 256, cfg.MaxIORequests)
	require.Equal(t, 8, cfg.NumIOQueues)
}

func TestLoadIOConfigMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := LoadIOConfig(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)
	require.Equal(t, IOConfig{}, cfg)
}

func TestLoadIOConfigMalformedLine(t *testing.T) {
	path := writeTempConf(t, "not-a-valid-line\n")
	_, err := LoadIOConfig(path)
	require.Error(t, err)
}
