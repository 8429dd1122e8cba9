// File: app/options_test.go
// Author: momentics <momentics@gmail.com>

package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := ParseFlags("corereactor", nil)
	require.NoError(t, err)
	require.Equal(t, "corereactor", opts.Name)
	require.Equal(t, 0, opts.NumCPUs)
	require.Equal(t, "", opts.IOConfigPath)
}

func TestParseFlagsOverrides(t *testing.T) {
	opts, err := ParseFlags("corereactor", []string{"-name", "custom", "-cpus", "4", "-io-config", "/tmp/io.conf"})
	require.NoError(t, err)
	require.Equal(t, "custom", opts.Name)
	require.Equal(t, 4, opts.NumCPUs)
	require.Equal(t, "/tmp/io.conf", opts.IOConfigPath)

	cfg := opts.Config()
	require.Equal(t, "custom", cfg.Name)
	require.Equal(t, 4, cfg.NumCPUs)
	require.Equal(t, "/tmp/io.conf", cfg.IOConfigPath)
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	_, err := ParseFlags("corereactor", []string{"-bogus"})
	require.Error(t, err)
}
