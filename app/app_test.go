// File: app/app_test.go
// Author: momentics <momentics@gmail.com>

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/corereactor/future"
)

func TestNewBuildsOneEngineAndShardPerCPU(t *testing.T) {
	a, err := New(Config{Name: "app-test", NumCPUs: 3, IOConfigPath: filepath.Join(t.TempDir(), "absent.conf")})
	require.NoError(t, err)
	require.Len(t, a.Engines, 3)
	require.Equal(t, 3, a.System.NumCPUs())
	for cpu := 0; cpu < 3; cpu++ {
		require.Equal(t, cpu, a.Shard(cpu).CPU)
		require.Same(t, a.Engines[cpu], a.Shard(cpu).Engine)
	}
}

func TestNewLoadsIOConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "io.conf")
	require.NoError(t, os.WriteFile(path, []byte("max-io-requests=64\nnum-io-queues=2\n"), 0o644))

	a, err := New(Config{Name: "app-test-io", NumCPUs: 1, IOConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, 64, a.IO.MaxIORequests)
	require.Equal(t, 2, a.IO.NumIOQueues)
}

func TestReloadConfigAppliesTaskQuotaOnEachEngine(t *testing.T) {
	a, err := New(Config{Name: "app-test-reload", NumCPUs: 3})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		a.Run()
		close(done)
	}()

	reloaded := make(chan struct{})
	future.Then(a.ReloadConfig(map[string]any{"task-quota": 7}), func(struct{}) (struct{}, error) {
		close(reloaded)
		a.ExitAll(0)
		return struct{}{}, nil
	})

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("ReloadConfig did not resolve")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("App.Run did not return after ReloadConfig exited every shard")
	}

	require.Equal(t, 7, a.Config.GetSnapshot()["task-quota"])
}

func TestControlComposesConfigMetricsDebug(t *testing.T) {
	a, err := New(Config{Name: "app-test-control", NumCPUs: 1, IOConfigPath: filepath.Join(t.TempDir(), "absent.conf")})
	require.NoError(t, err)

	a.Control.SetConfig(map[string]any{"task-quota": 9})
	require.Equal(t, 9, a.Control.GetConfig()["task-quota"])

	a.Metrics.Set("requests", 1)
	require.Equal(t, 1, a.Control.Stats()["requests"])

	a.Control.RegisterDebugProbe("app-test.probe", func() any { return "ok" })
	require.Equal(t, "ok", a.Debug.DumpState()["app-test.probe"])

	called := make(chan struct{})
	a.Control.OnReload(func() { close(called) })
	a.Config.SetConfig(map[string]any{"x": 1})
	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("OnReload listener registered via Control was not invoked")
	}
}

func TestShutdownExitsEveryShard(t *testing.T) {
	a, err := New(Config{Name: "app-test-shutdown", NumCPUs: 2, IOConfigPath: filepath.Join(t.TempDir(), "absent.conf")})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		a.Run()
		close(done)
	}()

	require.NoError(t, a.Shutdown())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestRunExitsOnceEveryShardExits(t *testing.T) {
	a, err := New(Config{Name: "app-test-run", NumCPUs: 2})
	require.NoError(t, err)

	for _, e := range a.Engines {
		e := e
		future.Then(e.Sleep(0), func(struct{}) (struct{}, error) {
			e.Exit(0)
			return struct{}{}, nil
		})
	}

	done := make(chan struct{})
	go func() {
		a.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("App.Run did not return after every shard exited")
	}
}
