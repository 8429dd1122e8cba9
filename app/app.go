// File: app/app.go
// Author: momentics <momentics@gmail.com>
//
// Package app is the root-level facade tying reactor, smp, future, and
// control together into the runnable multi-shard process spec.md §3
// describes: one Engine per logical CPU, pinned to that CPU, wired into
// a shared SMP System so any shard can submit_to any other.
package app

import (
	"fmt"
	"runtime"

	"github.com/momentics/corereactor/affinity"
	"github.com/momentics/corereactor/api"
	"github.com/momentics/corereactor/control"
	"github.com/momentics/corereactor/future"
	"github.com/momentics/corereactor/reactor"
	"github.com/momentics/corereactor/smp"
)

// Config selects how many shards to run and where to read I/O tuning
// from.
type Config struct {
	// Name identifies this process for logging and the default
	// io.conf path ($HOME/.config/<Name>/io.conf).
	Name string
	// NumCPUs is the shard count. 0 means runtime.NumCPU().
	NumCPUs int
	// IOConfigPath overrides control.DefaultIOConfigPath(Name).
	IOConfigPath string
}

// App owns every shard's Engine plus the SMP System connecting them,
// and the ambient control plane (config, metrics, debug probes) shared
// across all of them.
type App struct {
	System  *smp.System
	Engines []*reactor.Engine
	IO      control.IOConfig

	Config  *control.ConfigStore
	Metrics *control.MetricsRegistry
	Debug   *control.DebugProbes

	// Control composes Config/Metrics/Debug behind api.Control, for
	// callers that only need the narrow control-plane surface.
	Control *control.Plane
}

// New constructs every shard's Engine and registers it with a fresh
// smp.System, without starting any of them.
func New(cfg Config) (*App, error) {
	n := cfg.NumCPUs
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if cfg.Name == "" {
		cfg.Name = "corereactor"
	}

	path := cfg.IOConfigPath
	if path == "" {
		path = control.DefaultIOConfigPath(cfg.Name)
	}
	ioCfg, err := control.LoadIOConfig(path)
	if err != nil {
		return nil, fmt.Errorf("app: loading io.conf: %w", err)
	}

	log := control.NewLogger(cfg.Name)
	control.WireIgnoredExceptionLogger(log)

	cs := control.NewConfigStore()
	cs.SetConfig(map[string]any{
		"max-io-requests": ioCfg.MaxIORequests,
		"num-io-queues":   ioCfg.NumIOQueues,
		"task-quota":      reactor.DefaultTaskQuota,
	})

	mr := control.NewMetricsRegistry()

	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("app.shards", func() any { return n })
	dp.RegisterProbe("app.config", func() any { return cs.GetSnapshot() })
	dp.RegisterProbe("app.metrics", func() any { return mr.GetSnapshot() })

	sys := smp.NewSystem(n)
	engines := make([]*reactor.Engine, n)
	for cpu := 0; cpu < n; cpu++ {
		e := reactor.NewEngine(cpu, log)
		e.SetConfig(cs)
		engines[cpu] = e
		smp.NewShard(sys, cpu, e)
	}

	return &App{
		System:  sys,
		Engines: engines,
		IO:      ioCfg,
		Config:  cs,
		Metrics: mr,
		Debug:   dp,
		Control: control.NewPlane(cs, mr, dp),
	}, nil
}

// Run starts every shard's reactor loop, each pinned to its logical
// CPU on its own goroutine, per spec.md §3's thread-per-core model. It
// blocks until every shard's Engine.Exit has been called.
func (a *App) Run() {
	done := make(chan struct{}, len(a.Engines))
	for cpu, e := range a.Engines {
		go func(cpu int, e *reactor.Engine) {
			if err := affinity.SetAffinity(cpu); err != nil {
				e.Log.Warn().Err(err).Msg("affinity pinning unavailable, running unpinned")
			}
			e.Run()
			done <- struct{}{}
		}(cpu, e)
	}
	for range a.Engines {
		<-done
	}
}

// ExitAll requests every shard stop after its current loop iteration.
func (a *App) ExitAll(code int) {
	for _, e := range a.Engines {
		e.Exit(code)
	}
}

// Shutdown requests every shard stop, satisfying api.GracefulShutdown.
func (a *App) Shutdown() error {
	a.ExitAll(0)
	return nil
}

var _ api.GracefulShutdown = (*App)(nil)

// Shard returns the registered smp.Shard for cpu, for submit_to-style
// cross-shard calls from cmd/ entrypoints.
func (a *App) Shard(cpu int) *smp.Shard {
	return a.System.Shards()[cpu]
}

// ReloadConfig merges updates into the shared ConfigStore and applies
// any config fields every engine cares about (currently task-quota) on
// each engine's own goroutine, per spec.md §2's hot-reload path: rather
// than mutating an Engine's fields from the calling goroutine, the
// apply closure is submit_to'd to every shard, including the one the
// call originates on. It also fires the legacy global reload hooks
// registered via control.RegisterReloadHook, for callers still using
// that mechanism.
func (a *App) ReloadConfig(updates map[string]any) *future.Future[struct{}] {
	a.Config.SetConfig(updates)

	origin := a.Shard(0)
	cpus := make([]int, len(a.Engines))
	for i := range cpus {
		cpus[i] = i
	}

	applied := future.ParallelForEach(origin.Engine, cpus, func(cpu int) *future.Future[struct{}] {
		e := a.Engines[cpu]
		return smp.SubmitTo(origin, cpu, func() (struct{}, error) {
			if quota, ok := a.Config.GetSnapshot()["task-quota"].(int); ok {
				e.SetTaskQuota(quota)
			}
			return struct{}{}, nil
		})
	})
	return future.ThenCompose(applied, func(struct{}) *future.Future[struct{}] {
		control.TriggerHotReload()
		p, f := future.NewPromise[struct{}](origin.Engine)
		p.Resolve(struct{}{})
		return f
	})
}
