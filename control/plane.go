// control/plane.go
// Author: momentics <momentics@gmail.com>
//
// Plane composes ConfigStore, MetricsRegistry and DebugProbes behind the
// single api.Control surface, so an app.App can be handed to a caller
// that only knows about api.Control.

package control

import "github.com/momentics/corereactor/api"

// Plane adapts the three separate control-plane stores onto api.Control.
type Plane struct {
	Config  *ConfigStore
	Metrics *MetricsRegistry
	Debug   *DebugProbes
}

// NewPlane wraps already-constructed stores into a single api.Control.
func NewPlane(cs *ConfigStore, mr *MetricsRegistry, dp *DebugProbes) *Plane {
	return &Plane{Config: cs, Metrics: mr, Debug: dp}
}

// GetConfig returns a snapshot of the dynamic config store.
func (p *Plane) GetConfig() map[string]any { return p.Config.GetSnapshot() }

// SetConfig merges updates into the dynamic config store.
func (p *Plane) SetConfig(cfg map[string]any) { p.Config.SetConfig(cfg) }

// Stats returns a snapshot of the metrics registry.
func (p *Plane) Stats() map[string]any { return p.Metrics.GetSnapshot() }

// OnReload registers a config-reload listener.
func (p *Plane) OnReload(fn func()) { p.Config.OnReload(fn) }

// RegisterDebugProbe registers a named debug probe.
func (p *Plane) RegisterDebugProbe(name string, fn func() any) { p.Debug.RegisterProbe(name, fn) }

var _ api.Control = (*Plane)(nil)
var _ api.Debug = (*DebugProbes)(nil)
