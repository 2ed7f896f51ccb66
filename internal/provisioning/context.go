package provisioning

import (
	"context"

	"github.com/imamik/cephrig/internal/artifact"
	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/inventory"
	"github.com/imamik/cephrig/internal/metrics"
	"github.com/imamik/cephrig/internal/topology"
)

// State holds the shared results of run phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Inventory results (populated by the inventory phase)
	Inventory         *inventory.Inventory
	InventoryArtifact *artifact.Artifact

	// Plan results (populated by the playbook phase)
	PlaybookArtifact *artifact.Artifact

	// Execution results (populated by the execute phase)
	Execution      *topology.Execution
	PlaybookOutput string

	// Health results (populated by the health phase)
	HealthStatus string
	HealthPolled bool

	// Artifacts tracks every local file written during the run.
	Artifacts artifact.Set
}

// NewState creates an empty run state.
func NewState() *State {
	return &State{}
}

// Documents returns the staged inventory and playbook.
func (s *State) Documents() topology.Documents {
	return topology.Documents{Inventory: s.InventoryArtifact, Playbook: s.PlaybookArtifact}
}

// Context wraps all dependencies and state needed for a run phase.
type Context struct {
	context.Context
	Config   *config.Config
	Cluster  *cluster.Cluster
	State    *State
	Observer Observer
	Logger   Logger
	Timeouts *config.Timeouts
	Metrics  *metrics.Recorder
}

// NewContext creates a new run context logging to the console.
func NewContext(ctx context.Context, cfg *config.Config, c *cluster.Cluster) *Context {
	observer := NewConsoleObserver()
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Cluster:  c,
		State:    NewState(),
		Observer: observer,
		Logger:   observer,
		Timeouts: config.LoadTimeouts(),
	}
}

// WithObserver replaces the observer and logger.
func (c *Context) WithObserver(o Observer) *Context {
	c.Observer = o
	c.Logger = o
	return c
}
