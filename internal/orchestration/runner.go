package orchestration

import (
	"context"
	"time"

	"github.com/juju/clock"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/health"
	"github.com/imamik/cephrig/internal/hostvars"
	"github.com/imamik/cephrig/internal/metrics"
	"github.com/imamik/cephrig/internal/packaging"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/provisioning/archive"
	"github.com/imamik/cephrig/internal/provisioning/converge"
	"github.com/imamik/cephrig/internal/provisioning/deploy"
	"github.com/imamik/cephrig/internal/provisioning/documents"
	"github.com/imamik/cephrig/internal/provisioning/facts"
	"github.com/imamik/cephrig/internal/provisioning/packages"
	"github.com/imamik/cephrig/internal/topology"
)

// Runner executes the phases of a ceph-ansible task.
type Runner struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	observer provisioning.Observer
	metrics  *metrics.Recorder
	store    archive.ObjectStore
	clock    clock.Clock

	gather      hostvars.FactsGatherer
	hostVarOpts []hostvars.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver sets the observer receiving logs and events.
func WithObserver(o provisioning.Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithMetrics records run metrics in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// WithObjectStore archives run artifacts in store.
func WithObjectStore(store archive.ObjectStore) Option {
	return func(r *Runner) { r.store = store }
}

// WithTimeouts replaces the timeouts loaded from the environment.
func WithTimeouts(t *config.Timeouts) Option {
	return func(r *Runner) { r.timeouts = t }
}

// WithClock sets the clock driving the health poll.
func WithClock(clk clock.Clock) Option {
	return func(r *Runner) { r.clock = clk }
}

// WithFactsGatherer replaces host fact gathering.
func WithFactsGatherer(fn hostvars.FactsGatherer) Option {
	return func(r *Runner) { r.gather = fn }
}

// WithHostVarsOptions passes options to the host variable resolver.
func WithHostVarsOptions(opts ...hostvars.Option) Option {
	return func(r *Runner) { r.hostVarOpts = append(r.hostVarOpts, opts...) }
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		clock: clock.WallClock,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.timeouts == nil {
		r.timeouts = config.LoadTimeouts()
	}
	if r.observer == nil {
		r.observer = provisioning.NewConsoleObserver()
	}
	if cfg.Name != "" {
		r.observer = r.observer.WithFields(map[string]string{"run": cfg.Name})
	}
	return r
}

// Run executes the full task on c: validation, facts, inventory, playbook,
// execute and health. Artifacts are archived and the local files removed
// whatever the outcome.
func (r *Runner) Run(ctx context.Context, c *cluster.Cluster) (*provisioning.State, error) {
	pctx := r.newContext(ctx, c)
	tr := r.topologyRunner(r.cfg.CephAnsible)

	err := provisioning.RunPhases(pctx, append(r.documentPhases(),
		deploy.NewProvisioner(tr),
		converge.NewProvisioner(tr),
	))

	r.archive(pctx)
	r.cleanup(pctx)
	r.metrics.RecordRun(err)
	r.writeMetrics()
	return pctx.State, err
}

// Documents generates the inventory and playbook without running them.
// The local files are removed; the content stays in the returned state.
func (r *Runner) Documents(ctx context.Context, c *cluster.Cluster) (*provisioning.State, error) {
	pctx := r.newContext(ctx, c)
	err := provisioning.RunPhases(pctx, r.documentPhases())
	r.cleanup(pctx)
	return pctx.State, err
}

// Health polls the health of an already deployed cluster. It polls even when
// wait-for-health is disabled for the task.
func (r *Runner) Health(ctx context.Context, c *cluster.Cluster) (health.Status, error) {
	ca := r.cfg.CephAnsible
	wait := true
	ca.WaitForHealth = &wait
	tr := r.topologyRunner(ca)

	ex, err := tr.Select(c)
	if err != nil {
		return "", err
	}
	pctx := r.newContext(ctx, c)
	pctx.State.Execution = ex

	err = provisioning.RunPhases(pctx, []provisioning.Phase{converge.NewProvisioner(tr)})
	r.writeMetrics()
	return health.Status(pctx.State.HealthStatus), err
}

// Packages applies a package lifecycle operation to every host of c.
func (r *Runner) Packages(ctx context.Context, c *cluster.Cluster, op string) error {
	installer := packaging.NewInstaller(r.cfg.Install, packaging.NewConfigResolver(r.cfg.Install),
		packaging.WithLogger(r.observer),
		packaging.WithOperationHook(r.metrics.RecordPackageOperation),
	)
	phase, err := packages.NewProvisioner(installer, op)
	if err != nil {
		return err
	}

	err = provisioning.RunPhases(r.newContext(ctx, c), []provisioning.Phase{phase})
	r.writeMetrics()
	return err
}

func (r *Runner) newContext(ctx context.Context, c *cluster.Cluster) *provisioning.Context {
	pctx := provisioning.NewContext(ctx, r.cfg, c).WithObserver(r.observer)
	pctx.Timeouts = r.timeouts
	pctx.Metrics = r.metrics
	return pctx
}

func (r *Runner) documentPhases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.NewValidationPhase(),
		facts.NewProvisioner(r.gather),
		documents.NewInventoryProvisioner(r.resolverOptions()...),
		documents.NewPlaybookProvisioner(),
	}
}

func (r *Runner) resolverOptions() []hostvars.Option {
	opts := append([]hostvars.Option(nil), r.hostVarOpts...)
	if r.gather != nil {
		opts = append(opts, hostvars.WithFactsGatherer(r.gather))
	}
	return opts
}

func (r *Runner) topologyRunner(ca config.CephAnsibleConfig) *topology.Runner {
	poller := health.NewPoller(
		health.WithAttempts(r.timeouts.HealthAttempts),
		health.WithInterval(r.timeouts.HealthInterval),
		health.WithClock(r.clock),
		health.WithLogger(r.observer),
		health.WithCheckHook(func(s health.Status) { r.metrics.RecordHealthCheck(string(s)) }),
	)
	return topology.NewRunner(ca,
		topology.WithTimeout(r.timeouts.Playbook),
		topology.WithLogger(r.observer),
		topology.WithHealthWaiter(poller),
	)
}

// archive uploads the run artifacts. It never fails the run.
func (r *Runner) archive(pctx *provisioning.Context) {
	if r.store == nil || !r.cfg.Archive.Enabled() {
		return
	}
	// uploads still happen when the run was cancelled
	pctx.Context = context.WithoutCancel(pctx.Context)

	phase := archive.NewProvisioner(r.store)
	start := time.Now()
	provisioning.LogPhaseStart(r.observer, phase.Name())
	if err := phase.Provision(pctx); err != nil {
		provisioning.LogPhaseFailed(r.observer, phase.Name(), err)
		return
	}
	elapsed := time.Since(start)
	r.metrics.RecordPhase(phase.Name(), elapsed.Seconds())
	provisioning.LogPhaseComplete(r.observer, phase.Name(), elapsed)
}

// cleanup removes the local artifact files.
func (r *Runner) cleanup(pctx *provisioning.Context) {
	if err := pctx.State.Artifacts.Cleanup(); err != nil {
		r.observer.Printf("Failed to remove local artifacts: %v", err)
	}
}

func (r *Runner) writeMetrics() {
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
		r.observer.Printf("%v", err)
	}
}
