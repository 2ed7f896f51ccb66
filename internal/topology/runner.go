package topology

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/health"
	"github.com/imamik/cephrig/internal/remote"
)

// DefaultTimeout bounds one ansible-playbook run.
const DefaultTimeout = 70 * time.Minute

// Logger receives progress messages.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// HealthWaiter blocks until the cluster behind control converged.
type HealthWaiter interface {
	Wait(ctx context.Context, control remote.Remote) (health.Status, error)
}

// Runner stages and executes ceph-ansible.
type Runner struct {
	cfg     config.CephAnsibleConfig
	timeout time.Duration
	logger  Logger
	health  HealthWaiter
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds the ansible-playbook run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithLogger sets the progress logger.
func WithLogger(l Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithHealthWaiter replaces the default health poller.
func WithHealthWaiter(w HealthWaiter) Option {
	return func(r *Runner) { r.health = w }
}

// NewRunner returns a runner for cfg.
func NewRunner(cfg config.CephAnsibleConfig, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		timeout: DefaultTimeout,
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.health == nil {
		r.health = health.NewPoller(health.WithLogger(r.logger))
	}
	return r
}

// Mode returns the configured staging mode.
func (r *Runner) Mode() Mode {
	return ModeFor(&r.cfg)
}

// Select returns the execution context of c for the configured mode.
func (r *Runner) Select(c *cluster.Cluster) (*Execution, error) {
	return SelectExecution(c, r.Mode())
}

// Stage prepares the installer: ceph-ansible, the generated documents, the
// group_vars files and, in source mode, the virtualenv.
func (r *Runner) Stage(ctx context.Context, ex *Execution, docs Documents) error {
	r.logger.Printf("Staging ceph-ansible on %s (%s mode)", ex.Installer.Name(), ex.Mode)

	if ex.Mode == ModePrebuilt {
		if err := (prebuiltStager{runner: r}).stage(ctx, ex, docs); err != nil {
			return err
		}
		return r.writeGroupVars(ctx, ex)
	}

	s := sourceStager{runner: r}
	if err := s.stage(ctx, ex, docs); err != nil {
		return err
	}
	if err := r.writeGroupVars(ctx, ex); err != nil {
		return err
	}
	return s.bootstrap(ctx, ex)
}

// Command returns the ansible-playbook invocation for ex.
func (r *Runner) Command(ex *Execution) ([]remote.Arg, error) {
	extra, err := ExtraVars(r.cfg.Vars)
	if err != nil {
		return nil, err
	}
	args := remote.Args("cd", ex.WorkDir, remote.Raw(";"))
	if ex.Activate != "" {
		args = append(args, remote.Args(remote.Raw("source"), ex.Activate, remote.Raw(";"))...)
	}
	return append(args, remote.Args(
		"ansible-playbook", "-v",
		"--extra-vars", extra,
		"-i", ex.InventoryArg,
		ex.PlaybookArg,
	)...), nil
}

// Execute runs the playbook and returns its output. Output containing
// [FailureMarker] yields an *OrchestrationError regardless of the exit
// status; any other non-zero exit yields an *ExecutionError.
func (r *Runner) Execute(ctx context.Context, ex *Execution) (string, error) {
	args, err := r.Command(ex)
	if err != nil {
		return "", err
	}
	r.logger.Printf("Running %s on %s", remote.Render(args), ex.Installer.Name())

	var out bytes.Buffer
	res, err := ex.Installer.Remote.Run(ctx, &remote.Command{
		Args:         args,
		Stdout:       &out,
		Timeout:      r.timeout,
		IgnoreStatus: true,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return out.String(), fmt.Errorf("%w after %s: %w", ErrPlaybookTimeout, r.timeout, err)
		}
		return out.String(), fmt.Errorf("failed to run ansible-playbook: %w", err)
	}

	output := out.String()
	r.logOutput(output)

	if strings.Contains(output, FailureMarker) {
		r.logger.Printf("Failed during ansible execution")
		return output, &OrchestrationError{Host: ex.Installer.Name()}
	}
	if res.ExitStatus != 0 {
		return output, &ExecutionError{Host: ex.Installer.Name(), Status: res.ExitStatus}
	}
	return output, nil
}

// SetupClients copies the cluster configuration and admin keyring from the
// installer to every client host. Only prebuilt runs need this; ceph-ansible
// from source distributes them itself.
func (r *Runner) SetupClients(ctx context.Context, ex *Execution, c *cluster.Cluster) error {
	if ex.Mode != ModePrebuilt {
		return nil
	}
	clients := c.Only(cluster.IsType("client")).Hosts()
	if len(clients) == 0 {
		return nil
	}

	files := make(map[string][]byte, 2)
	for _, path := range []string{ClientConfPath, ClientKeyringPath} {
		data, err := remote.SudoReadFile(ctx, ex.Installer.Remote, path)
		if err != nil {
			return fmt.Errorf("failed to fetch client files: %w", err)
		}
		files[path] = data
	}

	for _, h := range clients {
		if h.Name() == ex.Installer.Name() {
			continue
		}
		r.logger.Printf("Setting up client %s", h.Name())
		if _, err := remote.Exec(ctx, h.Remote, "sudo", "mkdir", "-p", "/etc/ceph"); err != nil {
			return fmt.Errorf("failed to prepare %s: %w", h.Name(), err)
		}
		for _, path := range []string{ClientConfPath, ClientKeyringPath} {
			if err := remote.SudoWriteFile(ctx, h.Remote, path, files[path], "0644"); err != nil {
				return err
			}
		}
	}
	return nil
}

// WaitForHealth polls cluster health on the installer unless disabled by
// wait-for-health. The boolean reports whether polling took place.
func (r *Runner) WaitForHealth(ctx context.Context, ex *Execution) (health.Status, bool, error) {
	if !r.cfg.ShouldWaitForHealth() {
		r.logger.Printf("Skipping health check")
		return "", false, nil
	}
	status, err := r.health.Wait(ctx, ex.Installer.Remote)
	return status, true, err
}

func (r *Runner) writeGroupVars(ctx context.Context, ex *Execution) error {
	if len(r.cfg.GroupVars) == 0 {
		return nil
	}
	dir := CheckoutDir + "/group_vars"
	if _, err := remote.Exec(ctx, ex.Installer.Remote, "mkdir", "-p", dir); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	groups := make([]string, 0, len(r.cfg.GroupVars))
	for g := range r.cfg.GroupVars {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		data, err := renderGroupVars(r.cfg.GroupVars[group])
		if err != nil {
			return fmt.Errorf("failed to encode group_vars for %s: %w", group, err)
		}
		if err := remote.WriteFile(ctx, ex.Installer.Remote, dir+"/"+group, data); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) logOutput(out string) {
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line != "" {
			r.logger.Printf("%s", line)
		}
	}
}
