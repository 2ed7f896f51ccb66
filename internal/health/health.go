// Package health waits for a freshly deployed Ceph cluster to report an
// acceptable health status.
package health

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/imamik/cephrig/internal/remote"
	"github.com/imamik/cephrig/internal/util/retry"
)

// Status is the first word printed by `ceph health`.
type Status string

const (
	StatusOK   Status = "HEALTH_OK"
	StatusWarn Status = "HEALTH_WARN"
	StatusErr  Status = "HEALTH_ERR"
)

// Converged reports whether the cluster may be used.
func (s Status) Converged() bool {
	return s == StatusOK || s == StatusWarn
}

// ParseStatus returns the first whitespace-delimited word of out.
func ParseStatus(out string) Status {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return ""
	}
	return Status(fields[0])
}

// State is the poller's progress.
type State int

const (
	Polling State = iota
	Converged
	Exhausted
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrHealthTimeout is returned when the cluster did not converge within the
// attempt budget.
var ErrHealthTimeout = errors.New("timed out waiting for ceph health")

// Default polling budget.
const (
	DefaultAttempts = 6
	DefaultInterval = 15 * time.Second
)

// Logger receives progress messages.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Poller queries a control host until the cluster converges.
type Poller struct {
	attempts int
	interval time.Duration
	clock    clock.Clock
	logger   Logger
	onCheck  func(Status)

	state   State
	last    Status
	queries int
}

// Option configures a Poller.
type Option func(*Poller)

// WithAttempts sets the number of health queries.
func WithAttempts(n int) Option {
	return func(p *Poller) { p.attempts = n }
}

// WithInterval sets the sleep between queries.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithClock sets the clock driving the sleeps.
func WithClock(clk clock.Clock) Option {
	return func(p *Poller) { p.clock = clk }
}

// WithLogger sets the progress logger.
func WithLogger(l Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithCheckHook registers fn to be called with every observed status.
func WithCheckHook(fn func(Status)) Option {
	return func(p *Poller) { p.onCheck = fn }
}

// NewPoller returns a poller with the default budget.
func NewPoller(opts ...Option) *Poller {
	p := &Poller{
		attempts: DefaultAttempts,
		interval: DefaultInterval,
		clock:    clock.WallClock,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.attempts < 1 {
		p.attempts = 1
	}
	return p
}

// State returns where the last Wait ended.
func (p *Poller) State() State { return p.state }

// Last returns the last observed status.
func (p *Poller) Last() Status { return p.last }

// Queries returns how many health queries the last Wait issued.
func (p *Poller) Queries() int { return p.queries }

// Wait logs the OSD tree and cluster status once, then polls `ceph health`
// on control until it reports OK or WARN. Transport failures abort
// immediately.
func (p *Poller) Wait(ctx context.Context, control remote.Remote) (Status, error) {
	p.state, p.last, p.queries = Polling, "", 0

	for _, diag := range [][]string{{"sudo", "ceph", "osd", "tree"}, {"sudo", "ceph", "-s"}} {
		out, err := remote.Exec(ctx, control, diag)
		if err != nil {
			return "", fmt.Errorf("failed to collect cluster diagnostics: %w", err)
		}
		p.logLines(out)
	}
	p.logger.Printf("Waiting for Ceph health to reach %s or %s", StatusOK, StatusWarn)

	err := retry.Do(ctx, func() error {
		status, err := p.check(ctx, control)
		if err != nil {
			return retry.Fatal(err)
		}
		if !status.Converged() {
			return fmt.Errorf("cluster in state %s", status)
		}
		return nil
	},
		retry.WithAttempts(p.attempts),
		retry.WithFixedInterval(p.interval),
		retry.WithClock(p.clock),
	)

	switch {
	case err == nil:
		p.state = Converged
		return p.last, nil
	case retry.IsExhausted(err):
		p.state = Exhausted
		return p.last, fmt.Errorf("%w: last status %q after %d checks", ErrHealthTimeout, p.last, p.queries)
	default:
		return p.last, err
	}
}

func (p *Poller) check(ctx context.Context, control remote.Remote) (Status, error) {
	var out bytes.Buffer
	p.queries++
	if _, err := control.Run(ctx, &remote.Command{
		Args:   remote.Args("sudo", "ceph", "health"),
		Stdout: &out,
	}); err != nil {
		return "", fmt.Errorf("failed to query ceph health: %w", err)
	}
	status := ParseStatus(out.String())
	p.last = status
	p.logger.Printf("cluster in state: %s", status)
	if p.onCheck != nil {
		p.onCheck(status)
	}
	return status, nil
}

func (p *Poller) logLines(out string) {
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line != "" {
			p.logger.Printf("%s", line)
		}
	}
}
