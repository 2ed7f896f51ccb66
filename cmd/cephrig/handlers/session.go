// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr/funcr"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/health"
	"github.com/imamik/cephrig/internal/metrics"
	"github.com/imamik/cephrig/internal/orchestration"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/provisioning/archive"
)

// Log formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	LogFormat  string
}

// Runner interface for testing - matches orchestration.Runner.
type Runner interface {
	Run(ctx context.Context, c *cluster.Cluster) (*provisioning.State, error)
	Documents(ctx context.Context, c *cluster.Cluster) (*provisioning.State, error)
	Health(ctx context.Context, c *cluster.Cluster) (health.Status, error)
	Packages(ctx context.Context, c *cluster.Cluster, op string) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// findConfigFile locates cephrig.yaml when no path is given.
	findConfigFile = config.FindConfigFile

	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// newRemoteFactory opens SSH connections to the targets.
	newRemoteFactory = orchestration.SSHFactory

	// newAddressResolver looks target addresses up in Hetzner Cloud.
	newAddressResolver = orchestration.NewAddressResolver

	// newObjectStore creates the S3 archive client.
	newObjectStore = orchestration.NewObjectStore

	// buildCluster opens the remotes of all targets.
	buildCluster = orchestration.BuildCluster

	// closeCluster releases the remotes.
	closeCluster = orchestration.CloseCluster

	// newRunner creates the task runner.
	newRunner = func(cfg *config.Config, opts ...orchestration.Option) Runner {
		return orchestration.NewRunner(cfg, opts...)
	}

	// stdout receives command output.
	stdout io.Writer = os.Stdout

	// stderr receives JSON logs.
	stderr io.Writer = os.Stderr
)

// session is the loaded configuration and opened cluster of one command.
type session struct {
	cfg     *config.Config
	cluster *cluster.Cluster
	runner  Runner
}

func (s *session) Close() {
	if err := closeCluster(s.cluster); err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}
}

// loadConfig loads the config at path, or the nearest cephrig.yaml.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w", err)
		}
		path = found
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newObserver returns the observer for the requested log format.
func newObserver(format string) (provisioning.Observer, error) {
	switch format {
	case "", LogFormatText:
		return provisioning.NewConsoleObserver(), nil
	case LogFormatJSON:
		logger := funcr.NewJSON(func(obj string) {
			fmt.Fprintln(stderr, obj)
		}, funcr.Options{LogTimestamp: true})
		return provisioning.NewLogrObserver(logger.WithName("cephrig")), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, LogFormatText, LogFormatJSON)
	}
}

// openSession loads the config, opens every target and creates the runner.
func openSession(ctx context.Context, opts Options) (*session, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	observer, err := newObserver(opts.LogFormat)
	if err != nil {
		return nil, err
	}

	timeouts := config.LoadTimeouts()
	dial, err := newRemoteFactory(cfg.SSH, timeouts)
	if err != nil {
		return nil, err
	}

	var store archive.ObjectStore
	if cfg.Archive.Enabled() {
		store, err = newObjectStore(ctx, cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive client: %w", err)
		}
	}

	c, err := buildCluster(ctx, cfg, dial, newAddressResolver(cfg.HCloud))
	if err != nil {
		return nil, err
	}

	runner := newRunner(cfg,
		orchestration.WithObserver(observer),
		orchestration.WithTimeouts(timeouts),
		orchestration.WithMetrics(metrics.New()),
		orchestration.WithObjectStore(store),
	)
	return &session{cfg: cfg, cluster: c, runner: runner}, nil
}
