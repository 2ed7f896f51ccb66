package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/remote"
)

// RemoteFactory opens the remote of one target.
type RemoteFactory func(target config.Target) (remote.Remote, error)

// AddressResolver fills in target addresses that the config leaves empty.
type AddressResolver interface {
	ResolveTargets(ctx context.Context, targets []config.Target) ([]config.Target, error)
}

// BuildCluster resolves the target addresses and opens a remote for every
// target. resolver may be nil, in which case targets without an address are
// dialed by hostname.
func BuildCluster(ctx context.Context, cfg *config.Config, dial RemoteFactory, resolver AddressResolver) (*cluster.Cluster, error) {
	targets := cfg.Targets
	if resolver != nil {
		resolved, err := resolver.ResolveTargets(ctx, targets)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target addresses: %w", err)
		}
		targets = resolved
	}

	hosts := make([]*cluster.Host, 0, len(targets))
	for _, t := range targets {
		r, err := dial(t)
		if err != nil {
			closeHosts(hosts)
			return nil, fmt.Errorf("failed to open remote %s: %w", t.Hostname, err)
		}
		h := &cluster.Host{Remote: r}
		for _, role := range t.Roles {
			h.Roles = append(h.Roles, cluster.Role(role))
		}
		hosts = append(hosts, h)
	}
	return cluster.New(hosts...), nil
}

// CloseCluster closes every remote that holds a connection.
func CloseCluster(c *cluster.Cluster) error {
	return closeHosts(c.Hosts())
}

func closeHosts(hosts []*cluster.Host) error {
	var errs []error
	for _, h := range hosts {
		if closer, ok := h.Remote.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", h.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
