package hcloud

import (
	"context"
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/util/retry"
)

// ErrNoAddress is returned for servers with neither a public IPv4 nor a
// private network address.
var ErrNoAddress = fmt.Errorf("server has no usable address")

// RealClient resolves server addresses using the Hetzner Cloud API.
type RealClient struct {
	client       *hcloud.Client
	maxRetries   int
	initialDelay time.Duration
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithRetry sets the retry budget for rate-limited lookups.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(c *RealClient) {
		c.maxRetries = maxRetries
		c.initialDelay = initialDelay
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:       hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("cephrig", "")),
		maxRetries:   5,
		initialDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ServerAddress returns the public IPv4 of the named server, falling back to
// its first private network address.
func (c *RealClient) ServerAddress(ctx context.Context, name string) (string, error) {
	var server *hcloud.Server
	err := retry.Do(ctx, func() error {
		var getErr error
		server, _, getErr = c.client.Server.Get(ctx, name)
		if getErr != nil && !isRetryable(getErr) {
			return retry.Fatal(getErr)
		}
		return getErr
	},
		retry.WithMaxRetries(c.maxRetries),
		retry.WithInitialDelay(c.initialDelay),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get server %s: %w", name, err)
	}
	if server == nil {
		return "", fmt.Errorf("server not found: %s", name)
	}

	if ip := server.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		return ip.String(), nil
	}
	for _, pn := range server.PrivateNet {
		if pn.IP != nil {
			return pn.IP.String(), nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNoAddress)
}

// ResolveTargets fills in the address of every target that has none.
func (c *RealClient) ResolveTargets(ctx context.Context, targets []config.Target) ([]config.Target, error) {
	out := make([]config.Target, len(targets))
	copy(out, targets)
	for i := range out {
		if out[i].Address != "" {
			continue
		}
		addr, err := c.ServerAddress(ctx, out[i].Hostname)
		if err != nil {
			return nil, err
		}
		out[i].Address = addr
	}
	return out, nil
}
