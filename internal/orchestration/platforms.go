package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/platform/hcloud"
	"github.com/imamik/cephrig/internal/platform/s3"
	"github.com/imamik/cephrig/internal/platform/ssh"
	"github.com/imamik/cephrig/internal/provisioning/archive"
	"github.com/imamik/cephrig/internal/remote"
)

// SSHFactory returns a factory dialing targets with the configured key.
func SSHFactory(cfg config.SSHConfig, timeouts *config.Timeouts) (RemoteFactory, error) {
	if cfg.PrivateKeyPath == "" {
		return nil, errors.New("ssh private key path is required (ssh.private_key_path or CEPHRIG_SSH_KEY)")
	}
	key, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}

	return func(t config.Target) (remote.Remote, error) {
		host := t.Address
		if host == "" {
			host = t.Hostname
		}
		return ssh.NewClient(&ssh.Config{
			Name:        t.Hostname,
			Host:        host,
			Port:        cfg.Port,
			User:        cfg.User,
			PrivateKey:  key,
			DialTimeout: timeouts.SSHDial,
			MaxRetries:  timeouts.SSHMaxRetries,
			RetryDelay:  timeouts.SSHRetryDelay,
		})
	}, nil
}

// NewAddressResolver returns a Hetzner Cloud resolver, or nil when no token
// is configured.
func NewAddressResolver(cfg config.HCloudConfig) AddressResolver {
	if cfg.Token == "" {
		return nil
	}
	return hcloud.NewRealClient(cfg.Token)
}

// NewObjectStore returns the archive store, or nil when archiving is
// disabled.
func NewObjectStore(ctx context.Context, cfg config.ArchiveConfig) (archive.ObjectStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := s3.NewClient(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey,
		s3.WithPathStyle(cfg.PathStyle))
	if err != nil {
		return nil, err
	}
	return client, nil
}
