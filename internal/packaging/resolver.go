package packaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/remote"
)

// Builder locates the packages of one project build.
type Builder struct {
	BaseURL  string
	Version  string
	Codename string
	Arch     string
}

// Resolver looks up where the packages of project come from for r.
type Resolver interface {
	Resolve(ctx context.Context, project string, r remote.Remote) (*Builder, error)
}

// ErrNoVersion is returned when no package version is configured.
var ErrNoVersion = errors.New("package version is required")

// ConfigResolver resolves builders from the repository configuration,
// asking the remote for its codename and architecture when they are not
// configured.
type ConfigResolver struct {
	repo   config.RepositoryConfig
	flavor string
}

// NewConfigResolver returns a resolver for install.
func NewConfigResolver(install config.InstallConfig) *ConfigResolver {
	return &ConfigResolver{repo: install.Repository, flavor: install.ResolveFlavor()}
}

// Resolve implements Resolver.
func (c *ConfigResolver) Resolve(ctx context.Context, project string, r remote.Remote) (*Builder, error) {
	if c.repo.Version == "" {
		return nil, ErrNoVersion
	}
	if c.repo.BaseURL == "" {
		return nil, errors.New("repository base_url is required")
	}

	b := &Builder{Version: c.repo.Version, Codename: c.repo.Codename, Arch: c.repo.Arch}
	if b.Codename == "" {
		out, err := remote.Exec(ctx, r, "lsb_release", "-sc")
		if err != nil {
			return nil, fmt.Errorf("failed to detect codename: %w", err)
		}
		b.Codename = strings.TrimSpace(out)
	}
	if b.Arch == "" {
		out, err := remote.Exec(ctx, r, "dpkg", "--print-architecture")
		if err != nil {
			return nil, fmt.Errorf("failed to detect architecture: %w", err)
		}
		b.Arch = strings.TrimSpace(out)
	}

	b.BaseURL = strings.NewReplacer(
		"{project}", project,
		"{flavor}", c.flavor,
		"{codename}", b.Codename,
		"{arch}", b.Arch,
	).Replace(c.repo.BaseURL)
	return b, nil
}
