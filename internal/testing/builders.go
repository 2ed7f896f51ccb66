package testing

import (
	"github.com/imamik/cephrig/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations.
type ConfigBuilder struct {
	cfg *config.Config
}

// NewConfigBuilder creates a builder with a single monitor target.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: &config.Config{Name: "test-run"},
	}
}

// WithTarget adds a target holding roles.
func (b *ConfigBuilder) WithTarget(hostname string, roles ...string) *ConfigBuilder {
	b.cfg.Targets = append(b.cfg.Targets, config.Target{Hostname: hostname, Roles: roles})
	return b
}

// WithVars sets ceph-ansible extra vars.
func (b *ConfigBuilder) WithVars(vars map[string]any) *ConfigBuilder {
	b.cfg.CephAnsible.Vars = vars
	return b
}

// WithRHBuild selects prebuilt mode.
func (b *ConfigBuilder) WithRHBuild(enabled bool) *ConfigBuilder {
	b.cfg.CephAnsible.RHBuild = enabled
	return b
}

// WithWaitForHealth sets the health wait switch.
func (b *ConfigBuilder) WithWaitForHealth(enabled bool) *ConfigBuilder {
	b.cfg.CephAnsible.WaitForHealth = &enabled
	return b
}

// WithGroupVars sets group_vars files.
func (b *ConfigBuilder) WithGroupVars(gv map[string]map[string]any) *ConfigBuilder {
	b.cfg.CephAnsible.GroupVars = gv
	return b
}

// WithRepository sets the package repository.
func (b *ConfigBuilder) WithRepository(baseURL, version string) *ConfigBuilder {
	b.cfg.Install.Repository.BaseURL = baseURL
	b.cfg.Install.Repository.Version = version
	return b
}

// Build applies defaults and returns the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	if len(b.cfg.Targets) == 0 {
		b.cfg.Targets = []config.Target{{Hostname: "host-a", Roles: []string{"mon.a"}}}
	}
	b.cfg.ApplyDefaults()
	return b.cfg
}
