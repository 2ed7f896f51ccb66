package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors that would only surface
// halfway through a run.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	if err := c.validateTargets(); err != nil {
		return fmt.Errorf("target validation failed: %w", err)
	}
	if err := c.validatePlaybook(); err != nil {
		return fmt.Errorf("playbook validation failed: %w", err)
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("ssh port %d is out of range", c.SSH.Port)
	}
	if c.Archive.Enabled() {
		if c.Archive.Endpoint == "" {
			return fmt.Errorf("archive endpoint is required when a bucket is set")
		}
		if c.Archive.Region == "" {
			return fmt.Errorf("archive region is required when a bucket is set")
		}
	}
	return nil
}

func (c *Config) validateTargets() error {
	seenHosts := make(map[string]bool, len(c.Targets))
	seenRoles := make(map[string]string)

	for i, t := range c.Targets {
		if t.Hostname == "" {
			return fmt.Errorf("target %d: hostname is required", i)
		}
		if seenHosts[t.Hostname] {
			return fmt.Errorf("duplicate target hostname %q", t.Hostname)
		}
		seenHosts[t.Hostname] = true

		for _, role := range t.Roles {
			if strings.TrimSpace(role) == "" {
				return fmt.Errorf("target %s: empty role", t.Hostname)
			}
			if owner, ok := seenRoles[role]; ok {
				return fmt.Errorf("role %s assigned to both %s and %s", role, owner, t.Hostname)
			}
			seenRoles[role] = t.Hostname
		}
	}
	return nil
}

func (c *Config) validatePlaybook() error {
	for i, play := range c.CephAnsible.Playbook {
		if play.Hosts == "" {
			return fmt.Errorf("play %d: hosts is required", i)
		}
		if len(play.Roles) == 0 {
			return fmt.Errorf("play %d (%s): at least one role is required", i, play.Hosts)
		}
	}
	for group := range c.CephAnsible.GroupVars {
		if group == "" || strings.ContainsAny(group, "/ ") {
			return fmt.Errorf("invalid group_vars name %q", group)
		}
	}
	return nil
}
