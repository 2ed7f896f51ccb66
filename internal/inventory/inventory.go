// Package inventory builds the ceph-ansible inventory from the roles of a
// cluster and renders it as an INI document.
//
// Rendering is deterministic: groups, hosts and variables are emitted in
// sorted order so identical clusters always produce identical bytes.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/hostvars"
)

// Inventory maps group names to the hosts of the group and their variables.
type Inventory struct {
	groups map[string]map[string]hostvars.Vars
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{groups: make(map[string]map[string]hostvars.Vars)}
}

// Add places host into group. The first addition of a host to a group wins.
func (inv *Inventory) Add(group, host string, vars hostvars.Vars) bool {
	hosts, ok := inv.groups[group]
	if !ok {
		hosts = make(map[string]hostvars.Vars)
		inv.groups[group] = hosts
	}
	if _, exists := hosts[host]; exists {
		return false
	}
	hosts[host] = vars
	return true
}

// Groups returns the non-empty group names in sorted order.
func (inv *Inventory) Groups() []string {
	groups := make([]string, 0, len(inv.groups))
	for g, hosts := range inv.groups {
		if len(hosts) > 0 {
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	return groups
}

// Hosts returns the hostnames of group in sorted order.
func (inv *Inventory) Hosts(group string) []string {
	hosts := make([]string, 0, len(inv.groups[group]))
	for h := range inv.groups[group] {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Vars returns the variables of host within group.
func (inv *Inventory) Vars(group, host string) (hostvars.Vars, bool) {
	vars, ok := inv.groups[group][host]
	return vars, ok
}

// Render returns the INI representation of the inventory.
func (inv *Inventory) Render() (string, error) {
	var b strings.Builder
	for _, group := range inv.Groups() {
		fmt.Fprintf(&b, "[%s]\n", group)
		for _, host := range inv.Hosts(group) {
			line, err := hostLine(host, inv.groups[group][host])
			if err != nil {
				return "", fmt.Errorf("group %s: %w", group, err)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

func hostLine(host string, vars hostvars.Vars) (string, error) {
	if len(vars) == 0 {
		return host, nil
	}
	parts := []string{host}
	for _, key := range vars.Keys() {
		value, err := encodeValue(vars[key])
		if err != nil {
			return "", fmt.Errorf("host %s variable %s: %w", host, key, err)
		}
		parts = append(parts, fmt.Sprintf("%s='%s'", key, value))
	}
	return strings.Join(parts, " "), nil
}

// encodeValue JSON-encodes v and strips surrounding double quotes, so strings
// render bare and lists render as JSON arrays.
func encodeValue(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimRight(buf.String(), "\n"), `"`), nil
}

// Builder assembles inventories from clusters.
type Builder struct {
	resolver *hostvars.Resolver
}

// NewBuilder returns a builder resolving host variables with resolver.
func NewBuilder(resolver *hostvars.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build groups the hosts of c by role prefix. Each host is recorded once and
// its variables are resolved once per group it joins.
func (b *Builder) Build(ctx context.Context, c *cluster.Cluster) (*Inventory, error) {
	inv := New()
	records := make(map[string]*cluster.HostRecord)

	for _, group := range cluster.Groups() {
		prefix, _ := cluster.PrefixForGroup(group)
		for _, h := range c.Only(cluster.HasPrefix(prefix)).Hosts() {
			if _, ok := inv.Vars(group, h.Name()); ok {
				continue
			}
			rec, ok := records[h.Name()]
			if !ok {
				var err error
				rec, err = b.resolver.Record(ctx, h)
				if err != nil {
					return nil, err
				}
				records[h.Name()] = rec
			}
			inv.Add(group, h.Name(), b.resolver.Resolve(rec))
		}
	}
	return inv, nil
}
