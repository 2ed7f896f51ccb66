package cluster

import (
	"fmt"
	"sort"

	"github.com/imamik/cephrig/internal/remote"
)

// Host is one machine of the cluster.
type Host struct {
	Remote remote.Remote
	Roles  []Role

	// Facts are gathered once per run before the inventory is built.
	Facts *remote.Facts
}

// Name returns the hostname of the machine.
func (h *Host) Name() string {
	return h.Remote.Name()
}

// HasRole reports whether any role of the host satisfies pred.
func (h *Host) HasRole(pred func(Role) bool) bool {
	for _, r := range h.Roles {
		if pred(r) {
			return true
		}
	}
	return false
}

// Cluster is the set of hosts taking part in a run, ordered by hostname.
type Cluster struct {
	hosts []*Host
}

// New returns a cluster of hosts sorted by hostname.
func New(hosts ...*Host) *Cluster {
	sorted := append([]*Host(nil), hosts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	return &Cluster{hosts: sorted}
}

// Hosts returns the hosts in hostname order.
func (c *Cluster) Hosts() []*Host {
	return append([]*Host(nil), c.hosts...)
}

// Len returns the number of hosts.
func (c *Cluster) Len() int {
	return len(c.hosts)
}

// Only returns the hosts holding at least one role that satisfies pred.
func (c *Cluster) Only(pred func(Role) bool) *Cluster {
	var out []*Host
	for _, h := range c.hosts {
		if h.HasRole(pred) {
			out = append(out, h)
		}
	}
	return &Cluster{hosts: out}
}

// FirstRole returns the lexicographically first role of type t and the host
// holding it.
func (c *Cluster) FirstRole(t string) (Role, *Host, error) {
	var (
		first Role
		owner *Host
	)
	for _, h := range c.hosts {
		for _, r := range h.Roles {
			if r.Type() != t {
				continue
			}
			if owner == nil || r < first {
				first, owner = r, h
			}
		}
	}
	if owner == nil {
		return "", nil, fmt.Errorf("no host holds a %s role", t)
	}
	return first, owner, nil
}

// FirstMon returns the host holding the first monitor role. It drives
// ceph-ansible and answers health queries.
func (c *Cluster) FirstMon() (*Host, error) {
	_, h, err := c.FirstRole("mon")
	return h, err
}
