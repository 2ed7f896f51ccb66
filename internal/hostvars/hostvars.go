// Package hostvars derives the per-host ceph-ansible variables written into
// the generated inventory.
package hostvars

import (
	"context"
	"fmt"
	"sort"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/remote"
)

// Variable names understood by ceph-ansible.
const (
	KeyDevices          = "devices"
	KeyMonitorInterface = "monitor_interface"
	KeyPublicNetwork    = "public_network"
	KeyOSDAutoDiscovery = "osd_auto_discovery"
)

// Vars are the inventory variables of one host.
type Vars map[string]any

// Keys returns the variable names in sorted order.
func (v Vars) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeviceLister discovers the scratch devices of a remote.
type DeviceLister func(ctx context.Context, r remote.Remote) ([]string, error)

// FactsGatherer inspects a remote for its interface and subnet.
type FactsGatherer func(ctx context.Context, r remote.Remote) (*remote.Facts, error)

// Resolver builds host records and resolves their variables against the
// task-wide overrides.
type Resolver struct {
	overrides map[string]any
	devices   DeviceLister
	facts     FactsGatherer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDeviceLister replaces scratch device discovery.
func WithDeviceLister(fn DeviceLister) Option {
	return func(r *Resolver) { r.devices = fn }
}

// WithFactsGatherer replaces host fact gathering.
func WithFactsGatherer(fn FactsGatherer) Option {
	return func(r *Resolver) { r.facts = fn }
}

// NewResolver returns a resolver for the task's global vars.
func NewResolver(overrides map[string]any, opts ...Option) *Resolver {
	r := &Resolver{
		overrides: overrides,
		devices:   remote.ScratchDevices,
		facts:     remote.GatherFacts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// autoDiscovery reports whether ceph-ansible picks OSD devices itself.
func (r *Resolver) autoDiscovery() bool {
	return config.Truthy(r.overrides[KeyOSDAutoDiscovery])
}

// Record snapshots a host. Facts already attached to the host are reused,
// otherwise they are gathered and attached. Devices are only discovered when
// the host runs OSDs and ceph-ansible is not discovering them itself.
func (r *Resolver) Record(ctx context.Context, h *cluster.Host) (*cluster.HostRecord, error) {
	if h.Facts == nil {
		facts, err := r.facts(ctx, h.Remote)
		if err != nil {
			return nil, fmt.Errorf("failed to gather facts for %s: %w", h.Name(), err)
		}
		h.Facts = facts
	}

	rec := &cluster.HostRecord{
		Hostname:  h.Name(),
		Interface: h.Facts.Interface,
		Subnet:    h.Facts.CIDR,
		Roles:     append([]cluster.Role(nil), h.Roles...),
	}

	if n := rec.OSDCount(); n > 0 && !r.autoDiscovery() {
		devs, err := r.devices(ctx, h.Remote)
		if err != nil {
			return nil, fmt.Errorf("failed to discover devices on %s: %w", h.Name(), err)
		}
		if len(devs) > n {
			devs = devs[:n]
		}
		rec.Devices = devs
	}
	return rec, nil
}

// Resolve computes the variables of a recorded host.
func (r *Resolver) Resolve(rec *cluster.HostRecord) Vars {
	return Resolve(rec, r.overrides)
}

// Resolve computes host variables from a record. Keys present in overrides
// are left to the global extra vars and not set per host.
func Resolve(rec *cluster.HostRecord, overrides map[string]any) Vars {
	vars := Vars{}
	if !config.Truthy(overrides[KeyOSDAutoDiscovery]) && rec.OSDCount() > 0 {
		devs := rec.Devices
		if devs == nil {
			devs = []string{}
		}
		vars[KeyDevices] = devs
	}
	if _, ok := overrides[KeyMonitorInterface]; !ok {
		vars[KeyMonitorInterface] = rec.Interface
	}
	if _, ok := overrides[KeyPublicNetwork]; !ok {
		vars[KeyPublicNetwork] = rec.Subnet
	}
	return vars
}
