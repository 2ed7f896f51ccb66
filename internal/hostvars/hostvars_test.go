package hostvars_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/hostvars"
	"github.com/imamik/cephrig/internal/remote"
	cephtest "github.com/imamik/cephrig/internal/testing"
)

func staticDevices(devs ...string) hostvars.DeviceLister {
	return func(context.Context, remote.Remote) ([]string, error) {
		return devs, nil
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	osdHost := &cluster.HostRecord{
		Hostname:  "host-b",
		Interface: "eth0",
		Subnet:    "10.0.0.0/24",
		Roles:     []cluster.Role{"osd.0", "osd.1"},
		Devices:   []string{"/dev/sdb", "/dev/sdc"},
	}
	monHost := &cluster.HostRecord{
		Hostname:  "host-a",
		Interface: "eth0",
		Subnet:    "10.0.0.0/24",
		Roles:     []cluster.Role{"mon.a"},
	}

	tests := []struct {
		name      string
		rec       *cluster.HostRecord
		overrides map[string]any
		want      hostvars.Vars
	}{
		{
			name: "osd host gets devices",
			rec:  osdHost,
			want: hostvars.Vars{
				"devices":           []string{"/dev/sdb", "/dev/sdc"},
				"monitor_interface": "eth0",
				"public_network":    "10.0.0.0/24",
			},
		},
		{
			name: "mon host has no devices",
			rec:  monHost,
			want: hostvars.Vars{
				"monitor_interface": "eth0",
				"public_network":    "10.0.0.0/24",
			},
		},
		{
			name:      "auto discovery suppresses devices",
			rec:       osdHost,
			overrides: map[string]any{"osd_auto_discovery": true},
			want: hostvars.Vars{
				"monitor_interface": "eth0",
				"public_network":    "10.0.0.0/24",
			},
		},
		{
			name:      "global overrides suppress per-host keys",
			rec:       monHost,
			overrides: map[string]any{"monitor_interface": "bond0", "public_network": "192.168.0.0/16"},
			want:      hostvars.Vars{},
		},
		{
			name: "osd host without free devices gets an empty list",
			rec:  &cluster.HostRecord{Roles: []cluster.Role{"osd.0"}, Interface: "eth0", Subnet: "10.0.0.0/24"},
			want: hostvars.Vars{
				"devices":           []string{},
				"monitor_interface": "eth0",
				"public_network":    "10.0.0.0/24",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, hostvars.Resolve(tt.rec, tt.overrides))
		})
	}
}

func TestVarsKeys(t *testing.T) {
	t.Parallel()

	v := hostvars.Vars{"public_network": "x", "devices": nil, "monitor_interface": "y"}
	assert.Equal(t, []string{"devices", "monitor_interface", "public_network"}, v.Keys())
}

func TestRecordTruncatesDevices(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	h := cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.0", "osd.1"),
		"eth0", "10.0.0.0/24", remote.PackageTypeDeb)
	r := hostvars.NewResolver(nil, hostvars.WithDeviceLister(staticDevices("/dev/sdb", "/dev/sdc", "/dev/sdd")))

	rec, err := r.Record(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, "host-b", rec.Hostname)
	assert.Equal(t, []string{"/dev/sdb", "/dev/sdc"}, rec.Devices)
}

func TestRecordNeverPads(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	h := cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.0", "osd.1", "osd.2"),
		"eth0", "10.0.0.0/24", remote.PackageTypeDeb)
	r := hostvars.NewResolver(nil, hostvars.WithDeviceLister(staticDevices("/dev/sdb")))

	rec, err := r.Record(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dev/sdb"}, rec.Devices)
}

func TestRecordSkipsDiscovery(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	called := 0
	lister := func(context.Context, remote.Remote) ([]string, error) {
		called++
		return nil, nil
	}

	mon := cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "mon.a"),
		"eth0", "10.0.0.0/24", remote.PackageTypeDeb)
	_, err := hostvars.NewResolver(nil, hostvars.WithDeviceLister(lister)).Record(ctx, mon)
	require.NoError(t, err)

	osd := cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.0"),
		"eth0", "10.0.0.0/24", remote.PackageTypeDeb)
	_, err = hostvars.NewResolver(map[string]any{"osd_auto_discovery": true}, hostvars.WithDeviceLister(lister)).Record(ctx, osd)
	require.NoError(t, err)

	assert.Zero(t, called)
}

func TestRecordGathersMissingFacts(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	r := cephtest.NewFakeRemote("host-a").
		On("route get", "8.8.8.8 via 10.0.0.1 dev eth1 src 10.0.0.5\n").
		On("addr show eth1", "3: eth1 inet 10.0.0.5/24 brd 10.0.0.255 scope global eth1\n").
		On("os-release", "ID=ubuntu\n")
	h := cephtest.NewHost(r, "mon.a")

	rec, err := hostvars.NewResolver(nil).Record(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, "eth1", rec.Interface)
	assert.Equal(t, "10.0.0.0/24", rec.Subnet)
	require.NotNil(t, h.Facts)
	assert.Equal(t, remote.PackageTypeDeb, h.Facts.PackageType)
}

func TestRecordErrors(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	failing := func(context.Context, remote.Remote) ([]string, error) {
		return nil, errors.New("ls exploded")
	}
	h := cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.0"),
		"eth0", "10.0.0.0/24", remote.PackageTypeDeb)
	_, err := hostvars.NewResolver(nil, hostvars.WithDeviceLister(failing)).Record(ctx, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host-b")

	gatherFail := func(context.Context, remote.Remote) (*remote.Facts, error) {
		return nil, errors.New("no route")
	}
	_, err = hostvars.NewResolver(nil, hostvars.WithFactsGatherer(gatherFail)).
		Record(ctx, cephtest.NewHost(cephtest.NewFakeRemote("host-c"), "mon.a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route")
}
