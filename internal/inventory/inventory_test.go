package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/hostvars"
	"github.com/imamik/cephrig/internal/inventory"
	"github.com/imamik/cephrig/internal/remote"
	cephtest "github.com/imamik/cephrig/internal/testing"
)

type deviceCounter struct {
	calls map[string]int
	devs  []string
}

func (d *deviceCounter) list(_ context.Context, r remote.Remote) ([]string, error) {
	d.calls[r.Name()]++
	return d.devs, nil
}

func host(name string, roles ...string) *cluster.Host {
	return cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote(name), roles...),
		"eth0", "10.0.0.0/24", remote.PackageTypeDeb)
}

func TestRenderTwoHostExample(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	devices := &deviceCounter{calls: map[string]int{}, devs: []string{"/dev/sdb"}}
	b := inventory.NewBuilder(hostvars.NewResolver(nil, hostvars.WithDeviceLister(devices.list)))

	inv, err := b.Build(ctx, cephtest.NewCluster(host("host-b", "osd.0"), host("host-a", "mon.a")))
	require.NoError(t, err)

	out, err := inv.Render()
	require.NoError(t, err)
	assert.Equal(t, "[mons]\n"+
		"host-a monitor_interface='eth0' public_network='10.0.0.0/24'\n"+
		"\n"+
		"[osds]\n"+
		"host-b devices='[\"/dev/sdb\"]' monitor_interface='eth0' public_network='10.0.0.0/24'", out)
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	render := func() string {
		devices := &deviceCounter{calls: map[string]int{}, devs: []string{"/dev/sdb", "/dev/sdc"}}
		b := inventory.NewBuilder(hostvars.NewResolver(map[string]any{"journal_size": 1024},
			hostvars.WithDeviceLister(devices.list)))
		inv, err := b.Build(ctx, cephtest.NewCluster(
			host("host-c", "client.0", "mds.a"),
			host("host-b", "osd.0", "osd.1"),
			host("host-a", "mon.a", "mon.b", "osd.2"),
		))
		require.NoError(t, err)
		out, err := inv.Render()
		require.NoError(t, err)
		return out
	}

	first := render()
	for range 5 {
		assert.Equal(t, first, render())
	}
}

func TestBuildMultiGroupHost(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	devices := &deviceCounter{calls: map[string]int{}, devs: []string{"/dev/sdb", "/dev/sdc", "/dev/sdd"}}
	b := inventory.NewBuilder(hostvars.NewResolver(nil, hostvars.WithDeviceLister(devices.list)))

	inv, err := b.Build(ctx, cephtest.NewCluster(host("host-a", "mon.a", "mon.b", "osd.0", "osd.1")))
	require.NoError(t, err)

	assert.Equal(t, []string{"mons", "osds"}, inv.Groups())
	assert.Equal(t, []string{"host-a"}, inv.Hosts("mons"))

	vars, ok := inv.Vars("osds", "host-a")
	require.True(t, ok)
	assert.Equal(t, []string{"/dev/sdb", "/dev/sdc"}, vars["devices"])

	// the host record is built once even though the host joins two groups
	assert.Equal(t, 1, devices.calls["host-a"])
}

func TestRenderOverridesAndBareHosts(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	overrides := map[string]any{
		"osd_auto_discovery": true,
		"monitor_interface":  "bond0",
		"public_network":     "192.168.0.0/16",
	}
	b := inventory.NewBuilder(hostvars.NewResolver(overrides))

	inv, err := b.Build(ctx, cephtest.NewCluster(host("host-a", "mon.a", "osd.0"), host("host-b", "client.0")))
	require.NoError(t, err)

	out, err := inv.Render()
	require.NoError(t, err)
	assert.Equal(t, "[clients]\nhost-b\n\n[mons]\nhost-a\n\n[osds]\nhost-a", out)
}

func TestAddFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	inv := inventory.New()
	assert.True(t, inv.Add("mons", "host-a", hostvars.Vars{"monitor_interface": "eth0"}))
	assert.False(t, inv.Add("mons", "host-a", hostvars.Vars{"monitor_interface": "eth1"}))

	vars, _ := inv.Vars("mons", "host-a")
	assert.Equal(t, "eth0", vars["monitor_interface"])
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	out, err := inventory.New().Render()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderHTMLCharactersUnescaped(t *testing.T) {
	t.Parallel()

	inv := inventory.New()
	inv.Add("mons", "host-a", hostvars.Vars{"ceph_conf_overrides": "a<b&c"})

	out, err := inv.Render()
	require.NoError(t, err)
	assert.Equal(t, "[mons]\nhost-a ceph_conf_overrides='a<b&c'", out)
}
