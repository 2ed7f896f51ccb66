package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/cluster"
	cephtest "github.com/imamik/cephrig/internal/testing"
)

func TestClusterOrdering(t *testing.T) {
	t.Parallel()

	c := cephtest.NewCluster(
		cephtest.NewHost(cephtest.NewFakeRemote("host-c"), "client.0"),
		cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "mon.b", "osd.0"),
		cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "mon.a"),
	)

	require.Equal(t, 3, c.Len())
	var names []string
	for _, h := range c.Hosts() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"host-a", "host-b", "host-c"}, names)
}

func TestClusterOnly(t *testing.T) {
	t.Parallel()

	c := cephtest.NewCluster(
		cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "mon.a", "osd.0"),
		cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.1"),
		cephtest.NewHost(cephtest.NewFakeRemote("host-c"), "client.0"),
	)

	osds := c.Only(cluster.HasPrefix("osd"))
	assert.Equal(t, 2, osds.Len())
	assert.Equal(t, 1, c.Only(cluster.IsType("client")).Len())
	assert.Zero(t, c.Only(cluster.IsType("mds")).Len())
}

func TestFirstMon(t *testing.T) {
	t.Parallel()

	c := cephtest.NewCluster(
		cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "mon.b", "osd.0"),
		cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "mon.a"),
	)

	h, err := c.FirstMon()
	require.NoError(t, err)
	assert.Equal(t, "host-b", h.Name())

	role, owner, err := c.FirstRole("osd")
	require.NoError(t, err)
	assert.Equal(t, cluster.Role("osd.0"), role)
	assert.Equal(t, "host-a", owner.Name())

	_, err = cephtest.NewCluster(cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "osd.0")).FirstMon()
	assert.Error(t, err)
}

func TestHostRecordOSDCount(t *testing.T) {
	t.Parallel()

	rec := &cluster.HostRecord{Roles: []cluster.Role{"osd.0", "osd.1", "mon.a"}}
	assert.Equal(t, 2, rec.OSDCount())
}
