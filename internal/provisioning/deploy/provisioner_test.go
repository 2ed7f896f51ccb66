package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/artifact"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/provisioning/provisioningtest"
	"github.com/imamik/cephrig/internal/remote"
	cephtest "github.com/imamik/cephrig/internal/testing"
	"github.com/imamik/cephrig/internal/topology"
)

type fixture struct {
	installer *cephtest.FakeRemote
	client    *cephtest.FakeRemote
	ctx       *provisioning.Context
	cfg       *config.Config
}

func newFixture(t *testing.T, rhbuild bool) *fixture {
	t.Helper()
	installer := cephtest.NewFakeRemote("host-a")
	client := cephtest.NewFakeRemote("host-c")
	c := cephtest.NewCluster(
		cephtest.WithFacts(cephtest.NewHost(installer, "mon.a", "osd.0"), "eth0", "10.0.0.0/24", remote.PackageTypeDeb),
		cephtest.WithFacts(cephtest.NewHost(client, "client.0"), "eth0", "10.0.0.0/24", remote.PackageTypeDeb),
	)
	cfg := cephtest.NewConfigBuilder().
		WithTarget("host-a", "mon.a", "osd.0").
		WithTarget("host-c", "client.0").
		WithRHBuild(rhbuild).
		Build()

	ctx, _ := provisioningtest.NewContext(cephtest.TestContext(t), cfg, c)
	ctx.State.InventoryArtifact = &artifact.Artifact{Path: "/tmp/teuth_ansible_hosts_1", Content: []byte("[mons]\nhost-a")}
	ctx.State.PlaybookArtifact = &artifact.Artifact{Path: "/tmp/ceph_ansible_playbook_1", Content: []byte("---\n")}
	return &fixture{installer: installer, client: client, ctx: ctx, cfg: cfg}
}

func (f *fixture) provisioner() *Provisioner {
	return NewProvisioner(topology.NewRunner(f.cfg.CephAnsible))
}

func TestProvisionerName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "execute", NewProvisioner(nil).Name())
}

func TestProvision_Prebuilt(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.installer.
		On("ansible-playbook", "PLAY RECAP\nhost-a : ok=10 failed=0\n").
		On("sudo cat /etc/ceph/ceph.conf", "[global]\n").
		On("sudo cat /etc/ceph/ceph.client.admin.keyring", "[client.admin]\n")

	require.NoError(t, f.provisioner().Provision(f.ctx))

	require.NotNil(t, f.ctx.State.Execution)
	assert.Equal(t, "host-a", f.ctx.State.Execution.Installer.Name())
	assert.Equal(t, topology.ModePrebuilt, f.ctx.State.Execution.Mode)
	assert.Contains(t, f.ctx.State.PlaybookOutput, "PLAY RECAP")

	inv, ok := f.installer.Written(topology.PrebuiltInventory)
	require.True(t, ok)
	assert.Equal(t, "[mons]\nhost-a", inv)

	conf, ok := f.client.Written(topology.ClientConfPath)
	require.True(t, ok)
	assert.Equal(t, "[global]\n", conf)
}

func TestProvision_SourceSkipsClients(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	require.NoError(t, f.provisioner().Provision(f.ctx))

	assert.Equal(t, topology.ModeSource, f.ctx.State.Execution.Mode)
	assert.Positive(t, f.installer.Count("git clone"))
	assert.Empty(t, f.client.Commands())
}

func TestProvision_PlaybookFailureKeepsOutput(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.installer.OnExit("ansible-playbook", "fatal: [host-a]\n"+topology.FailureMarker+"\n", 2)

	err := f.provisioner().Provision(f.ctx)

	var orchErr *topology.OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	assert.Contains(t, f.ctx.State.PlaybookOutput, topology.FailureMarker)
	assert.Empty(t, f.client.Commands())
}

func TestProvision_RequiresDocuments(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.ctx.State.PlaybookArtifact = nil

	err := f.provisioner().Provision(f.ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be generated")
	assert.Empty(t, f.installer.Commands())
}
