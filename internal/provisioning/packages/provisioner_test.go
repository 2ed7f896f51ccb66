package packages

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/packaging"
	"github.com/imamik/cephrig/internal/provisioning/provisioningtest"
	"github.com/imamik/cephrig/internal/remote"
	cephtest "github.com/imamik/cephrig/internal/testing"
)

type staticResolver struct{}

func (staticResolver) Resolve(context.Context, string, remote.Remote) (*packaging.Builder, error) {
	return &packaging.Builder{
		BaseURL:  "https://download.ceph.com/debian-jewel",
		Version:  "10.2.11-1xenial",
		Codename: "xenial",
		Arch:     "amd64",
	}, nil
}

type opRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func (r *opRecorder) hook(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		r.ops[op]++
	}
}

func setup(t *testing.T) (*config.Config, *cephtest.FakeRemote, *cephtest.FakeRemote) {
	t.Helper()
	cfg := cephtest.NewConfigBuilder().
		WithTarget("host-a", "mon.a").
		WithTarget("host-b", "osd.0").
		Build()
	return cfg, cephtest.NewFakeRemote("host-a"), cephtest.NewFakeRemote("host-b")
}

func TestNewProvisioner_UnknownOperation(t *testing.T) {
	t.Parallel()
	_, err := NewProvisioner(nil, "reinstall")
	assert.Error(t, err)
}

func TestProvision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op    string
		match string
	}{
		{op: packaging.OpInstall, match: " install ceph=10.2.11-1xenial"},
		{op: packaging.OpUpgrade, match: " install ceph=10.2.11-1xenial"},
		{op: packaging.OpRemove, match: " autoremove"},
		{op: packaging.OpRemoveSources, match: "sudo rm -f /etc/apt/sources.list.d/ceph.list"},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			t.Parallel()
			cfg, a, b := setup(t)
			cfg.Install.Packages = []string{"ceph"}
			rec := &opRecorder{ops: map[string]int{}}
			inst := packaging.NewInstaller(cfg.Install, staticResolver{}, packaging.WithOperationHook(rec.hook))

			p, err := NewProvisioner(inst, tt.op)
			require.NoError(t, err)
			assert.Equal(t, "packages-"+tt.op, p.Name())

			ctx, _ := provisioningtest.NewContext(cephtest.TestContext(t), cfg,
				cephtest.NewCluster(cephtest.NewHost(a, "mon.a"), cephtest.NewHost(b, "osd.0")))
			require.NoError(t, p.Provision(ctx))

			assert.Equal(t, 1, a.Count(tt.match))
			assert.Equal(t, 1, b.Count(tt.match))
			assert.Equal(t, 2, rec.ops[tt.op])
		})
	}
}

func TestProvision_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	cfg, a, b := setup(t)
	a.OnError("echo deb", errors.New("connection reset"))

	inst := packaging.NewInstaller(cfg.Install, staticResolver{})
	p, err := NewProvisioner(inst, packaging.OpInstall)
	require.NoError(t, err)

	ctx, _ := provisioningtest.NewContext(cephtest.TestContext(t), cfg,
		cephtest.NewCluster(cephtest.NewHost(b, "osd.0"), cephtest.NewHost(a, "mon.a")))
	err = p.Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "package install failed on host-a")
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, b.Commands())
}
