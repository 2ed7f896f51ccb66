package facts

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/provisioning/provisioningtest"
	"github.com/imamik/cephrig/internal/remote"
	cephtest "github.com/imamik/cephrig/internal/testing"
)

func TestProvisionerName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "facts", NewProvisioner(nil).Name())
}

func TestProvision(t *testing.T) {
	t.Parallel()

	known := cephtest.WithFacts(cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "mon.a"),
		"ens3", "192.168.0.0/24", remote.PackageTypeRPM)
	fresh := cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.0")
	c := cephtest.NewCluster(known, fresh)

	var calls atomic.Int32
	gather := func(_ context.Context, r remote.Remote) (*remote.Facts, error) {
		calls.Add(1)
		assert.Equal(t, "host-b", r.Name())
		return &remote.Facts{Interface: "eth0", CIDR: "10.0.0.0/24", PackageType: remote.PackageTypeDeb}, nil
	}

	ctx, observer := provisioningtest.NewContext(cephtest.TestContext(t), cephtest.NewConfigBuilder().Build(), c)
	require.NoError(t, NewProvisioner(gather).Provision(ctx))

	assert.Equal(t, int32(1), calls.Load())
	require.NotNil(t, fresh.Facts)
	assert.Equal(t, "eth0", fresh.Facts.Interface)
	assert.Equal(t, "ens3", known.Facts.Interface)
	assert.Contains(t, observer.Messages(), "[facts] host-b: interface=eth0 subnet=10.0.0.0/24 packages=deb")
}

func TestProvision_GatherFailure(t *testing.T) {
	t.Parallel()

	c := cephtest.NewCluster(
		cephtest.NewHost(cephtest.NewFakeRemote("host-a"), "mon.a"),
		cephtest.NewHost(cephtest.NewFakeRemote("host-b"), "osd.0"),
	)
	boom := errors.New("no route")
	gather := func(_ context.Context, r remote.Remote) (*remote.Facts, error) {
		if r.Name() == "host-b" {
			return nil, boom
		}
		return &remote.Facts{Interface: "eth0", CIDR: "10.0.0.0/24", PackageType: remote.PackageTypeDeb}, nil
	}

	ctx, _ := provisioningtest.NewContext(cephtest.TestContext(t), cephtest.NewConfigBuilder().Build(), c)
	err := NewProvisioner(gather).Provision(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "host-b")
}

func TestProvision_DefaultGatherer(t *testing.T) {
	t.Parallel()

	r := cephtest.NewFakeRemote("host-a").
		On("ip -o -4 route get", "8.8.8.8 via 10.0.0.1 dev eth0 src 10.0.0.5 uid 0").
		On("addr show eth0", "2: eth0    inet 10.0.0.5/24 brd 10.0.0.255 scope global eth0").
		On("os-release", "ID=ubuntu\n")
	h := cephtest.NewHost(r, "mon.a")

	ctx, _ := provisioningtest.NewContext(cephtest.TestContext(t), cephtest.NewConfigBuilder().Build(), cephtest.NewCluster(h))
	require.NoError(t, NewProvisioner(nil).Provision(ctx))

	require.NotNil(t, h.Facts)
	assert.Equal(t, remote.PackageTypeDeb, h.Facts.PackageType)
}
