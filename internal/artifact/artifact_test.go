package artifact_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/cephrig/internal/artifact"
	cephtest "github.com/imamik/cephrig/internal/testing"
)

func TestWriteTemp(t *testing.T) {
	t.Parallel()

	a, err := artifact.WriteTemp(artifact.InventoryPrefix, []byte("[mons]\nhost-a"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Remove() })

	assert.True(t, strings.HasPrefix(a.Name(), artifact.InventoryPrefix))
	data, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "[mons]\nhost-a", string(data))
}

func TestUpload(t *testing.T) {
	t.Parallel()
	ctx := cephtest.TestContext(t)

	a := &artifact.Artifact{Path: "/tmp/ceph_ansible_playbook_1", Content: []byte("---\n")}
	r := cephtest.NewFakeRemote("host-a")

	require.NoError(t, a.Upload(ctx, r, "/tmp/site.yml"))
	written, ok := r.Written("/tmp/site.yml")
	require.True(t, ok)
	assert.Equal(t, "---\n", written)
}

func TestSetCleanup(t *testing.T) {
	t.Parallel()

	var set artifact.Set
	for _, prefix := range []string{artifact.InventoryPrefix, artifact.PlaybookPrefix} {
		a, err := artifact.WriteTemp(prefix, []byte("x"))
		require.NoError(t, err)
		set.Add(a)
	}
	require.Len(t, set.All(), 2)

	require.NoError(t, set.Cleanup())
	for _, a := range set.All() {
		_, err := os.Stat(a.Path)
		assert.True(t, os.IsNotExist(err))
	}

	// removing twice is fine
	assert.NoError(t, set.Cleanup())
}
