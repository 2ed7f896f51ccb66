package keygen

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerateRSAKeyPair(t *testing.T) {
	t.Parallel()

	keyPair, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)

	block, rest := pem.Decode(keyPair.PrivateKey)
	require.NotNil(t, block)
	assert.Empty(t, bytes.TrimSpace(rest))
	assert.Equal(t, "RSA PRIVATE KEY", block.Type)

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(keyPair.PublicKey), "ssh-rsa "))
	assert.True(t, strings.HasSuffix(string(keyPair.PublicKey), "\n"))

	parsed, _, _, _, err := ssh.ParseAuthorizedKey(keyPair.PublicKey)
	require.NoError(t, err)
	expected, err := ssh.NewPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, expected.Marshal(), parsed.Marshal(), "public key matches private key")

	// the ssh client accepts the private key
	_, err = ssh.ParsePrivateKey(keyPair.PrivateKey)
	require.NoError(t, err)
}

func TestGenerateRSAKeyPair_InvalidBits(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{0, -1} {
		_, err := GenerateRSAKeyPair(bits)
		assert.Error(t, err, "bits=%d", bits)
	}
}

func TestGenerateRSAKeyPair_Uniqueness(t *testing.T) {
	t.Parallel()

	a, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	b, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)

	assert.NotEqual(t, a.PrivateKey, b.PrivateKey)
	assert.NotEqual(t, a.PublicKey, b.PublicKey)
}

func TestWithComment(t *testing.T) {
	t.Parallel()

	keyPair, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	original := string(keyPair.PublicKey)

	commented := keyPair.WithComment("cephrig@ci")
	assert.True(t, strings.HasSuffix(string(commented.PublicKey), " cephrig@ci\n"))
	assert.Equal(t, original, string(keyPair.PublicKey), "original is untouched")

	_, comment, _, _, err := ssh.ParseAuthorizedKey(commented.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "cephrig@ci", comment)

	assert.Same(t, keyPair, keyPair.WithComment(""))
}

func TestWrite(t *testing.T) {
	t.Parallel()

	keyPair, err := GenerateRSAKeyPair(2048)
	require.NoError(t, err)

	t.Run("writes both halves", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "keys", "id_rsa")
		require.NoError(t, keyPair.Write(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		pub, err := os.ReadFile(path + ".pub")
		require.NoError(t, err)
		assert.Equal(t, keyPair.PublicKey, pub)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "id_rsa")
		require.NoError(t, os.WriteFile(path+".pub", []byte("existing"), 0o644))

		err := keyPair.Write(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "private key not written")
	})
}
