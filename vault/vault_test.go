package vault

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileVaultRoundTrip(t *testing.T) {
	v, err := NewFileVault(filepath.Join(t.TempDir(), "vault"))
	require.NoError(t, err)

	key := []byte("main-encryption-key-bytes-------")
	require.NoError(t, v.StoreEncrypted("alice", key, "correct horse"))

	assert.True(t, v.Exists("alice"))
	assert.Contains(t, v.ListKeys(), "alice")

	got, err := v.LoadDecrypted("alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	require.NoError(t, v.Delete("alice"))
	assert.False(t, v.Exists("alice"))
}

func TestFileVaultWrongPassphraseFails(t *testing.T) {
	v, err := NewFileVault(filepath.Join(t.TempDir(), "vault"))
	require.NoError(t, err)

	require.NoError(t, v.StoreEncrypted("bob", []byte("secret"), "pw1"))
	_, err = v.LoadDecrypted("bob", "pw2")
	assert.ErrorIs(t, err, ErrInvalidPassphrase)
}

func TestFileVaultMissingKey(t *testing.T) {
	v, err := NewFileVault(filepath.Join(t.TempDir(), "vault"))
	require.NoError(t, err)

	_, err = v.LoadDecrypted("missing", "pw")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryVaultRoundTrip(t *testing.T) {
	v := NewMemoryVault()
	key := []byte("another-key")
	require.NoError(t, v.StoreEncrypted("carol", key, "pw"))

	got, err := v.LoadDecrypted("carol", "pw")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	require.NoError(t, v.Delete("carol"))
	assert.False(t, v.Exists("carol"))
	_, err = v.LoadDecrypted("carol", "pw")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestVaultInvalidKeyID(t *testing.T) {
	v := NewMemoryVault()
	assert.ErrorIs(t, v.StoreEncrypted("", []byte("x"), "pw"), ErrInvalidKeyID)
	_, err := v.LoadDecrypted("", "pw")
	assert.ErrorIs(t, err, ErrInvalidKeyID)
}
