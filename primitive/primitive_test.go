package primitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAEADRoundTrip(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	ciphertext, err := Encrypt(key, []byte("plaintext"), []byte("ad"))
	require.NoError(t, err)

	plaintext, err := Decrypt(key, ciphertext, []byte("ad"))
	require.NoError(t, err)
	assert.Equal(t, "plaintext", string(plaintext))
}

func TestAEADWrongAdditionalData(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	ciphertext, err := Encrypt(key, []byte("plaintext"), []byte("ad1"))
	require.NoError(t, err)

	_, err = Decrypt(key, ciphertext, []byte("ad2"))
	assert.Error(t, err)
}

func TestDetachedAEADRoundTrip(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	mac, nonceCiphertext, err := EncryptDetached(key, []byte("payload"), nil)
	require.NoError(t, err)

	plaintext, err := DecryptDetached(key, nonceCiphertext, mac, nil)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plaintext))
}

func TestMacDeterministic(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	m1, err := Mac(key, []byte("a"), []byte("b"))
	require.NoError(t, err)
	m2, err := Mac(key, []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Len(t, m1, MacSize)
}

func TestDeriveFromKeyDistinctSubkeys(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)
	var context [8]byte
	copy(context[:], "Main    ")

	k1, err := DeriveFromKey(key, context, 1)
	require.NoError(t, err)
	k2, err := DeriveFromKey(key, context, 2)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestEd25519SignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateEd25519(nil)
	require.NoError(t, err)

	message := []byte("sign me")
	sig := SignDetached(priv, message)
	assert.True(t, VerifyDetached(pub, message, sig))

	tampered := append([]byte{}, message...)
	tampered[0] ^= 0xFF
	assert.False(t, VerifyDetached(pub, tampered, sig))

	tamperedSig := append([]byte{}, sig...)
	tamperedSig[0] ^= 0xFF
	assert.False(t, VerifyDetached(pub, message, tamperedSig))
}

func TestEd25519DeterministicFromSeed(t *testing.T) {
	seed, err := RandomBytes(Ed25519SeedSize)
	require.NoError(t, err)

	pub1, priv1, err := GenerateEd25519(seed)
	require.NoError(t, err)
	pub2, priv2, err := GenerateEd25519(seed)
	require.NoError(t, err)

	assert.Equal(t, pub1, pub2)
	assert.Equal(t, priv1, priv2)
}

func TestBoxSealOpenRoundTrip(t *testing.T) {
	senderPub, senderPriv, err := GenerateEd25519(nil)
	require.NoError(t, err)
	recipientPub, recipientPriv, err := GenerateEd25519(nil)
	require.NoError(t, err)

	message := []byte("wrapped key bytes")
	sealed, err := BoxSeal(senderPriv, recipientPub, message)
	require.NoError(t, err)

	opened, err := BoxOpen(recipientPriv, senderPub, sealed)
	require.NoError(t, err)
	assert.Equal(t, message, opened)
}

func TestBoxOpenWrongRecipientFails(t *testing.T) {
	senderPub, senderPriv, err := GenerateEd25519(nil)
	require.NoError(t, err)
	recipientPub, _, err := GenerateEd25519(nil)
	require.NoError(t, err)
	_, wrongPriv, err := GenerateEd25519(nil)
	require.NoError(t, err)

	sealed, err := BoxSeal(senderPriv, recipientPub, []byte("secret"))
	require.NoError(t, err)

	_, err = BoxOpen(wrongPriv, senderPub, sealed)
	assert.Error(t, err)
}

func TestDeriveArgon2idDeterministic(t *testing.T) {
	salt, err := RandomBytes(SaltSize)
	require.NoError(t, err)

	k1 := DeriveArgon2id([]byte("password"), salt, Argon2Interactive, KeySize)
	k2 := DeriveArgon2id([]byte("password"), salt, Argon2Interactive, KeySize)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, KeySize)
}
