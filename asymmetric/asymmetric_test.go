package asymmetric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	m, err := KeyGen(nil)
	require.NoError(t, err)

	message := []byte("revision content")
	sig, err := m.SignDetached(message)
	require.NoError(t, err)

	assert.True(t, VerifyDetached(m.PublicKey(), message, sig))

	tampered := append([]byte{}, message...)
	tampered[0] ^= 0xFF
	assert.False(t, VerifyDetached(m.PublicKey(), tampered, sig))
}

func TestEncryptSignDecryptVerifyRoundTrip(t *testing.T) {
	sender, err := KeyGen(nil)
	require.NoError(t, err)
	recipient, err := KeyGen(nil)
	require.NoError(t, err)

	key := []byte("a 32-byte collection key!!!!!!!")
	wrapped, err := sender.EncryptSign(recipient.PublicKey(), key)
	require.NoError(t, err)

	recovered, err := recipient.DecryptVerify(sender.PublicKey(), wrapped)
	require.NoError(t, err)
	assert.Equal(t, key, recovered)
}

func TestDecryptVerifyWrongRecipientFails(t *testing.T) {
	sender, err := KeyGen(nil)
	require.NoError(t, err)
	recipient, err := KeyGen(nil)
	require.NoError(t, err)
	other, err := KeyGen(nil)
	require.NoError(t, err)

	wrapped, err := sender.EncryptSign(recipient.PublicKey(), []byte("secret"))
	require.NoError(t, err)

	_, err = other.DecryptVerify(sender.PublicKey(), wrapped)
	assert.Error(t, err)
}

func TestFromPrivateKeyReconstitutesPublicKey(t *testing.T) {
	m, err := KeyGen(nil)
	require.NoError(t, err)

	reconstituted, err := FromPrivateKey(m.PrivateKey())
	require.NoError(t, err)
	assert.Equal(t, m.PublicKey(), reconstituted.PublicKey())
	assert.Equal(t, m.ID(), reconstituted.ID())
}

func TestKeyGenDeterministicFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}

	m1, err := KeyGen(seed)
	require.NoError(t, err)
	m2, err := KeyGen(seed)
	require.NoError(t, err)
	assert.Equal(t, m1.PublicKey(), m2.PublicKey())
}
