package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenUIDAlphabetAndLength(t *testing.T) {
	uid, err := GenUID()
	require.NoError(t, err)
	assert.Len(t, uid, 32)
	assert.NotContains(t, uid, "-")
	assert.NotContains(t, uid, "_")
	for _, c := range uid {
		assert.True(t, strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789", c))
	}
}

func TestNarrowUIDAlphabet(t *testing.T) {
	assert.Equal(t, "aaaa", NarrowUIDAlphabet("----"))
	assert.Equal(t, "abab", NarrowUIDAlphabet("-_-_"))
	assert.Equal(t, "AZaz09", NarrowUIDAlphabet("AZaz09"))
}

func TestB64RoundTrip(t *testing.T) {
	original := []byte{0, 1, 2, 255, 254, 253}
	encoded := EncodeB64(original)
	assert.NotContains(t, encoded, "=")
	decoded, err := DecodeB64(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
