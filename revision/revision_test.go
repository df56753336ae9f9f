package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/symmetric"
)

type testMeta struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func testCM(t *testing.T) *symmetric.Manager {
	t.Helper()
	var parent [32]byte
	for i := range parent {
		parent[i] = byte(i + 7)
	}
	cm, err := symmetric.New(&parent, kdf.ContextCollection, 1)
	require.NoError(t, err)
	return cm
}

func TestCreateVerifyRoundTrip(t *testing.T) {
	cm := testCM(t)
	meta := testMeta{Type: "COLTYPE", Name: "Calendar", Description: "Mine", Color: "#ffffff"}
	ad := [][]byte{[]byte("collection-uid")}

	rev, err := Create(cm, ad, meta, [][]byte{[]byte("1"), []byte("2"), []byte("3")}, false)
	require.NoError(t, err)

	require.NoError(t, rev.Verify(cm, ad))

	var decoded testMeta
	require.NoError(t, rev.DecryptMeta(cm, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestCreateEmptyContent(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}

	rev, err := Create(cm, ad, nil, nil, false)
	require.NoError(t, err)
	require.NoError(t, rev.Verify(cm, ad))
	assert.Nil(t, rev.Meta)
	assert.Empty(t, rev.Chunks)
}

func TestTamperedMetaFailsVerify(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}
	meta := testMeta{Type: "COLTYPE", Name: "Calendar"}

	rev, err := Create(cm, ad, meta, nil, false)
	require.NoError(t, err)

	rev.Meta[len(rev.Meta)-1] ^= 0xFF

	err = rev.Verify(cm, ad)
	assert.Error(t, err)

	var decoded testMeta
	err = rev.DecryptMeta(cm, &decoded)
	assert.Error(t, err)
}

func TestTamperedChunkFailsVerify(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}

	rev, err := Create(cm, ad, nil, [][]byte{[]byte("chunk1")}, false)
	require.NoError(t, err)

	rev.Chunks[0][0] ^= 0xFF
	assert.Error(t, rev.Verify(cm, ad))
}

func TestTamperedUIDFailsVerify(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}

	rev, err := Create(cm, ad, nil, nil, false)
	require.NoError(t, err)

	rev.UID = rev.UID[:len(rev.UID)-1] + "x"
	assert.Error(t, rev.Verify(cm, ad))
}

func TestMetaReplacement(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}
	meta1 := testMeta{Type: "COLTYPE", Name: "Calendar", Color: "#ffffff"}

	rev1, err := Create(cm, ad, meta1, nil, false)
	require.NoError(t, err)
	require.NoError(t, rev1.Verify(cm, ad))

	meta2 := testMeta{Type: "COLTYPE", Name: "Calendar2", Color: "#000000"}
	rev2, err := Create(cm, ad, meta2, nil, false)
	require.NoError(t, err)
	require.NoError(t, rev2.Verify(cm, ad))

	var decoded testMeta
	require.NoError(t, rev2.DecryptMeta(cm, &decoded))
	assert.Equal(t, meta2, decoded)
	assert.NotEqual(t, rev1.UID, rev2.UID)
}

func TestTombstone(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}
	meta := testMeta{Type: "COLTYPE", Name: "Calendar"}

	rev, err := Create(cm, ad, meta, nil, true)
	require.NoError(t, err)
	assert.True(t, rev.Deleted)
	require.NoError(t, rev.Verify(cm, ad))

	var decoded testMeta
	require.NoError(t, rev.DecryptMeta(cm, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestToWireFromWireRoundTrip(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("collection-uid")}
	meta := testMeta{Type: "COLTYPE", Name: "Calendar", Description: "Mine", Color: "#ffffff"}

	rev, err := Create(cm, ad, meta, [][]byte{[]byte("1"), []byte("2")}, false)
	require.NoError(t, err)

	w := rev.ToWire()
	assert.Equal(t, rev.UID, w.UID)
	require.NotNil(t, w.Meta)
	assert.Len(t, w.Chunks, 2)

	back, err := FromWire(w)
	require.NoError(t, err)
	assert.Equal(t, rev, back)
	require.NoError(t, back.Verify(cm, ad))

	var decoded testMeta
	require.NoError(t, back.DecryptMeta(cm, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestToWireFromWireTombstoneHasNilMeta(t *testing.T) {
	cm := testCM(t)
	ad := [][]byte{[]byte("uid")}

	rev, err := Create(cm, ad, nil, nil, true)
	require.NoError(t, err)

	w := rev.ToWire()
	assert.Nil(t, w.Meta)
	assert.Empty(t, w.Chunks)

	back, err := FromWire(w)
	require.NoError(t, err)
	assert.Equal(t, rev, back)
}
