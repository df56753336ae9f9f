package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

func testMainCM(t *testing.T) *symmetric.Manager {
	t.Helper()
	var parent [32]byte
	for i := range parent {
		parent[i] = byte(i + 3)
	}
	cm, err := symmetric.New(&parent, kdf.ContextMain, 1)
	require.NoError(t, err)
	return cm
}

func TestCollectionRoundTrip(t *testing.T) {
	mainCM := testMainCM(t)
	meta := Meta{Type: "COLTYPE", Name: "Calendar", Description: "Mine", Color: "#ffffff"}

	c, err := New(mainCM, meta)
	require.NoError(t, err)
	require.NoError(t, c.Verify(mainCM))

	var decoded Meta
	require.NoError(t, c.DecryptMeta(mainCM, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestCollectionUpdate(t *testing.T) {
	mainCM := testMainCM(t)
	c, err := New(mainCM, Meta{Type: "COLTYPE", Name: "Calendar"})
	require.NoError(t, err)

	updated := Meta{Type: "COLTYPE", Name: "Calendar2", Color: "#000000"}
	require.NoError(t, c.Update(mainCM, updated, nil))
	require.NoError(t, c.Verify(mainCM))

	var decoded Meta
	require.NoError(t, c.DecryptMeta(mainCM, &decoded))
	assert.Equal(t, updated, decoded)
}

func TestCollectionRemoveTombstone(t *testing.T) {
	mainCM := testMainCM(t)
	meta := Meta{Type: "COLTYPE", Name: "Calendar"}
	c, err := New(mainCM, meta)
	require.NoError(t, err)

	require.NoError(t, c.Remove(mainCM))
	require.NoError(t, c.Verify(mainCM))
	assert.True(t, c.Content().Deleted)

	var decoded Meta
	require.NoError(t, c.DecryptMeta(mainCM, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestCollectionTamperDetection(t *testing.T) {
	mainCM := testMainCM(t)
	c, err := New(mainCM, Meta{Type: "COLTYPE", Name: "Calendar"})
	require.NoError(t, err)

	c.Content().Meta[0] ^= 0xFF
	assert.Error(t, c.Verify(mainCM))

	var decoded Meta
	assert.Error(t, c.DecryptMeta(mainCM, &decoded))
}

func TestItemLifecycle(t *testing.T) {
	mainCM := testMainCM(t)
	col, err := New(mainCM, Meta{Type: "COLTYPE", Name: "Calendar"})
	require.NoError(t, err)
	colCM, err := col.CryptoManager(mainCM)
	require.NoError(t, err)

	type eventMeta struct {
		ItemMeta
		Title string `json:"title"`
	}
	meta := eventMeta{ItemMeta: ItemMeta{Type: "EVENT"}, Title: "Standup"}

	it, err := NewItem(colCM, meta)
	require.NoError(t, err)
	require.NoError(t, it.Verify(colCM))

	var decoded eventMeta
	require.NoError(t, it.DecryptMeta(colCM, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestCollectionToWireFromWireRoundTrip(t *testing.T) {
	mainCM := testMainCM(t)
	meta := Meta{Type: "COLTYPE", Name: "Calendar", Description: "Mine", Color: "#ffffff"}
	c, err := New(mainCM, meta)
	require.NoError(t, err)
	c.SetAccessLevel(wire.AccessReadWrite)
	c.SetSyncState("ctag-1", "stoken-1")

	w := c.ToWire()
	assert.Equal(t, c.UID(), w.UID)
	assert.Equal(t, c.Version(), w.Version)
	assert.Equal(t, wire.AccessReadWrite, w.AccessLevel)
	assert.Equal(t, "ctag-1", w.CTag)
	assert.Equal(t, "stoken-1", w.SToken)

	back, err := FromWire(w)
	require.NoError(t, err)
	require.NoError(t, back.Verify(mainCM))

	var decoded Meta
	require.NoError(t, back.DecryptMeta(mainCM, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestCollectionFromWireRejectsFutureVersion(t *testing.T) {
	mainCM := testMainCM(t)
	c, err := New(mainCM, Meta{Type: "COLTYPE", Name: "Calendar"})
	require.NoError(t, err)

	w := c.ToWire()
	w.Version = symmetric.MaxVersion + 1

	back, err := FromWire(w)
	require.NoError(t, err)
	_, err = back.CryptoManager(mainCM)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	mainCM := testMainCM(t)
	c, err := New(mainCM, Meta{Type: "COLTYPE", Name: "Calendar"})
	require.NoError(t, err)

	store := NewMemoryStore()
	require.NoError(t, store.Put(c.UID(), c))

	got, err := store.Get(c.UID())
	require.NoError(t, err)
	assert.Equal(t, c.UID(), got.UID())

	uids, err := store.List()
	require.NoError(t, err)
	assert.Contains(t, uids, c.UID())

	require.NoError(t, store.Delete(c.UID()))
	_, err = store.Get(c.UID())
	assert.ErrorIs(t, err, ErrNotFound)
}
