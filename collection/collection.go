// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// Package collection implements Collection and Item: long-lived identities
// holding a wrapped per-object encryption key and a current Revision.
// Collection and Item share the same lifecycle; they differ only in the
// key-derivation context label they bind ("Col     " vs "ColItem ") and in
// who supplies the parent manager that unwraps their key.
package collection

import (
	"github.com/kodumbeats/etebase-go/errs"
	"github.com/kodumbeats/etebase-go/internal/logger"
	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/primitive"
	"github.com/kodumbeats/etebase-go/revision"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

// Meta is a Collection's meta schema.
type Meta struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ItemMeta is the minimal schema Item meta must extend; callers may embed
// this and add their own fields, passing the concrete struct through
// Update/DecryptMeta.
type ItemMeta struct {
	Type string `json:"type"`
}

// object is the shared lifecycle Collection and Item both bind a context
// label to. It is not exported: Collection and Item are the public names,
// per the single-capability-interface design this package follows instead
// of parallel CollectionCryptoManager/CollectionItemCryptoManager types.
type object struct {
	uid           string
	version       int
	accessLevel   wire.AccessLevel
	ctag          string
	stoken        string
	encryptionKey []byte // wrapped under parent's cipher key
	content       *revision.Revision
	context       [8]byte
	cm            *symmetric.Manager // memoized once unwrapped
}

func newObject(parent *symmetric.Manager, context [8]byte) (*object, []byte, *symmetric.Manager, error) {
	uid, err := wire.GenUID()
	if err != nil {
		return nil, nil, nil, err
	}
	rawKey, err := primitive.RandomBytes(primitive.KeySize)
	if err != nil {
		return nil, nil, nil, err
	}
	var key [32]byte
	copy(key[:], rawKey)

	encryptionKey, err := parent.Encrypt(rawKey, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	cm, err := symmetric.New(&key, context, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	return &object{
		uid:           uid,
		version:       1,
		encryptionKey: encryptionKey,
		context:       context,
		cm:            cm,
	}, rawKey, cm, nil
}

// cryptoManager unwraps o.encryptionKey under parent and memoizes the
// derived manager; subsequent calls with the same parent are free.
func (o *object) cryptoManager(parent *symmetric.Manager) (*symmetric.Manager, error) {
	if o.cm != nil {
		return o.cm, nil
	}
	rawKey, err := parent.Decrypt(o.encryptionKey, nil)
	if err != nil {
		return nil, errs.NewIntegrity(errs.KindCollection, o.uid, "unwrap_key", err)
	}
	var key [32]byte
	copy(key[:], rawKey)
	cm, err := symmetric.New(&key, o.context, o.version)
	if err != nil {
		return nil, err
	}
	o.cm = cm
	return cm, nil
}

func (o *object) additionalData() [][]byte {
	return [][]byte{[]byte(o.uid)}
}

// verify checks the object's current revision against its own uid, per
// §4.F's invariant: revision.verify(derive_manager(parent), [uid]) must
// succeed or the object is rejected as tampered.
func (o *object) verify(parent *symmetric.Manager) error {
	cm, err := o.cryptoManager(parent)
	if err != nil {
		return err
	}
	if o.content == nil {
		return errs.NewIntegrity(errs.KindCollection, o.uid, "verify", nil)
	}
	return o.content.Verify(cm, o.additionalData())
}

// Collection is a long-lived identity + latest revision + wrapped
// per-collection encryption key.
type Collection struct{ object }

// New creates a Collection: a fresh uid, a fresh symmetric key wrapped
// under the account's main crypto manager, and an initial revision
// carrying meta.
func New(mainCM *symmetric.Manager, meta Meta) (*Collection, error) {
	o, _, cm, err := newObject(mainCM, kdf.ContextCollection)
	if err != nil {
		return nil, err
	}
	c := &Collection{object: *o}
	rev, err := revision.Create(cm, c.additionalData(), meta, nil, false)
	if err != nil {
		return nil, err
	}
	c.content = rev
	logger.Info("collection created",
		logger.String("uid", c.uid),
		logger.Int("version", c.version),
	)
	return c, nil
}

// UID returns the collection's alphanumeric identifier.
func (c *Collection) UID() string { return c.uid }

// Version returns the collection's protocol version.
func (c *Collection) Version() int { return c.version }

// EncryptionKey returns the collection's symmetric key, wrapped under the
// account's main cipher key, for persisting on the wire.
func (c *Collection) EncryptionKey() []byte { return c.encryptionKey }

// CryptoManager unwraps the collection's key under the account's main
// manager and returns the collection-scoped symmetric manager, memoizing
// the result.
func (c *Collection) CryptoManager(mainCM *symmetric.Manager) (*symmetric.Manager, error) {
	return c.cryptoManager(mainCM)
}

// Update replaces the collection's content with a freshly-created
// revision; it never mutates the prior revision in place.
func (c *Collection) Update(mainCM *symmetric.Manager, meta Meta, chunks [][]byte) error {
	cm, err := c.cryptoManager(mainCM)
	if err != nil {
		return err
	}
	rev, err := revision.Create(cm, c.additionalData(), meta, chunks, false)
	if err != nil {
		return err
	}
	c.content = rev
	logger.Debug("collection revision created", logger.String("uid", c.uid))
	return nil
}

// Remove constructs a tombstone revision, preserving the previously
// decrypted meta so listings can still render it.
func (c *Collection) Remove(mainCM *symmetric.Manager) error {
	cm, err := c.cryptoManager(mainCM)
	if err != nil {
		return err
	}
	var prevMeta Meta
	if err := c.content.DecryptMeta(cm, &prevMeta); err != nil {
		return err
	}
	rev, err := revision.Create(cm, c.additionalData(), prevMeta, nil, true)
	if err != nil {
		return err
	}
	c.content = rev
	logger.Info("collection removed", logger.String("uid", c.uid))
	return nil
}

// Verify checks the collection's current revision against its own uid.
func (c *Collection) Verify(mainCM *symmetric.Manager) error {
	return c.verify(mainCM)
}

// DecryptMeta decrypts the collection's current meta into out.
func (c *Collection) DecryptMeta(mainCM *symmetric.Manager, out *Meta) error {
	cm, err := c.cryptoManager(mainCM)
	if err != nil {
		return err
	}
	return c.content.DecryptMeta(cm, out)
}

// Content returns the collection's current revision.
func (c *Collection) Content() *revision.Revision { return c.content }

// SetAccessLevel records the caller's current access tier for this
// collection, as reported by the transport collaborator on read (§6's
// Collection (read) shape). Per §9, no key rotation happens here on a
// downgrade — denying a demoted member the plaintext is a server-side
// concern, not the core's.
func (c *Collection) SetAccessLevel(level wire.AccessLevel) { c.accessLevel = level }

// SetSyncState records the transport collaborator's ctag/stoken sync
// cursor for this collection, as reported on read.
func (c *Collection) SetSyncState(ctag, stoken string) {
	c.ctag = ctag
	c.stoken = stoken
}

// ToWire renders c as §6's Collection (write/read) shape: accessLevel,
// ctag, and stoken are carried as last set by the transport collaborator
// (SetAccessLevel, SetSyncState), not recomputed here.
func (c *Collection) ToWire() wire.CollectionWire {
	return wire.CollectionWire{
		UID:           c.uid,
		Version:       c.version,
		EncryptionKey: wire.EncodeB64(c.encryptionKey),
		Content:       c.content.ToWire(),
		AccessLevel:   c.accessLevel,
		CTag:          c.ctag,
		SToken:        c.stoken,
	}
}

// FromWire reconstructs a Collection from its wire shape, as read back from
// the transport collaborator. The returned Collection's crypto manager is
// unwrapped lazily on first CryptoManager/Verify call, same as one built by
// New; that unwrap is also where a version beyond symmetric.MaxVersion is
// refused, per §7.
func FromWire(w wire.CollectionWire) (*Collection, error) {
	encryptionKey, err := wire.DecodeB64(w.EncryptionKey)
	if err != nil {
		return nil, errs.NewEncoding(errs.KindCollection, w.UID, "from_wire", err)
	}
	rev, err := revision.FromWire(w.Content)
	if err != nil {
		return nil, err
	}
	return &Collection{object: object{
		uid:           w.UID,
		version:       w.Version,
		accessLevel:   w.AccessLevel,
		ctag:          w.CTag,
		stoken:        w.SToken,
		encryptionKey: encryptionKey,
		content:       rev,
		context:       kdf.ContextCollection,
	}}, nil
}

// Item is a Collection/Item with the same shape as Collection but tied to
// a parent collection, using context "ColItem " instead of "Col     ".
type Item struct{ object }

// NewItem creates an Item scoped to parentCM (the owning collection's
// crypto manager).
func NewItem(parentCM *symmetric.Manager, meta any) (*Item, error) {
	o, _, cm, err := newObject(parentCM, kdf.ContextItem)
	if err != nil {
		return nil, err
	}
	it := &Item{object: *o}
	rev, err := revision.Create(cm, it.additionalData(), meta, nil, false)
	if err != nil {
		return nil, err
	}
	it.content = rev
	logger.Debug("item created", logger.String("uid", it.uid))
	return it, nil
}

// UID returns the item's alphanumeric identifier.
func (it *Item) UID() string { return it.uid }

// EncryptionKey returns the item's symmetric key, wrapped under the
// parent collection's cipher key.
func (it *Item) EncryptionKey() []byte { return it.encryptionKey }

// CryptoManager unwraps the item's key under the parent collection's
// manager, memoizing the result.
func (it *Item) CryptoManager(parentCM *symmetric.Manager) (*symmetric.Manager, error) {
	return it.cryptoManager(parentCM)
}

// Update replaces the item's content with a freshly-created revision.
func (it *Item) Update(parentCM *symmetric.Manager, meta any, chunks [][]byte) error {
	cm, err := it.cryptoManager(parentCM)
	if err != nil {
		return err
	}
	rev, err := revision.Create(cm, it.additionalData(), meta, chunks, false)
	if err != nil {
		return err
	}
	it.content = rev
	return nil
}

// Remove constructs a tombstone revision for the item. meta carries the
// previously decrypted value so listings can still render it; unlike
// Collection, Item has no fixed meta schema for this package to decode on
// the caller's behalf.
func (it *Item) Remove(parentCM *symmetric.Manager, prevMeta any) error {
	cm, err := it.cryptoManager(parentCM)
	if err != nil {
		return err
	}
	rev, err := revision.Create(cm, it.additionalData(), prevMeta, nil, true)
	if err != nil {
		return err
	}
	it.content = rev
	return nil
}

// Verify checks the item's current revision against its own uid.
func (it *Item) Verify(parentCM *symmetric.Manager) error {
	return it.verify(parentCM)
}

// DecryptMeta decrypts the item's current meta into out.
func (it *Item) DecryptMeta(parentCM *symmetric.Manager, out any) error {
	cm, err := it.cryptoManager(parentCM)
	if err != nil {
		return err
	}
	return it.content.DecryptMeta(cm, out)
}

// Content returns the item's current revision.
func (it *Item) Content() *revision.Revision { return it.content }
