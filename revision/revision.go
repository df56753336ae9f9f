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

// Package revision implements the MAC-chained revision object: an
// encrypted, MAC-identified unit of collection/item state whose uid is the
// MAC of its own content, binding it to its position in history.
package revision

import (
	"encoding/base64"
	"encoding/json"

	"github.com/kodumbeats/etebase-go/errs"
	"github.com/kodumbeats/etebase-go/primitive"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

// Manager is the capability a Revision needs from its containing object: a
// symmetric crypto manager able to encrypt/decrypt meta and mint a MAC.
// Both the account's main manager and a collection/item's derived manager
// satisfy it, so revisions are not parameterized over distinct manager
// types.
type Manager interface {
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(nonceCiphertext, additionalData []byte) ([]byte, error)
	GetCryptoMac() (*primitive.MacBuilder, error)
}

var _ Manager = (*symmetric.Manager)(nil)

// Revision is value-like: every mutation produces a fresh Revision rather
// than mutating one in place.
type Revision struct {
	UID     string   // base64-url, no padding; the MAC described below
	Meta    []byte   // AEAD ciphertext of the canonical JSON meta, or nil
	Chunks  [][]byte // opaque content-addressed references, in order
	Deleted bool
}

// Create builds a Revision from meta (nil for none), chunks (nil treated
// as empty), and deleted, computing uid as the MAC over the feed described
// on computeUID. additionalData is a context-dependent sequence the
// caller supplies (e.g. the parent collection's uid bytes).
func Create(cm Manager, additionalData [][]byte, meta any, chunks [][]byte, deleted bool) (*Revision, error) {
	if chunks == nil {
		chunks = [][]byte{}
	}

	var metaCiphertext []byte
	if meta != nil {
		plaintext, err := json.Marshal(meta)
		if err != nil {
			return nil, errs.NewEncoding(errs.KindRevision, "", "create", err)
		}
		metaCiphertext, err = cm.Encrypt(plaintext, nil)
		if err != nil {
			return nil, err
		}
	}

	uid, err := computeUID(cm, deleted, chunks, metaCiphertext, additionalData)
	if err != nil {
		return nil, err
	}

	return &Revision{
		UID:     base64.RawURLEncoding.EncodeToString(uid),
		Meta:    metaCiphertext,
		Chunks:  chunks,
		Deleted: deleted,
	}, nil
}

// Verify recomputes the MAC over r's content and additionalData and
// compares it in constant time against r.UID, returning errs.IntegrityError
// on mismatch.
func (r *Revision) Verify(cm Manager, additionalData [][]byte) error {
	want, err := base64.RawURLEncoding.DecodeString(r.UID)
	if err != nil {
		return errs.NewEncoding(errs.KindRevision, r.UID, "verify", err)
	}
	got, err := computeUID(cm, r.Deleted, r.Chunks, r.Meta, additionalData)
	if err != nil {
		return err
	}
	if !constantTimeEqual(want, got) {
		return errs.NewIntegrity(errs.KindRevision, r.UID, "verify", nil)
	}
	return nil
}

// DecryptMeta decrypts and JSON-unmarshals r.Meta into out. Returns nil
// and leaves out untouched if this revision carries no meta.
func (r *Revision) DecryptMeta(cm Manager, out any) error {
	if r.Meta == nil {
		return nil
	}
	plaintext, err := cm.Decrypt(r.Meta, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return errs.NewEncoding(errs.KindRevision, r.UID, "decrypt_meta", err)
	}
	return nil
}

// ToWire renders r as §6's Revision (write) shape. chunksUrls is left for
// the transport collaborator to add after resolving content-addressed
// references; the core only ever hands back the chunks it itself produced.
func (r *Revision) ToWire() wire.RevisionWire {
	var meta *string
	if r.Meta != nil {
		encoded := wire.EncodeB64(r.Meta)
		meta = &encoded
	}
	chunks := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		chunks[i] = wire.EncodeB64(c)
	}
	return wire.RevisionWire{
		UID:     r.UID,
		Meta:    meta,
		Chunks:  chunks,
		Deleted: r.Deleted,
	}
}

// FromWire reconstructs a Revision from its wire shape, as read back from
// the transport collaborator. Callers still need Verify before trusting it.
func FromWire(w wire.RevisionWire) (*Revision, error) {
	var meta []byte
	if w.Meta != nil {
		m, err := wire.DecodeB64(*w.Meta)
		if err != nil {
			return nil, errs.NewEncoding(errs.KindRevision, w.UID, "from_wire", err)
		}
		meta = m
	}
	chunks := make([][]byte, len(w.Chunks))
	for i, c := range w.Chunks {
		b, err := wire.DecodeB64(c)
		if err != nil {
			return nil, errs.NewEncoding(errs.KindRevision, w.UID, "from_wire", err)
		}
		chunks[i] = b
	}
	return &Revision{
		UID:     w.UID,
		Meta:    meta,
		Chunks:  chunks,
		Deleted: w.Deleted,
	}, nil
}

// computeUID feeds, in order: one deleted byte, each chunk's raw bytes,
// the meta AEAD tag (last 16 bytes of the ciphertext, or nothing if meta
// is absent), then each element of additionalData. This ordering is part
// of the wire-compatible protocol and MUST NOT change.
func computeUID(cm Manager, deleted bool, chunks [][]byte, meta []byte, additionalData [][]byte) ([]byte, error) {
	mac, err := cm.GetCryptoMac()
	if err != nil {
		return nil, err
	}

	if deleted {
		mac.Write([]byte{0x01})
	} else {
		mac.Write([]byte{0x00})
	}
	for _, chunk := range chunks {
		mac.Write(chunk)
	}
	if meta != nil {
		const tagSize = 16
		if len(meta) >= tagSize {
			mac.Write(meta[len(meta)-tagSize:])
		}
	}
	for _, ad := range additionalData {
		mac.Write(ad)
	}
	return mac.Sum(), nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
