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

// Package sharing wraps a collection's symmetric key to a recipient pubkey
// and defines the invitation payload and out-of-band pubkey fingerprint
// used to authenticate that wrapping.
package sharing

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/kodumbeats/etebase-go/asymmetric"
	"github.com/kodumbeats/etebase-go/errs"
	"github.com/kodumbeats/etebase-go/primitive"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

// Invitation is from inviter to invitee: the wrapped per-collection key,
// access level, and a signature chain binding the payload to the inviter.
type Invitation struct {
	CollectionUID string
	AccessLevel   wire.AccessLevel
	Wrapped       []byte // AsymEncryptSign(inviter, invitee.pub, K_col)
	SenderPub     ed25519.PublicKey
	Signature     []byte
}

// signedPayload is the byte feed Invite/Accept sign and verify:
// H(collection_uid || access_level || wrapped).
func signedPayload(collectionUID string, accessLevel wire.AccessLevel, wrapped []byte) ([]byte, error) {
	return primitive.Hash([]byte(collectionUID), []byte(accessLevel), wrapped)
}

// Invite wraps collectionKey (K_col) to recipientPub under sender's
// identity and assembles a signed Invitation.
func Invite(sender *asymmetric.Manager, collectionUID string, recipientPub ed25519.PublicKey, collectionKey []byte, accessLevel wire.AccessLevel) (*Invitation, error) {
	wrapped, err := sender.EncryptSign(recipientPub, collectionKey)
	if err != nil {
		return nil, err
	}
	payload, err := signedPayload(collectionUID, accessLevel, wrapped)
	if err != nil {
		return nil, err
	}
	sig, err := sender.SignDetached(payload)
	if err != nil {
		return nil, err
	}
	return &Invitation{
		CollectionUID: collectionUID,
		AccessLevel:   accessLevel,
		Wrapped:       wrapped,
		SenderPub:     sender.PublicKey(),
		Signature:     sig,
	}, nil
}

// Accept verifies inv's signature, recovers K_col with recipient's
// identity, and re-wraps it under the recipient's own main crypto manager.
// The returned bytes are the value to store as the recipient's Collection
// encryptionKey.
func Accept(recipient *asymmetric.Manager, inv *Invitation, recipientMainCM *symmetric.Manager) ([]byte, error) {
	payload, err := signedPayload(inv.CollectionUID, inv.AccessLevel, inv.Wrapped)
	if err != nil {
		return nil, err
	}
	if !asymmetric.VerifyDetached(inv.SenderPub, payload, inv.Signature) {
		return nil, errs.NewIntegrity(errs.KindInvitation, inv.CollectionUID, "accept", nil)
	}
	collectionKey, err := recipient.DecryptVerify(inv.SenderPub, inv.Wrapped)
	if err != nil {
		return nil, errs.NewIntegrity(errs.KindInvitation, inv.CollectionUID, "accept", err)
	}
	return recipientMainCM.Encrypt(collectionKey, nil)
}

// Directory is the out-of-band pubkey lookup §4.G assumes ("fetched
// out-of-band or from a server directory"). The module ships only an
// in-memory implementation; a real directory is transport territory.
type Directory interface {
	Lookup(username string) (ed25519.PublicKey, bool)
	Register(username string, pub ed25519.PublicKey)
}

type memoryDirectory struct {
	byUsername map[string]ed25519.PublicKey
}

// NewMemoryDirectory creates a new in-memory Directory.
func NewMemoryDirectory() Directory {
	return &memoryDirectory{byUsername: make(map[string]ed25519.PublicKey)}
}

func (d *memoryDirectory) Lookup(username string) (ed25519.PublicKey, bool) {
	pub, ok := d.byUsername[username]
	return pub, ok
}

func (d *memoryDirectory) Register(username string, pub ed25519.PublicKey) {
	d.byUsername[username] = pub
}

// GetPrettyFingerprint renders pubkey's BLAKE2b hash as 16 big-endian
// 16-bit words, each a zero-padded 5-digit decimal, grouped four per line
// and joined with delimiter within a line. Deterministic in pubkey;
// differs in at least one group with overwhelming probability if a single
// byte of pubkey changes, since collision resistance comes from the full
// hash and decimal rendering does not reduce it.
func GetPrettyFingerprint(pubkey ed25519.PublicKey, delimiter string) (string, error) {
	sum, err := primitive.Hash(pubkey)
	if err != nil {
		return "", err
	}
	var lines []string
	var groups []string
	for i := 0; i < 16; i++ {
		word := uint16(sum[2*i])<<8 | uint16(sum[2*i+1])
		groups = append(groups, fmt.Sprintf("%05d", word))
		if len(groups) == 4 {
			lines = append(lines, strings.Join(groups, delimiter))
			groups = nil
		}
	}
	return strings.Join(lines, "\n"), nil
}
