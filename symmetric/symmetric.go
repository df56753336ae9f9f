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

// Package symmetric implements the per-object symmetric crypto manager:
// an immutable (cipherKey, macKey, asymKeySeed) triple bound to a
// (parent key, context label, version) identity, exposing attached and
// detached AEAD plus an incremental MAC builder.
package symmetric

import (
	"github.com/kodumbeats/etebase-go/errs"
	"github.com/kodumbeats/etebase-go/internal/metrics"
	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/primitive"
)

// MaxVersion is the highest object version this build can decrypt. §7
// requires refusing unknown-version objects outright rather than guessing
// at forward compatibility; cmd/synccrypto and any other entrypoint sets
// this from config.ProtocolConfig.MaxVersion at startup.
var MaxVersion = 1

// Manager is immutable after construction: its three derived keys never
// change for the lifetime of the containing Collection/Item/Account scope
// that built it.
type Manager struct {
	version     int
	context     [8]byte
	cipherKey   [32]byte
	macKey      [32]byte
	asymKeySeed [32]byte
}

// New derives a Manager from parent under context. version is the wire
// version of the object this manager will en/decrypt for; constructing a
// Manager for a version beyond MaxVersion fails immediately, per §7's
// "implementations MUST refuse to decrypt unknown-version objects."
func New(parent *[32]byte, context [8]byte, version int) (*Manager, error) {
	if version > MaxVersion {
		return nil, errs.NewVersion(errs.KindSymmetric, "", version, MaxVersion)
	}
	cipherKey, err := kdf.CipherKey(context, parent)
	if err != nil {
		return nil, err
	}
	macKey, err := kdf.MacKey(context, parent)
	if err != nil {
		return nil, err
	}
	asymSeed, err := kdf.AsymSeed(context, parent)
	if err != nil {
		return nil, err
	}
	m := &Manager{version: version, context: context}
	copy(m.cipherKey[:], cipherKey[:])
	copy(m.macKey[:], macKey[:])
	copy(m.asymKeySeed[:], asymSeed[:])
	return m, nil
}

// Version reports the manager's protocol version.
func (m *Manager) Version() int { return m.version }

// AsymKeySeed returns the Ed25519 seed derived alongside this manager's
// cipher/MAC keys, for constructing an asymmetric.Manager scoped to the
// same object.
func (m *Manager) AsymKeySeed() [32]byte { return m.asymKeySeed }

// Encrypt draws a fresh random nonce and returns nonce||ciphertext with an
// attached AEAD tag. additionalData may be nil.
func (m *Manager) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	out, err := primitive.Encrypt(m.cipherKey[:], plaintext, additionalData)
	metrics.ObserveCrypto("encrypt", "xchacha20poly1305", err)
	return out, err
}

// Decrypt is the inverse of Encrypt. Any AEAD verification failure is
// reported as errs.IntegrityError.
func (m *Manager) Decrypt(nonceCiphertext, additionalData []byte) ([]byte, error) {
	out, err := primitive.Decrypt(m.cipherKey[:], nonceCiphertext, additionalData)
	metrics.ObserveCrypto("decrypt", "xchacha20poly1305", err)
	if err != nil {
		return nil, errs.NewIntegrity(errs.KindSymmetric, "", "decrypt", err)
	}
	return out, nil
}

// EncryptDetached is Encrypt with the AEAD tag split out of the returned
// ciphertext; the nonce still prefixes nonceCiphertext.
func (m *Manager) EncryptDetached(plaintext, additionalData []byte) (mac, nonceCiphertext []byte, err error) {
	mac, nonceCiphertext, err = primitive.EncryptDetached(m.cipherKey[:], plaintext, additionalData)
	metrics.ObserveCrypto("encrypt_detached", "xchacha20poly1305", err)
	return mac, nonceCiphertext, err
}

// DecryptDetached is the inverse of EncryptDetached.
func (m *Manager) DecryptDetached(nonceCiphertext, mac, additionalData []byte) ([]byte, error) {
	out, err := primitive.DecryptDetached(m.cipherKey[:], nonceCiphertext, mac, additionalData)
	metrics.ObserveCrypto("decrypt_detached", "xchacha20poly1305", err)
	if err != nil {
		return nil, errs.NewIntegrity(errs.KindSymmetric, "", "decrypt_detached", err)
	}
	return out, nil
}

// GetCryptoMac returns a fresh incremental MAC builder seeded with this
// manager's MAC key. Used by package revision to compute the MAC-chained
// revision uid.
func (m *Manager) GetCryptoMac() (*primitive.MacBuilder, error) {
	return primitive.NewMac(m.macKey[:])
}
