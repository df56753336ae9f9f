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

// Package asymmetric implements the per-object asymmetric crypto manager:
// an Ed25519 keypair that both signs and, via Ed25519<->X25519 conversion,
// performs authenticated public-key encryption.
package asymmetric

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"

	"github.com/kodumbeats/etebase-go/errs"
	"github.com/kodumbeats/etebase-go/internal/metrics"
	"github.com/kodumbeats/etebase-go/primitive"
)

// Manager holds an Ed25519 keypair. A Manager created from only a public
// key offers PublicKey and ID; SignDetached, EncryptSign and DecryptVerify
// all need the private key and return an error without one.
type Manager struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	id   string
}

// KeyGen produces a Manager from a 32-byte seed (deterministic) or, if seed
// is nil, from fresh CSPRNG entropy.
func KeyGen(seed []byte) (*Manager, error) {
	pub, priv, err := primitive.GenerateEd25519(seed)
	if err != nil {
		return nil, err
	}
	return newManager(pub, priv), nil
}

// FromPrivateKey reconstitutes a Manager from a 64-byte Ed25519 secret key,
// treating bytes [32:64) as the public key per the Ed25519 standard
// layout.
func FromPrivateKey(sk ed25519.PrivateKey) (*Manager, error) {
	if len(sk) != primitive.Ed25519PrivSize {
		return nil, errs.NewEncoding(errs.KindAsymmetric, "", "from_private_key", nil)
	}
	pub := make(ed25519.PublicKey, primitive.Ed25519PubSize)
	copy(pub, sk[32:])
	return newManager(pub, sk), nil
}

// FromPublicKey builds a Manager holding no private key. Its SignDetached,
// EncryptSign and DecryptVerify return an error; signatures by this key
// are checked with the package-level VerifyDetached.
func FromPublicKey(pub ed25519.PublicKey) *Manager {
	return newManager(pub, nil)
}

func newManager(pub ed25519.PublicKey, priv ed25519.PrivateKey) *Manager {
	sum := sha256.Sum256(pub)
	return &Manager{pub: pub, priv: priv, id: hex.EncodeToString(sum[:8])}
}

// ID returns a short stable identifier for this keypair's public key, for
// naming it in storage, rotation history, and log fields without
// re-deriving the hash at each call site.
func (m *Manager) ID() string { return m.id }

// PublicKey returns the manager's Ed25519 public key.
func (m *Manager) PublicKey() ed25519.PublicKey { return m.pub }

// PrivateKey returns the manager's Ed25519 secret key, or nil if this
// Manager was constructed from a public key only.
func (m *Manager) PrivateKey() ed25519.PrivateKey { return m.priv }

// SignDetached signs message, returning a 64-byte Ed25519 signature.
func (m *Manager) SignDetached(message []byte) ([]byte, error) {
	if m.priv == nil {
		return nil, errs.NewIntegrity(errs.KindSignature, m.id, "sign", nil)
	}
	sig := primitive.SignDetached(m.priv, message)
	metrics.ObserveCrypto("sign", "ed25519", nil)
	return sig, nil
}

// VerifyDetached reports whether sig is a valid signature over message by
// pubkey.
func VerifyDetached(pubkey ed25519.PublicKey, message, sig []byte) bool {
	ok := primitive.VerifyDetached(pubkey, message, sig)
	var err error
	if !ok {
		err = errs.NewIntegrity(errs.KindSignature, "", "verify", nil)
	}
	metrics.ObserveCrypto("verify", "ed25519", err)
	return ok
}

// EncryptSign authenticates and encrypts message to recipientPub, binding
// it to this manager's long-term signing identity via Ed25519->X25519
// conversion (authenticated ECDH + XSalsa20-Poly1305).
func (m *Manager) EncryptSign(recipientPub ed25519.PublicKey, message []byte) ([]byte, error) {
	if m.priv == nil {
		return nil, errs.NewIntegrity(errs.KindAsymmetric, m.id, "encrypt_sign", nil)
	}
	out, err := primitive.BoxSeal(m.priv, recipientPub, message)
	metrics.ObserveCrypto("encrypt_sign", "x25519box", err)
	return out, err
}

// DecryptVerify recovers and authenticates a message encrypted with
// EncryptSign by senderPub, addressed to this manager.
func (m *Manager) DecryptVerify(senderPub ed25519.PublicKey, nonceCiphertext []byte) ([]byte, error) {
	if m.priv == nil {
		return nil, errs.NewIntegrity(errs.KindAsymmetric, m.id, "decrypt_verify", nil)
	}
	out, err := primitive.BoxOpen(m.priv, senderPub, nonceCiphertext)
	metrics.ObserveCrypto("decrypt_verify", "x25519box", err)
	if err != nil {
		return nil, errs.NewIntegrity(errs.KindAsymmetric, m.id, "decrypt_verify", err)
	}
	return out, nil
}
