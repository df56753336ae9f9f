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

// Package primitive binds the raw cryptographic primitives the rest of the
// module composes: XChaCha20-Poly1305 AEAD, keyed BLAKE2b (MAC and KDF),
// Ed25519 sign/verify, Ed25519<->X25519 conversion, an authenticated box
// for asymmetric encryption, Argon2id password hashing, and the
// process-wide CSPRNG. Nothing here is domain-aware; it has no notion of
// collections, revisions, or accounts.
package primitive

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"
)

// Byte-string sizes shared by every caller of this package.
const (
	KeySize         = 32 // symmetric key, BLAKE2b key, Argon2id output
	SaltSize        = 16
	NonceSize       = chacha20poly1305.NonceSizeX // 24, shared with box nonces
	TagSize         = chacha20poly1305.Overhead   // 16
	MacSize         = 32
	Ed25519SeedSize = ed25519.SeedSize      // 32
	Ed25519PubSize  = ed25519.PublicKeySize // 32
	Ed25519PrivSize = ed25519.PrivateKeySize // 64
)

var ErrBadCiphertext = errors.New("primitive: ciphertext too short")

// RandomBytes draws n bytes from the process CSPRNG. Every caller needing a
// nonce, salt, key, or uid goes through this single entry point.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("primitive: random read: %w", err)
	}
	return b, nil
}

// Encrypt seals plaintext under key with a fresh random nonce and an
// attached AEAD tag, returning nonce||ciphertext||tag. additionalData may
// be nil.
func Encrypt(key, plaintext, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("primitive: new aead: %w", err)
	}
	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	out := aead.Seal(nonce, nonce, plaintext, additionalData)
	return out, nil
}

// Decrypt is the inverse of Encrypt. It fails closed: any AEAD
// verification failure is reported identically regardless of whether the
// nonce, key, or tag was at fault.
func Decrypt(key, nonceCiphertext, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("primitive: new aead: %w", err)
	}
	if len(nonceCiphertext) < NonceSize+TagSize {
		return nil, ErrBadCiphertext
	}
	nonce := nonceCiphertext[:NonceSize]
	ciphertext := nonceCiphertext[NonceSize:]
	return aead.Open(nil, nonce, ciphertext, additionalData)
}

// EncryptDetached behaves like Encrypt but splits the AEAD tag out of the
// returned ciphertext. The nonce still prefixes nonceCiphertext; mac is the
// detached tag.
func EncryptDetached(key, plaintext, additionalData []byte) (mac, nonceCiphertext []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, fmt.Errorf("primitive: new aead: %w", err)
	}
	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, nil, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, additionalData)
	split := len(sealed) - TagSize
	ciphertext := sealed[:split]
	mac = sealed[split:]
	nonceCiphertext = append(nonce, ciphertext...)
	return mac, nonceCiphertext, nil
}

// DecryptDetached is the inverse of EncryptDetached.
func DecryptDetached(key, nonceCiphertext, mac, additionalData []byte) ([]byte, error) {
	if len(nonceCiphertext) < NonceSize || len(mac) != TagSize {
		return nil, ErrBadCiphertext
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("primitive: new aead: %w", err)
	}
	nonce := nonceCiphertext[:NonceSize]
	ciphertext := nonceCiphertext[NonceSize:]
	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, mac...)
	return aead.Open(nil, nonce, sealed, additionalData)
}

// MacBuilder is an incremental keyed BLAKE2b hash. It backs both the
// context-labeled KDF tree and per-object "getCryptoMac" builders.
type MacBuilder struct {
	h hashWriter
}

// hashWriter narrows the blake2b hash.Hash interface to what MacBuilder
// needs, avoiding an import of "hash" purely for a type name.
type hashWriter interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

// NewMac constructs a MacBuilder keyed with key (1-64 bytes).
func NewMac(key []byte) (*MacBuilder, error) {
	h, err := blake2b.New(MacSize, key)
	if err != nil {
		return nil, fmt.Errorf("primitive: new mac: %w", err)
	}
	return &MacBuilder{h: h}, nil
}

// Write feeds message bytes into the running MAC. It never returns an
// error; the signature matches io.Writer for convenience.
func (m *MacBuilder) Write(p []byte) (int, error) {
	return m.h.Write(p)
}

// Sum returns the 32-byte MAC of everything written so far. It does not
// reset the builder.
func (m *MacBuilder) Sum() []byte {
	return m.h.Sum(nil)
}

// Mac is a one-shot convenience wrapper: Mac(key, a, b, c) is equivalent to
// constructing a MacBuilder and writing a, b, c in order.
func Mac(key []byte, parts ...[]byte) ([]byte, error) {
	b, err := NewMac(key)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		b.Write(p)
	}
	return b.Sum(), nil
}

// DeriveFromKey is the raw keyed-hash construction behind the
// context-labeled derivation tree: a keyed BLAKE2b over an 8-byte context
// label followed by an 8-byte big-endian subkey id. Domain separation
// between cipher/MAC/seed subkeys comes entirely from subkeyID.
func DeriveFromKey(parent []byte, context [8]byte, subkeyID uint64) ([]byte, error) {
	b, err := NewMac(parent)
	if err != nil {
		return nil, err
	}
	b.Write(context[:])
	var idBytes [8]byte
	for i := 0; i < 8; i++ {
		idBytes[7-i] = byte(subkeyID >> (8 * i))
	}
	b.Write(idBytes[:])
	return b.Sum(), nil
}

// Hash computes the unkeyed 32-byte BLAKE2b hash of the concatenation of
// parts, used for signature-payload hashing and pubkey fingerprints where
// no domain-separating key is needed.
func Hash(parts ...[]byte) ([]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("primitive: new hash: %w", err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil), nil
}

// GenerateEd25519 produces an Ed25519 keypair. A non-nil seed makes
// generation deterministic; pass nil to draw a fresh seed from the CSPRNG.
func GenerateEd25519(seed []byte) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if seed == nil {
		var err error
		seed, err = RandomBytes(Ed25519SeedSize)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(seed) != Ed25519SeedSize {
		return nil, nil, fmt.Errorf("primitive: ed25519 seed must be %d bytes, got %d", Ed25519SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv, nil
}

// SignDetached signs message with priv, returning a 64-byte signature.
func SignDetached(priv ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}

// VerifyDetached reports whether sig is a valid Ed25519 signature over
// message by pub.
func VerifyDetached(pub ed25519.PublicKey, message, sig []byte) bool {
	return ed25519.Verify(pub, message, sig)
}

// Ed25519PrivToX25519 converts an Ed25519 private key into its X25519
// scalar, following RFC 8032 §5.1.5: hash the 32-byte seed with SHA-512
// and clamp the low half.
func Ed25519PrivToX25519(priv ed25519.PrivateKey) ([]byte, error) {
	if len(priv) != Ed25519PrivSize {
		return nil, fmt.Errorf("primitive: bad ed25519 private key length: %d", len(priv))
	}
	seed := priv.Seed()
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	var xPriv [32]byte
	copy(xPriv[:], h[:32])
	return xPriv[:], nil
}

// Ed25519PubToX25519 converts an Ed25519 public key into its X25519
// Montgomery-form public key by decompressing the Edwards point and
// reading off its u-coordinate.
func Ed25519PubToX25519(pub ed25519.PublicKey) ([]byte, error) {
	if len(pub) != Ed25519PubSize {
		return nil, fmt.Errorf("primitive: bad ed25519 public key length: %d", len(pub))
	}
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("primitive: invalid ed25519 public key: %w", err)
	}
	return p.BytesMontgomery(), nil
}

// BoxSeal authenticates and encrypts message from senderPriv (Ed25519) to
// recipientPub (Ed25519) using an X25519-converted NaCl box: a fresh
// 24-byte nonce, XSalsa20-Poly1305. The returned slice is
// nonce||ciphertext; the ciphertext authenticates both confidentiality and
// sender identity to anyone holding recipientPriv and senderPub.
func BoxSeal(senderPriv ed25519.PrivateKey, recipientPub ed25519.PublicKey, message []byte) ([]byte, error) {
	senderX, err := Ed25519PrivToX25519(senderPriv)
	if err != nil {
		return nil, err
	}
	recipientX, err := Ed25519PubToX25519(recipientPub)
	if err != nil {
		return nil, err
	}
	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	var nonceArr [24]byte
	copy(nonceArr[:], nonce)
	var senderXArr, recipientXArr [32]byte
	copy(senderXArr[:], senderX)
	copy(recipientXArr[:], recipientX)

	sealed := box.Seal(nil, message, &nonceArr, &recipientXArr, &senderXArr)
	return append(nonce, sealed...), nil
}

// BoxOpen is the inverse of BoxSeal: it authenticates nonceCiphertext as
// having come from senderPub and decrypts it for recipientPriv.
func BoxOpen(recipientPriv ed25519.PrivateKey, senderPub ed25519.PublicKey, nonceCiphertext []byte) ([]byte, error) {
	if len(nonceCiphertext) < NonceSize {
		return nil, ErrBadCiphertext
	}
	recipientX, err := Ed25519PrivToX25519(recipientPriv)
	if err != nil {
		return nil, err
	}
	senderX, err := Ed25519PubToX25519(senderPub)
	if err != nil {
		return nil, err
	}
	var nonceArr [24]byte
	copy(nonceArr[:], nonceCiphertext[:NonceSize])
	var senderXArr, recipientXArr [32]byte
	copy(senderXArr[:], senderX)
	copy(recipientXArr[:], recipientX)

	plaintext, ok := box.Open(nil, nonceCiphertext[NonceSize:], &nonceArr, &senderXArr, &recipientXArr)
	if !ok {
		return nil, errors.New("primitive: box authentication failed")
	}
	return plaintext, nil
}

// Argon2Params names one of the three Argon2id cost tiers used across the
// module, mirroring libsodium's interactive/moderate/sensitive presets.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

var (
	// Argon2Interactive is fast enough for a foreground UI call.
	Argon2Interactive = Argon2Params{Time: 2, Memory: 64 * 1024, Threads: 1}
	// Argon2Moderate balances cost and latency for background re-derivation.
	Argon2Moderate = Argon2Params{Time: 3, Memory: 256 * 1024, Threads: 1}
	// Argon2Sensitive is deliberately slow (~0.5-1s); used for the account
	// login key and master key seed, per §4.H.
	Argon2Sensitive = Argon2Params{Time: 4, Memory: 1024 * 1024, Threads: 4}
)

// DeriveArgon2id derives a keyLen-byte key from password and salt under the
// given parameters. Deterministic in (password, salt, params).
func DeriveArgon2id(password, salt []byte, params Argon2Params, keyLen uint32) []byte {
	return argon2.IDKey(password, salt, params.Time, params.Memory, params.Threads, keyLen)
}

// ConstantTimeEqual reports whether a and b are equal in length and
// content, without leaking timing information about where they differ.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
