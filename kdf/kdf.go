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

// Package kdf implements the context-labeled key-derivation tree: given a
// 32-byte parent key and an 8-byte context label, it deterministically
// derives a (cipher key, MAC key, asymmetric seed) triple. Domain
// separation between the three subkeys, and between contexts, rests
// entirely on the keyed BLAKE2b construction in package primitive.
package kdf

import "github.com/kodumbeats/etebase-go/primitive"

// Fixed subkey ids. The numbering is part of the wire-compatible protocol:
// implementations MUST use these exact ids.
const (
	subkeyCipher   = 1
	subkeyMac      = 2
	subkeyAsymSeed = 3
)

// Context labels are exactly 8 ASCII bytes, right-padded with 0x20 (space),
// never 0x00. Padding with a NUL byte would not interoperate.
var (
	ContextMain       = padContext("Main")
	ContextCollection = padContext("Col")
	ContextItem       = padContext("ColItem")
)

func padContext(label string) [8]byte {
	var c [8]byte
	for i := range c {
		c[i] = ' '
	}
	copy(c[:], label)
	return c
}

// Derive computes the 32-byte subkey for (context, subkeyID) under parent.
// It is exposed for callers that need a subkey id outside the three named
// helpers below; ordinary callers should prefer CipherKey/MacKey/AsymSeed.
func Derive(context [8]byte, subkeyID uint64, parent *[32]byte) (*[32]byte, error) {
	out, err := primitive.DeriveFromKey(parent[:], context, subkeyID)
	if err != nil {
		return nil, err
	}
	var result [32]byte
	copy(result[:], out)
	return &result, nil
}

// CipherKey derives the AEAD encryption key for context under parent.
func CipherKey(context [8]byte, parent *[32]byte) (*[32]byte, error) {
	return Derive(context, subkeyCipher, parent)
}

// MacKey derives the MAC key for context under parent.
func MacKey(context [8]byte, parent *[32]byte) (*[32]byte, error) {
	return Derive(context, subkeyMac, parent)
}

// AsymSeed derives the Ed25519 seed for context under parent.
func AsymSeed(context [8]byte, parent *[32]byte) (*[32]byte, error) {
	return Derive(context, subkeyAsymSeed, parent)
}
