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

// Package wire holds the JSON-serializable shapes the crypto core hands to
// its transport collaborator, and the encoding helpers those shapes share:
// base64url, and the alphanumeric uid alphabet used by Collection/Item.
package wire

import (
	"encoding/base64"

	"github.com/kodumbeats/etebase-go/primitive"
)

// EncodeB64 encodes b as unpadded URL-safe base64, the wire encoding every
// binary field in this protocol uses.
func EncodeB64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeB64 is the inverse of EncodeB64.
func DecodeB64(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// uidRawSize is the amount of raw entropy behind a Collection/Item uid
// before alphabet narrowing; base64 of 24 bytes is 32 characters.
const uidRawSize = 24

// GenUID draws 24 random bytes, base64url-encodes them, and narrows the
// alphabet to alphanumeric by replacing '-' with 'a' and '_' with 'b'.
// This is deliberate: the result is an identifier, not a key, and the
// resulting two-slot bias is accepted.
func GenUID() (string, error) {
	raw, err := primitive.RandomBytes(uidRawSize)
	if err != nil {
		return "", err
	}
	return NarrowUIDAlphabet(EncodeB64(raw)), nil
}

// NarrowUIDAlphabet replaces '-' with 'a' and '_' with 'b' in a base64url
// string, yielding the alphanumeric uid form used on the wire.
func NarrowUIDAlphabet(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch c {
		case '-':
			out[i] = 'a'
		case '_':
			out[i] = 'b'
		}
	}
	return string(out)
}

// AccessLevel is a collection's sharing access tier, serialized on the
// wire as a short string.
type AccessLevel string

const (
	AccessAdmin     AccessLevel = "adm"
	AccessReadWrite AccessLevel = "rw"
	AccessReadOnly  AccessLevel = "ro"
)

// RevisionWire is the write-shape of a Revision (§6): the core never
// produces chunksUrls itself, that field is added by the transport
// collaborator after resolving content-addressed references.
type RevisionWire struct {
	UID     string   `json:"uid"`
	Meta    *string  `json:"meta"`
	Chunks  []string `json:"chunks"`
	Deleted bool     `json:"deleted"`
}

// CollectionWire is the write-shape of a Collection (§6); ctag/stoken and
// accessLevel are populated by the transport collaborator on read, not by
// the core.
type CollectionWire struct {
	UID           string       `json:"uid"`
	Version       int          `json:"version"`
	EncryptionKey string       `json:"encryptionKey"`
	Content       RevisionWire `json:"content"`
	AccessLevel   AccessLevel  `json:"accessLevel,omitempty"`
	CTag          string       `json:"ctag,omitempty"`
	SToken        string       `json:"stoken,omitempty"`
}

// InvitationWire is the wire shape of a Sharing invitation (§6).
type InvitationWire struct {
	CollectionUID string      `json:"collection_uid"`
	AccessLevel   AccessLevel `json:"access_level"`
	Wrapped       string      `json:"wrapped"`
	SenderPub     string      `json:"sender_pub"`
	Signature     string      `json:"signature"`
}

// AccountUserWire is the user sub-object of a persisted AccountData (§6).
type AccountUserWire struct {
	Username         string `json:"username"`
	Salt             string `json:"salt"`
	LoginPubkey      string `json:"loginPubkey"`
	Pubkey           string `json:"pubkey"`
	EncryptedContent string `json:"encryptedContent"`
}

// AccountDataWire is the opaque export/import format for a persisted
// account (§6): implementations must round-trip it byte-identically
// across versions of the same protocol version.
type AccountDataWire struct {
	Version   int             `json:"version"`
	Key       string          `json:"key"`
	User      AccountUserWire `json:"user"`
	ServerURL string          `json:"serverUrl,omitempty"`
}
