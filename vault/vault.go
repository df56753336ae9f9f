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

// Package vault lets a client cache its unlocked AccountData.key (main
// encryption key) across process restarts behind a local passphrase. This
// is optional: no operation in package account requires it, it exists
// purely so a client need not prompt for the account password on every
// launch.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kodumbeats/etebase-go/primitive"
	"github.com/kodumbeats/etebase-go/wire"
)

var (
	ErrKeyNotFound       = errors.New("vault: key not found")
	ErrInvalidPassphrase = errors.New("vault: invalid passphrase")
	ErrInvalidKeyID      = errors.New("vault: invalid key id")
)

// SecureVault is the key-at-rest contract every vault backend satisfies.
type SecureVault interface {
	StoreEncrypted(keyID string, key []byte, passphrase string) error
	LoadDecrypted(keyID string, passphrase string) ([]byte, error)
	Delete(keyID string) error
	Exists(keyID string) bool
	ListKeys() []string
}

// encryptedKeyData is the on-disk/serialized shape of a vault-wrapped key.
type encryptedKeyData struct {
	Version    string `json:"version"`
	KeyID      string `json:"key_id"`
	Salt       string `json:"salt"`
	Ciphertext string `json:"ciphertext"`
}

func seal(key []byte, passphrase string) (encryptedKeyData, error) {
	salt, err := primitive.RandomBytes(primitive.SaltSize)
	if err != nil {
		return encryptedKeyData{}, err
	}
	derivedKey := primitive.DeriveArgon2id([]byte(passphrase), salt, primitive.Argon2Sensitive, primitive.KeySize)
	ciphertext, err := primitive.Encrypt(derivedKey, key, nil)
	if err != nil {
		return encryptedKeyData{}, err
	}
	return encryptedKeyData{
		Version:    "1",
		Salt:       wire.EncodeB64(salt),
		Ciphertext: wire.EncodeB64(ciphertext),
	}, nil
}

func open(data encryptedKeyData, passphrase string) ([]byte, error) {
	salt, err := wire.DecodeB64(data.Salt)
	if err != nil {
		return nil, fmt.Errorf("vault: decode salt: %w", err)
	}
	ciphertext, err := wire.DecodeB64(data.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("vault: decode ciphertext: %w", err)
	}
	derivedKey := primitive.DeriveArgon2id([]byte(passphrase), salt, primitive.Argon2Sensitive, primitive.KeySize)
	plaintext, err := primitive.Decrypt(derivedKey, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}
	return plaintext, nil
}

// FileVault implements SecureVault using filesystem storage, one JSON file
// per key under basePath.
type FileVault struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileVault creates a file-based vault rooted at basePath, creating the
// directory if needed.
func NewFileVault(basePath string) (*FileVault, error) {
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("vault: create directory: %w", err)
	}
	return &FileVault{basePath: basePath}, nil
}

func (v *FileVault) getKeyPath(keyID string) string {
	safeKeyID := filepath.Base(keyID)
	return filepath.Join(v.basePath, safeKeyID+".json")
}

// StoreEncrypted derives a key-wrapping key from passphrase via Argon2id
// and seals key under it with XChaCha20-Poly1305.
func (v *FileVault) StoreEncrypted(keyID string, key []byte, passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if keyID == "" {
		return ErrInvalidKeyID
	}

	data, err := seal(key, passphrase)
	if err != nil {
		return err
	}
	data.KeyID = keyID

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: marshal: %w", err)
	}
	if err := os.WriteFile(v.getKeyPath(keyID), jsonData, 0o600); err != nil {
		return fmt.Errorf("vault: write: %w", err)
	}
	return nil
}

// LoadDecrypted reverses StoreEncrypted.
func (v *FileVault) LoadDecrypted(keyID string, passphrase string) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if keyID == "" {
		return nil, ErrInvalidKeyID
	}

	jsonData, err := os.ReadFile(v.getKeyPath(keyID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("vault: read: %w", err)
	}
	var data encryptedKeyData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("vault: unmarshal: %w", err)
	}
	return open(data, passphrase)
}

// Delete removes a key from the vault.
func (v *FileVault) Delete(keyID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if keyID == "" {
		return ErrInvalidKeyID
	}
	if err := os.Remove(v.getKeyPath(keyID)); err != nil {
		if os.IsNotExist(err) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("vault: delete: %w", err)
	}
	return nil
}

// Exists reports whether keyID has a stored entry.
func (v *FileVault) Exists(keyID string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if keyID == "" {
		return false
	}
	_, err := os.Stat(v.getKeyPath(keyID))
	return err == nil
}

// ListKeys returns every key id stored in the vault.
func (v *FileVault) ListKeys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var keys []string
	entries, err := os.ReadDir(v.basePath)
	if err != nil {
		return keys
	}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			keys = append(keys, entry.Name()[:len(entry.Name())-len(".json")])
		}
	}
	return keys
}

// MemoryVault implements SecureVault in memory, for tests and for clients
// that only want vault semantics for the lifetime of a process.
type MemoryVault struct {
	entries map[string]encryptedKeyData
	mu      sync.RWMutex
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{entries: make(map[string]encryptedKeyData)}
}

// StoreEncrypted seals key under passphrase and holds it in memory.
func (m *MemoryVault) StoreEncrypted(keyID string, key []byte, passphrase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keyID == "" {
		return ErrInvalidKeyID
	}
	data, err := seal(key, passphrase)
	if err != nil {
		return err
	}
	data.KeyID = keyID
	m.entries[keyID] = data
	return nil
}

// LoadDecrypted reverses StoreEncrypted.
func (m *MemoryVault) LoadDecrypted(keyID string, passphrase string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if keyID == "" {
		return nil, ErrInvalidKeyID
	}
	data, ok := m.entries[keyID]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return open(data, passphrase)
}

// Delete removes a key from memory.
func (m *MemoryVault) Delete(keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keyID == "" {
		return ErrInvalidKeyID
	}
	if _, ok := m.entries[keyID]; !ok {
		return ErrKeyNotFound
	}
	delete(m.entries, keyID)
	return nil
}

// Exists reports whether keyID has a stored entry.
func (m *MemoryVault) Exists(keyID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[keyID]
	return ok
}

// ListKeys returns every key id stored in memory.
func (m *MemoryVault) ListKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for keyID := range m.entries {
		keys = append(keys, keyID)
	}
	return keys
}
