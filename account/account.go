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

// Package account implements the account root: password -> login key +
// master encryption key, unlocking a per-user wrapped content blob storing
// the user's long-term Ed25519 identity.
package account

import (
	"crypto/ed25519"

	"golang.org/x/sync/errgroup"

	"github.com/kodumbeats/etebase-go/asymmetric"
	"github.com/kodumbeats/etebase-go/errs"
	"github.com/kodumbeats/etebase-go/internal/logger"
	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/primitive"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

const wireVersion = 1

// Subkey ids this package carves out of the Argon2id-stretched password
// key, distinct from the 1/2/3 reserved by package kdf for cipher/MAC/seed
// subkeys of an already-established parent key.
const (
	subkeyLoginProof = 4
	subkeyMasterKey  = 5
)

// loginParams mirrors §4.H's "ops=SENSITIVE, mem=MODERATE": the slowest
// time cost tier, but capped at the moderate memory tier so login remains
// usable on memory-constrained clients.
var loginParams = primitive.Argon2Params{
	Time:    primitive.Argon2Sensitive.Time,
	Memory:  primitive.Argon2Moderate.Memory,
	Threads: primitive.Argon2Sensitive.Threads,
}

// User is the server-visible half of an account.
type User struct {
	Username         string
	Salt             []byte
	LoginPubkey      ed25519.PublicKey
	Pubkey           ed25519.PublicKey
	EncryptedContent []byte
}

// AccountData is the opaque export/import format for a persisted account
// (§6): round-trips byte-identically across versions of the same protocol
// version.
type AccountData struct {
	Version   int
	Key       []byte // the raw master key bytes that mainCM is derived from
	User      User
	ServerURL string
}

// Account is the unlocked, in-memory state produced by Signup or Login.
// On Logout the master key buffer is zeroized.
type Account struct {
	username  string
	masterKey [32]byte
	mainCM    *symmetric.Manager
	identity  *asymmetric.Manager
	user      User
}

// deriveStretched runs the single Argon2id stretch for (password, salt) on
// a worker goroutine, per §5: "Implementations MAY offload Argon2id... to
// a worker thread; correctness does not depend on it."
func deriveStretched(password, salt []byte) ([]byte, error) {
	var stretched []byte
	g := new(errgroup.Group)
	g.Go(func() error {
		stretched = primitive.DeriveArgon2id(password, salt, loginParams, primitive.KeySize)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stretched, nil
}

// deriveLoginAndMaster carves the login-proof and master-key subkeys out
// of a single Argon2id stretch, per §4.H: "the same derivation is used for
// both login proof and master-key seed; separate context labels (subkey
// ids) carve out distinct child keys."
func deriveLoginAndMaster(stretched []byte) (loginSeed, masterKey *[32]byte, err error) {
	var parent [32]byte
	copy(parent[:], stretched)
	loginSeed, err = kdf.Derive(kdf.ContextMain, subkeyLoginProof, &parent)
	if err != nil {
		return nil, nil, err
	}
	masterKey, err = kdf.Derive(kdf.ContextMain, subkeyMasterKey, &parent)
	if err != nil {
		return nil, nil, err
	}
	return loginSeed, masterKey, nil
}

// Signup prepares an account's key material offline: a fresh salt, the
// password-derived login and master keys, a fresh long-term Ed25519
// identity keypair, and that identity encrypted under the main cipher key.
// The returned Account's User (see Account.User) is what gets published to
// the server; the server never sees password, master key, or identity
// private key.
func Signup(username string, password []byte) (*Account, error) {
	salt, err := primitive.RandomBytes(primitive.SaltSize)
	if err != nil {
		return nil, err
	}

	stretched, err := deriveStretched(password, salt)
	if err != nil {
		return nil, err
	}
	loginSeed, masterKey, err := deriveLoginAndMaster(stretched)
	if err != nil {
		return nil, err
	}

	loginKeypair, err := asymmetric.KeyGen(loginSeed[:])
	if err != nil {
		return nil, err
	}
	identity, err := asymmetric.KeyGen(nil)
	if err != nil {
		return nil, err
	}

	mainCM, err := symmetric.New(masterKey, kdf.ContextMain, wireVersion)
	if err != nil {
		return nil, err
	}
	encryptedContent, err := mainCM.Encrypt(identity.PrivateKey(), nil)
	if err != nil {
		return nil, err
	}

	acc := &Account{
		username: username,
		mainCM:   mainCM,
		identity: identity,
		user: User{
			Username:         username,
			Salt:             salt,
			LoginPubkey:      loginKeypair.PublicKey(),
			Pubkey:           identity.PublicKey(),
			EncryptedContent: encryptedContent,
		},
	}
	copy(acc.masterKey[:], masterKey[:])
	logger.Info("account created",
		logger.String("username", username),
		logger.String("identity_pubkey", identity.ID()),
	)
	return acc, nil
}

// Login recomputes loginKey and masterKey from password and the server's
// salt, signs challenge with the reconstructed login keypair (for the
// transport collaborator to present to the server), and decrypts
// encryptedContent to recover the long-term identity.
func Login(username string, password []byte, user User, challenge []byte) (*Account, []byte, error) {
	stretched, err := deriveStretched(password, user.Salt)
	if err != nil {
		return nil, nil, err
	}
	loginSeed, masterKey, err := deriveLoginAndMaster(stretched)
	if err != nil {
		return nil, nil, err
	}

	loginKeypair, err := asymmetric.KeyGen(loginSeed[:])
	if err != nil {
		return nil, nil, err
	}
	if !primitive.ConstantTimeEqual(loginKeypair.PublicKey(), user.LoginPubkey) {
		logger.Warn("login rejected: reconstructed login key mismatch",
			logger.String("username", username),
		)
		return nil, nil, errs.NewIntegrity(errs.KindAccount, username, "login", nil)
	}
	signedChallenge, err := loginKeypair.SignDetached(challenge)
	if err != nil {
		return nil, nil, err
	}

	mainCM, err := symmetric.New(masterKey, kdf.ContextMain, wireVersion)
	if err != nil {
		return nil, nil, err
	}
	identityPriv, err := mainCM.Decrypt(user.EncryptedContent, nil)
	if err != nil {
		return nil, nil, errs.NewIntegrity(errs.KindAccount, username, "unwrap_identity", err)
	}
	identity, err := asymmetric.FromPrivateKey(identityPriv)
	if err != nil {
		return nil, nil, err
	}

	acc := &Account{
		username: username,
		mainCM:   mainCM,
		identity: identity,
		user:     user,
	}
	copy(acc.masterKey[:], masterKey[:])
	logger.Info("login succeeded", logger.String("username", username))
	return acc, signedChallenge, nil
}

// ChangePassword derives new login and master keys from newPassword,
// re-encrypts the identity under the new main cipher key, and returns the
// updated User to ship atomically. Per §9's open question, this does not
// re-wrap any outstanding sharing invitations.
func (a *Account) ChangePassword(newPassword []byte) (User, error) {
	newSalt, err := primitive.RandomBytes(primitive.SaltSize)
	if err != nil {
		return User{}, err
	}
	stretched, err := deriveStretched(newPassword, newSalt)
	if err != nil {
		return User{}, err
	}
	loginSeed, masterKey, err := deriveLoginAndMaster(stretched)
	if err != nil {
		return User{}, err
	}

	newLoginKeypair, err := asymmetric.KeyGen(loginSeed[:])
	if err != nil {
		return User{}, err
	}
	newMainCM, err := symmetric.New(masterKey, kdf.ContextMain, wireVersion)
	if err != nil {
		return User{}, err
	}
	encryptedContent, err := newMainCM.Encrypt(a.identity.PrivateKey(), nil)
	if err != nil {
		return User{}, err
	}

	a.mainCM = newMainCM
	copy(a.masterKey[:], masterKey[:])
	a.user.Salt = newSalt
	a.user.LoginPubkey = newLoginKeypair.PublicKey()
	a.user.EncryptedContent = encryptedContent
	logger.Info("password changed", logger.String("username", a.username))
	return a.user, nil
}

// Logout zeroizes the master key buffer. The Account must not be used
// afterward.
func (a *Account) Logout() {
	for i := range a.masterKey {
		a.masterKey[i] = 0
	}
	a.mainCM = nil
	a.identity = nil
	logger.Debug("account logged out", logger.String("username", a.username))
}

// MainCryptoManager returns the account's main symmetric manager, the
// parent for every Collection's key-wrapping.
func (a *Account) MainCryptoManager() *symmetric.Manager { return a.mainCM }

// Identity returns the account's long-term Ed25519 signing/encryption
// manager.
func (a *Account) Identity() *asymmetric.Manager { return a.identity }

// User returns the server-visible user record.
func (a *Account) User() User { return a.user }

// ToWire renders the account as the persisted AccountData export format.
func (a *Account) ToWire(serverURL string) wire.AccountDataWire {
	return wire.AccountDataWire{
		Version: wireVersion,
		Key:     wire.EncodeB64(a.masterKey[:]),
		User: wire.AccountUserWire{
			Username:         a.user.Username,
			Salt:             wire.EncodeB64(a.user.Salt),
			LoginPubkey:      wire.EncodeB64(a.user.LoginPubkey),
			Pubkey:           wire.EncodeB64(a.user.Pubkey),
			EncryptedContent: wire.EncodeB64(a.user.EncryptedContent),
		},
		ServerURL: serverURL,
	}
}
