package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/asymmetric"
	"github.com/kodumbeats/etebase-go/internal/logger"
	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

var rotateMainKey string

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate an account's long-term identity keypair",
	Long: `Generate a fresh Ed25519 identity keypair and re-encrypt it under
the account's existing main cipher key. This does not change the account
password or master key, only the identity used for signing and sharing;
collections shared under the old identity are unaffected since sharing
wraps to the recipient's identity, not the sender's.`,
	Example: `  synccrypto rotate --main-key <b64>`,
	RunE:    runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)

	rotateCmd.Flags().StringVar(&rotateMainKey, "main-key", "", "account's existing master key, base64url (required)")
	rotateCmd.MarkFlagRequired("main-key")
}

func runRotate(cmd *cobra.Command, args []string) error {
	mainKeyBytes, err := wire.DecodeB64(rotateMainKey)
	if err != nil {
		return fmt.Errorf("rotate: decode main-key: %w", err)
	}
	var mainKey [32]byte
	copy(mainKey[:], mainKeyBytes)
	mainCM, err := symmetric.New(&mainKey, kdf.ContextMain, 1)
	if err != nil {
		return fmt.Errorf("rotate: main crypto manager: %w", err)
	}

	newIdentity, err := asymmetric.KeyGen(nil)
	if err != nil {
		return fmt.Errorf("rotate: generate identity: %w", err)
	}
	encryptedContent, err := mainCM.Encrypt(newIdentity.PrivateKey(), nil)
	if err != nil {
		return fmt.Errorf("rotate: encrypt identity: %w", err)
	}
	logger.Info("identity key rotated", logger.String("new_id", newIdentity.ID()))

	out, err := json.MarshalIndent(map[string]string{
		"pubkey":            wire.EncodeB64(newIdentity.PublicKey()),
		"encrypted_content": wire.EncodeB64(encryptedContent),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("rotate: marshal: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
