package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/asymmetric"
	"github.com/kodumbeats/etebase-go/kdf"
	"github.com/kodumbeats/etebase-go/sharing"
	"github.com/kodumbeats/etebase-go/symmetric"
	"github.com/kodumbeats/etebase-go/wire"
)

var (
	acceptInvitationFile string
	acceptRecipientPriv  string
	acceptMainKey        string
)

var acceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept a collection invitation",
	Long: `Verify an Invitation's signature, unwrap the collection key with the
recipient's identity, and re-wrap it under the recipient's own main crypto
manager. Prints the re-wrapped key, base64url, ready to store as the
recipient's Collection.encryptionKey.`,
	Example: `  synccrypto accept --invitation invite.json --recipient-priv <b64> --main-key <b64>`,
	RunE:    runAccept,
}

func init() {
	rootCmd.AddCommand(acceptCmd)

	acceptCmd.Flags().StringVar(&acceptInvitationFile, "invitation", "", "path to the Invitation JSON (required)")
	acceptCmd.Flags().StringVar(&acceptRecipientPriv, "recipient-priv", "", "recipient's Ed25519 private key, base64url (required)")
	acceptCmd.Flags().StringVar(&acceptMainKey, "main-key", "", "recipient's account master key, base64url (required)")

	acceptCmd.MarkFlagRequired("invitation")
	acceptCmd.MarkFlagRequired("recipient-priv")
	acceptCmd.MarkFlagRequired("main-key")
}

func runAccept(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(acceptInvitationFile)
	if err != nil {
		return fmt.Errorf("accept: read invitation: %w", err)
	}
	var w wire.InvitationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("accept: parse invitation: %w", err)
	}

	wrapped, err := wire.DecodeB64(w.Wrapped)
	if err != nil {
		return fmt.Errorf("accept: decode wrapped: %w", err)
	}
	senderPub, err := wire.DecodeB64(w.SenderPub)
	if err != nil {
		return fmt.Errorf("accept: decode sender_pub: %w", err)
	}
	signature, err := wire.DecodeB64(w.Signature)
	if err != nil {
		return fmt.Errorf("accept: decode signature: %w", err)
	}
	inv := &sharing.Invitation{
		CollectionUID: w.CollectionUID,
		AccessLevel:   w.AccessLevel,
		Wrapped:       wrapped,
		SenderPub:     senderPub,
		Signature:     signature,
	}

	recipientPriv, err := wire.DecodeB64(acceptRecipientPriv)
	if err != nil {
		return fmt.Errorf("accept: decode recipient-priv: %w", err)
	}
	recipient, err := asymmetric.FromPrivateKey(recipientPriv)
	if err != nil {
		return fmt.Errorf("accept: recipient key: %w", err)
	}

	mainKeyBytes, err := wire.DecodeB64(acceptMainKey)
	if err != nil {
		return fmt.Errorf("accept: decode main-key: %w", err)
	}
	var mainKey [32]byte
	copy(mainKey[:], mainKeyBytes)
	mainCM, err := symmetric.New(&mainKey, kdf.ContextMain, 1)
	if err != nil {
		return fmt.Errorf("accept: main crypto manager: %w", err)
	}

	rewrapped, err := sharing.Accept(recipient, inv, mainCM)
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}

	fmt.Fprintln(os.Stdout, wire.EncodeB64(rewrapped))
	return nil
}
