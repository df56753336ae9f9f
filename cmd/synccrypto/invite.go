package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/asymmetric"
	"github.com/kodumbeats/etebase-go/sharing"
	"github.com/kodumbeats/etebase-go/wire"
)

var (
	inviteSenderPriv    string
	inviteCollectionUID string
	inviteRecipientPub  string
	inviteCollectionKey string
	inviteAccessLevel   string
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite a recipient to a collection",
	Long: `Wrap a collection's symmetric key to a recipient's Ed25519 public
key under the sender's identity, sign the resulting payload, and print the
Invitation as JSON.`,
	Example: `  synccrypto invite --sender-priv <b64> --collection-uid abc123 \
    --recipient-pub <b64> --collection-key <b64> --access rw`,
	RunE: runInvite,
}

func init() {
	rootCmd.AddCommand(inviteCmd)

	inviteCmd.Flags().StringVar(&inviteSenderPriv, "sender-priv", "", "sender's Ed25519 private key, base64url (required)")
	inviteCmd.Flags().StringVar(&inviteCollectionUID, "collection-uid", "", "collection uid being shared (required)")
	inviteCmd.Flags().StringVar(&inviteRecipientPub, "recipient-pub", "", "recipient's Ed25519 public key, base64url (required)")
	inviteCmd.Flags().StringVar(&inviteCollectionKey, "collection-key", "", "collection's symmetric key, base64url (required)")
	inviteCmd.Flags().StringVar(&inviteAccessLevel, "access", string(wire.AccessReadWrite), "access level: adm, rw, or ro")

	inviteCmd.MarkFlagRequired("sender-priv")
	inviteCmd.MarkFlagRequired("collection-uid")
	inviteCmd.MarkFlagRequired("recipient-pub")
	inviteCmd.MarkFlagRequired("collection-key")
}

func runInvite(cmd *cobra.Command, args []string) error {
	senderPriv, err := wire.DecodeB64(inviteSenderPriv)
	if err != nil {
		return fmt.Errorf("invite: decode sender-priv: %w", err)
	}
	sender, err := asymmetric.FromPrivateKey(senderPriv)
	if err != nil {
		return fmt.Errorf("invite: sender key: %w", err)
	}
	recipientPub, err := wire.DecodeB64(inviteRecipientPub)
	if err != nil {
		return fmt.Errorf("invite: decode recipient-pub: %w", err)
	}
	collectionKey, err := wire.DecodeB64(inviteCollectionKey)
	if err != nil {
		return fmt.Errorf("invite: decode collection-key: %w", err)
	}

	inv, err := sharing.Invite(sender, inviteCollectionUID, recipientPub, collectionKey, wire.AccessLevel(inviteAccessLevel))
	if err != nil {
		return fmt.Errorf("invite: %w", err)
	}

	out, err := json.MarshalIndent(wire.InvitationWire{
		CollectionUID: inv.CollectionUID,
		AccessLevel:   inv.AccessLevel,
		Wrapped:       wire.EncodeB64(inv.Wrapped),
		SenderPub:     wire.EncodeB64(inv.SenderPub),
		Signature:     wire.EncodeB64(inv.Signature),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("invite: marshal: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
