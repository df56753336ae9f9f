package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/sharing"
	"github.com/kodumbeats/etebase-go/wire"
)

var (
	fingerprintPubkey    string
	fingerprintDelimiter string
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print an out-of-band pubkey fingerprint",
	Long: `Render an Ed25519 public key's BLAKE2b fingerprint as groups of
zero-padded five-digit decimal words, four per line, for a human to read
over a phone call or compare against another device.`,
	Example: `  synccrypto fingerprint --pubkey <b64>`,
	RunE:    runFingerprint,
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().StringVar(&fingerprintPubkey, "pubkey", "", "Ed25519 public key, base64url (required)")
	fingerprintCmd.Flags().StringVar(&fingerprintDelimiter, "delimiter", " ", "delimiter between words on a line")

	fingerprintCmd.MarkFlagRequired("pubkey")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	pub, err := wire.DecodeB64(fingerprintPubkey)
	if err != nil {
		return fmt.Errorf("fingerprint: decode pubkey: %w", err)
	}

	out, err := sharing.GetPrettyFingerprint(pub, fingerprintDelimiter)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	fmt.Println(out)
	return nil
}
