package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/asymmetric"
	"github.com/kodumbeats/etebase-go/internal/logger"
	"github.com/kodumbeats/etebase-go/wire"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a standalone Ed25519 keypair",
	Long: `Generate a fresh Ed25519 keypair from the process CSPRNG and print
its public and private keys as base64url JSON. This is independent of any
account; it is useful for producing a sharing identity or testing fixture.`,
	Example: `  synccrypto keygen`,
	RunE:    runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	m, err := asymmetric.KeyGen(nil)
	if err != nil {
		return fmt.Errorf("keygen: %w", err)
	}
	logger.Info("keypair generated", logger.String("id", m.ID()))

	out, err := json.MarshalIndent(map[string]string{
		"id":          m.ID(),
		"public_key":  wire.EncodeB64(m.PublicKey()),
		"private_key": wire.EncodeB64(m.PrivateKey()),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("keygen: marshal: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
