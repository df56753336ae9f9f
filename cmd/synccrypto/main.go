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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/config"
)

var rootCmd = &cobra.Command{
	Use:   "synccrypto",
	Short: "synccrypto CLI - a developer harness for the E2EE sync crypto core",
	Long: `synccrypto is a small command-line harness around the client-side
cryptographic core of an end-to-end encrypted sync SDK.

This tool supports:
- Account signup and key derivation (Argon2id)
- Standalone Ed25519 keypair generation
- Collection sharing: invite and accept
- Out-of-band pubkey fingerprints
- Identity key rotation`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Commands are registered in their respective files:
	// signup.go, keygen.go, invite.go, accept.go, fingerprint.go, rotate.go

	if cfg, err := config.Load(); err == nil {
		cfg.Apply()
	}
}
