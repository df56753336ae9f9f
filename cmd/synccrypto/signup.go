package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodumbeats/etebase-go/account"
)

var (
	signupUsername string
	signupPassword string
	signupServer   string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account and print its wire-format AccountData",
	Long: `Derive an account's login and master keys from a password via
Argon2id, generate a long-term Ed25519 identity, and print the
server-publishable user record and the opaque AccountData export as JSON.`,
	Example: `  synccrypto signup --username alice --password "correct horse battery staple"`,
	RunE:    runSignup,
}

func init() {
	rootCmd.AddCommand(signupCmd)

	signupCmd.Flags().StringVarP(&signupUsername, "username", "u", "", "account username (required)")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "account password (required)")
	signupCmd.Flags().StringVar(&signupServer, "server", "", "server URL recorded in the exported AccountData")

	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("password")
}

func runSignup(cmd *cobra.Command, args []string) error {
	acc, err := account.Signup(signupUsername, []byte(signupPassword))
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	out, err := json.MarshalIndent(acc.ToWire(signupServer), "", "  ")
	if err != nil {
		return fmt.Errorf("signup: marshal account data: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
