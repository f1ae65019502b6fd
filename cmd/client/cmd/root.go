// Package cmd implements the passvault command-line client. Payloads are
// encrypted and decrypted locally; the server only ever sees ciphertext.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passvault/passvault-server/internal/client"
	"github.com/passvault/passvault-server/internal/crypto"
)

var (
	serverURL     string
	kdfIterations int
)

var rootCmd = &cobra.Command{
	Use:   "passvault",
	Short: "passvault is a zero-knowledge credential vault client",
	Long: `passvault stores credentials on a server that never sees them in
plaintext. Records are encrypted locally with a passphrase-derived key before
upload and decrypted locally after download.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "vault server URL")
	rootCmd.PersistentFlags().IntVar(&kdfIterations, "kdf-iterations", crypto.DefaultIterations,
		"PBKDF2 iteration count for newly encrypted records")
}

// cryptoParams returns the key derivation parameters for new ciphertexts.
// The iteration count travels inside each ciphertext header, so existing
// records stay readable when the flag changes.
func cryptoParams() crypto.Params {
	return crypto.Params{Iterations: kdfIterations}
}

// newAnonymousClient builds a client without a session token, for register
// and login.
func newAnonymousClient() *client.Client {
	return client.New(serverURL, "")
}

// newSessionClient builds a client from the saved session token.
func newSessionClient() (*client.Client, error) {
	token, err := client.LoadSession()
	if err != nil {
		return nil, err
	}
	return client.New(serverURL, token), nil
}
