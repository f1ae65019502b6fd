package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passvault/passvault-server/internal/client"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, err := promptLine("Email")
		if err != nil {
			return err
		}
		masterPassword, err := promptNewSecret("Master password")
		if err != nil {
			return err
		}

		account, err := newAnonymousClient().Register(cmd.Context(), email, masterPassword)
		if err != nil {
			return err
		}

		fmt.Printf("Account %s created. Log in with 'passvault login'.\n", account.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save a session token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, err := promptLine("Email")
		if err != nil {
			return err
		}
		masterPassword, err := promptSecret("Master password")
		if err != nil {
			return err
		}

		token, err := newAnonymousClient().Login(cmd.Context(), email, masterPassword)
		if err != nil {
			return err
		}

		if err := client.SaveSession(token); err != nil {
			return err
		}

		fmt.Println("Logged in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved session token",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := client.ClearSession(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
}
