package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/passvault/passvault-server/internal/client"
	"github.com/passvault/passvault-server/internal/crypto"
)

var (
	createTitle    string
	createCategory string
	createUsername string
	createURL      string
	createNotes    string

	updateTitle    string
	updateCategory string
	updateUsername string
	updateURL      string
	updateNotes    string
	updatePassword bool

	listCategory string
	listQuery    string

	showPassword bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Encrypt and store a credential record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newSessionClient()
		if err != nil {
			return err
		}

		title := createTitle
		if title == "" {
			if title, err = promptLine("Title"); err != nil {
				return err
			}
		}
		username := createUsername
		if username == "" {
			if username, err = promptLine("Username"); err != nil {
				return err
			}
		}
		secret, err := promptSecret("Password to store")
		if err != nil {
			return err
		}
		passphrase, err := promptSecret("Encryption passphrase")
		if err != nil {
			return err
		}

		encrypted, err := crypto.Encrypt(crypto.Payload{
			Username: username,
			Password: secret,
			URL:      createURL,
			Notes:    createNotes,
		}, passphrase, cryptoParams())
		if err != nil {
			return err
		}

		record, err := c.CreateRecord(cmd.Context(), title, encrypted, createCategory)
		if err != nil {
			return err
		}

		fmt.Printf("Record %s created in category %q.\n", record.ID, record.Category)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <record-id>",
	Short: "Fetch and decrypt a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSessionClient()
		if err != nil {
			return err
		}

		record, err := c.GetRecord(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		passphrase, err := promptSecret("Encryption passphrase")
		if err != nil {
			return err
		}

		payload, err := crypto.Decrypt(record.EncryptedPayload, passphrase)
		if err != nil {
			return fmt.Errorf("decryption failed, wrong passphrase or corrupted record")
		}

		fmt.Printf("Title:    %s\n", record.Title)
		fmt.Printf("Category: %s\n", record.Category)
		fmt.Printf("Username: %s\n", payload.Username)
		if showPassword {
			fmt.Printf("Password: %s\n", payload.Password)
		} else {
			fmt.Printf("Password: ******** (use --show to reveal)\n")
		}
		if payload.URL != "" {
			fmt.Printf("URL:      %s\n", payload.URL)
		}
		if payload.Notes != "" {
			fmt.Printf("Notes:    %s\n", payload.Notes)
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <record-id>",
	Short: "Modify a stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSessionClient()
		if err != nil {
			return err
		}

		var update client.RecordUpdate
		if cmd.Flags().Changed("title") {
			update.Title = &updateTitle
		}
		if cmd.Flags().Changed("category") {
			update.Category = &updateCategory
		}

		// Payload fields live inside the ciphertext, so changing any of them
		// means decrypting, editing and re-encrypting locally.
		payloadChanged := updatePassword ||
			cmd.Flags().Changed("username") ||
			cmd.Flags().Changed("url") ||
			cmd.Flags().Changed("notes")
		if payloadChanged {
			record, err := c.GetRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			passphrase, err := promptSecret("Encryption passphrase")
			if err != nil {
				return err
			}

			payload, err := crypto.Decrypt(record.EncryptedPayload, passphrase)
			if err != nil {
				return fmt.Errorf("decryption failed, wrong passphrase or corrupted record")
			}

			if cmd.Flags().Changed("username") {
				payload.Username = updateUsername
			}
			if cmd.Flags().Changed("url") {
				payload.URL = updateURL
			}
			if cmd.Flags().Changed("notes") {
				payload.Notes = updateNotes
			}
			if updatePassword {
				secret, err := promptSecret("New password to store")
				if err != nil {
					return err
				}
				payload.Password = secret
			}

			encrypted, err := crypto.Encrypt(payload, passphrase, cryptoParams())
			if err != nil {
				return err
			}
			update.EncryptedPayload = &encrypted
		}

		if update == (client.RecordUpdate{}) {
			return fmt.Errorf("nothing to update, pass at least one field flag")
		}

		record, err := c.UpdateRecord(cmd.Context(), args[0], update)
		if err != nil {
			return err
		}

		fmt.Printf("Record %s updated.\n", record.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newSessionClient()
		if err != nil {
			return err
		}

		records, err := c.ListRecords(cmd.Context(), listCategory, listQuery)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No records.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tUPDATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Category, r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <record-id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newSessionClient()
		if err != nil {
			return err
		}

		if err := c.DeleteRecord(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Println("Record deleted.")
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "record title")
	createCmd.Flags().StringVar(&createCategory, "category", "", "record category (defaults to General)")
	createCmd.Flags().StringVar(&createUsername, "username", "", "username to store")
	createCmd.Flags().StringVar(&createURL, "url", "", "URL to store")
	createCmd.Flags().StringVar(&createNotes, "notes", "", "notes to store")

	getCmd.Flags().BoolVar(&showPassword, "show", false, "print the decrypted password")

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new record title")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "new record category")
	updateCmd.Flags().StringVar(&updateUsername, "username", "", "new stored username")
	updateCmd.Flags().StringVar(&updateURL, "url", "", "new stored URL")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new stored notes")
	updateCmd.Flags().BoolVar(&updatePassword, "password", false, "prompt for a new stored password")

	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	listCmd.Flags().StringVar(&listQuery, "q", "", "filter by title substring")

	rootCmd.AddCommand(createCmd, getCmd, updateCmd, listCmd, rmCmd)
}
