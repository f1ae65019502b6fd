package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show subscription status and record quota",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newSessionClient()
		if err != nil {
			return err
		}

		status, err := c.SubscriptionStatus(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Subscription: %s\n", status.Status)
		if status.Status == "active" {
			fmt.Printf("Records:      %d (unlimited)\n", status.RecordCount)
		} else {
			fmt.Printf("Records:      %d / %d\n", status.RecordCount, status.Limit)
		}
		if !status.CanCreateRecord {
			fmt.Println("Record limit reached. Upgrade to store more.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
