package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reconcileRootCmd)
}

type rootAccountState struct {
	Username  string    `json:"username" yaml:"username"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

type reconcileRootResult struct {
	Action string            `json:"action" yaml:"action"`
	Before *rootAccountState `json:"before,omitempty" yaml:"before,omitempty"`
	After  rootAccountState  `json:"after" yaml:"after"`
}

var reconcileRootCmd = &cobra.Command{
	Use:   "reconcile-root",
	Short: "Align the root account with ROOT_USERNAME and ROOT_PASSWORD",
	Long: `Create the root account if missing, or update its username and
password to the configured values. Running it twice is a no-op.

Examples:
  ROOT_USERNAME=curator ROOT_PASSWORD=... transcriptorctl reconcile-root
  transcriptorctl reconcile-root -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reconciliation, err := runtime.ReconcileRoot(cmd.Context())
		if err != nil {
			return fmt.Errorf("reconcile root: %w", err)
		}

		result := reconcileRootResult{
			Action: string(reconciliation.Action),
			After: rootAccountState{
				Username:  reconciliation.After.Username,
				UserID:    reconciliation.After.UserID,
				UpdatedAt: reconciliation.After.UpdatedAt,
			},
		}
		if reconciliation.Before != nil {
			result.Before = &rootAccountState{
				Username:  reconciliation.Before.Username,
				UserID:    reconciliation.Before.UserID,
				UpdatedAt: reconciliation.Before.UpdatedAt,
			}
		}
		if outputFormat != "table" {
			return formatOutput(cmd.OutOrStdout(), result)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STATE\tUSERNAME\tUSER ID\tUPDATED")
		if result.Before != nil {
			fmt.Fprintf(w, "before\t%s\t%s\t%s\n", result.Before.Username, result.Before.UserID, result.Before.UpdatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "after\t%s\t%s\t%s\n", result.After.Username, result.After.UserID, result.After.UpdatedAt.Format(time.RFC3339))
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Root account %s\n", result.Action)
		return nil
	},
}
