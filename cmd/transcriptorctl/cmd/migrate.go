package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the users, scrolls, regions and votes tables.

Examples:
  transcriptorctl migrate
  STORAGE_DRIVER=postgres POSTGRES_DSN=... transcriptorctl migrate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runtime.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		result := map[string]string{
			"status": "migrated",
			"driver": runtime.Config.StorageDriver,
		}
		if outputFormat != "table" {
			return formatOutput(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema migrated (%s)\n", runtime.Config.StorageDriver)
		return nil
	},
}
