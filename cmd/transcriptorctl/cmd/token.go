package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(issueTokenCmd)
}

type issuedToken struct {
	Username    string `json:"username" yaml:"username"`
	Permissions string `json:"permissions" yaml:"permissions"`
	Token       string `json:"token" yaml:"token"`
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token <username>",
	Short: "Mint a bearer token for an existing account",
	Long: `Mint a bearer token for an existing account without its password,
for scripted imports and support sessions. Requests made with it get the
account's permission tier at request time. It expires after JWT_TTL.

Examples:
  transcriptorctl issue-token curator
  transcriptorctl issue-token curator -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Accounts.IssueToken.Execute(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		out := issuedToken{
			Username:    result.User.Username,
			Permissions: result.User.Tier.String(),
			Token:       result.Token,
		}
		if outputFormat != "table" {
			return formatOutput(cmd.OutOrStdout(), out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Token)
		return nil
	},
}
