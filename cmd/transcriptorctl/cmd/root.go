// Package cmd implements the transcriptorctl operator commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MF-patino/HerculaneumTranscriptor/internal/app/bootstrap"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	outputFormat string

	// runtime is built once per invocation from the same environment and
	// CONFIG_FILE the API process reads.
	runtime *bootstrap.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "transcriptorctl",
	Short: "Operator CLI for the Herculaneum transcriptor",
	Long: `transcriptorctl runs maintenance tasks against the transcriptor
database: schema migration, root account reconciliation and operator tokens.

Configuration comes from the same environment variables and CONFIG_FILE
as the API process.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		switch outputFormat {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
		}

		var err error
		runtime, err = bootstrap.BuildRuntime(cmd.Context(), "cli")
		if err != nil {
			return fmt.Errorf("failed to initialise runtime: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if runtime != nil {
			_ = runtime.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// formatOutput writes data as JSON or YAML. Table output is handled by each
// command.
func formatOutput(w io.Writer, data any) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return nil
	}
}
