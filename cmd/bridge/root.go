package main

import (
	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Extract structured troubleshooting data from scanned documents",
	Long: `Bridge turns scanned PDFs into schema-validated troubleshooting records.

The pipeline:
  - OCR with deskew and rotation correction (ocrmypdf)
  - Page-tagged text extraction, so every record carries its page number
  - LLM extraction constrained by a caller-supplied JSON Schema
  - Optional image enhancement via a sidecar collaborator`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bridge/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
