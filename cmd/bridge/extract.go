package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/internal/config"
	"github.com/docbridge/bridge/internal/extract"
	"github.com/docbridge/bridge/internal/ocr"
	"github.com/docbridge/bridge/internal/providers"
)

var (
	extractModel        string
	extractInstructions string
	extractSchemaFile   string
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Run the extraction pipeline on a PDF without a server",
	Long: `Run OCR, page-text extraction, and model extraction on a local PDF.

The pipeline runs in-process; no server is required. Model credentials come
from the same config file that bridge serve uses.

Examples:
  bridge extract manual.pdf
  bridge extract manual.pdf --model gpt-4o --schema records.json
  bridge extract manual.pdf --instructions "Only extract hydraulic faults"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		c := cfgMgr.Get()

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(c.ToRegistryConfig())
		if len(registry.List()) == 0 {
			return fmt.Errorf("no models configured; set API keys or run bridge config init")
		}

		engine := ocr.New(ocr.Config{
			Binary:    c.OCR.Binary,
			Languages: c.OCR.Languages,
			Timeout:   time.Duration(c.OCR.TimeoutSeconds) * time.Second,
			Logger:    logger,
		})

		pipeline := extract.NewPipeline(extract.PipelineConfig{
			Engine: engine,
			Runnable: extract.NewRunnable(extract.RunnableConfig{
				Registry: registry,
				Logger:   logger,
			}),
			Registry:   registry,
			ScratchDir: c.ScratchDir,
			Logger:     logger,
		})

		opts := extract.Options{
			ModelName:    extractModel,
			Instructions: extractInstructions,
		}
		if extractSchemaFile != "" {
			raw, err := os.ReadFile(extractSchemaFile)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &opts.JSONSchema); err != nil {
				return fmt.Errorf("schema file is not valid JSON: %w", err)
			}
		}

		resp, err := pipeline.ExtractFromPDF(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}
		return api.Output(resp)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractModel, "model", "", "model name (default from config)")
	extractCmd.Flags().StringVar(&extractInstructions, "instructions", "", "supplemental extraction instructions")
	extractCmd.Flags().StringVar(&extractSchemaFile, "schema", "", "path to a JSON Schema file")

	rootCmd.AddCommand(extractCmd)
}
