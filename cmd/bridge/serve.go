package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/config"
	"github.com/docbridge/bridge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Bridge server",
	Long: `Start the Bridge HTTP server.

If a managed enhancement sidecar is configured, its container is started
with the server and stopped on shutdown (Ctrl+C or SIGTERM).

The server provides:
  - /health            - Basic server health check
  - /ready             - Readiness check (model registry populated)
  - /api/models        - Supported extraction models
  - /api/extract       - PDF upload extraction
  - /api/extract/text  - Raw text extraction

Examples:
  bridge serve                          # Use ./config.yaml or ~/.bridge
  bridge serve --config ./bridge.yaml   # Explicit config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		srv, err := server.New(server.Config{
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
