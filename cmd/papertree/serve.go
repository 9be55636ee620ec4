package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/config"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/server"
)

var (
	serveHost   string
	servePort   string
	servePDF    string
	serveImages string
	serveAssets string
)

var serveCmd = &cobra.Command{
	Use:   "serve <regions.json>",
	Short: "Build a paper and serve its outline over HTTP",
	Long: `Start the papertree HTTP server.

The document is built in the background on start. Until it is ready the
document endpoints answer 503. Editing the config file triggers a rebuild;
a rebuild that fails keeps the previous document.

The server provides:
  - /health                        - Basic server health check
  - /ready                         - Readiness check (document built)
  - /api/metrics                   - Stage and OCR timings
  - /api/document                  - Outline and media catalog
  - /api/nodes/{id}/children       - Children of an outline node
  - /api/nodes/{id}/content        - Text and media of a node
  - /api/media/{kind}/{number}     - Media lookup
  - /api/diagnostics               - Diagnostics report
  - /api/export.xlsx               - Workbook export

Examples:
  papertree serve paper.regions.json                # Start on default port 8080
  papertree serve paper.regions.json --port 3000    # Start on custom port
  papertree serve paper.regions.json --host 0.0.0.0 # Bind to all interfaces`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger, err := newLogger()
		if err != nil {
			return err
		}
		h, err := openHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		if mgr.File() != "" {
			mgr.OnError(func(err error) {
				logger.Error("config reload failed, keeping previous settings", "error", err)
			})
			mgr.WatchConfig()
			logger.Info("watching config", "file", mgr.File())
		}

		host, port := mgr.Get().Server.Host, mgr.Get().Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		rec := metrics.NewRecorder(0)
		in := buildInput{Regions: args[0], PDF: servePDF, Images: serveImages, Assets: serveAssets, Metrics: rec}
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: mgr,
			Home:          h,
			Logger:        logger,
			Metrics:       rec,
			Build: func(ctx context.Context, cfg *config.Config) (*document.Document, error) {
				return buildDocument(ctx, in, cfg, h, logger)
			},
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to (default from server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on (default from server.port)")
	serveCmd.Flags().StringVar(&servePDF, "pdf", "", "PDF to check the page count against")
	serveCmd.Flags().StringVar(&serveImages, "images", "", "Directory of page_NNNN.png images")
	serveCmd.Flags().StringVar(&serveAssets, "assets", "", "Directory to write media crops to")

	rootCmd.AddCommand(serveCmd)
}
