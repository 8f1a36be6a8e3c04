package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/erechnung/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the invoice core to the form frontend.

The API provides endpoints for:
  - POST /api/v1/validate          - Validate an invoice draft
  - POST /api/v1/totals            - Compute monetary aggregates
  - POST /api/v1/export/xrechnung  - Export XRechnung XML
  - POST /api/v1/export/zugferd    - Export ZUGFeRD PDF (multipart)
  - GET  /api/v1/unitcodes         - Unit of measure mapping table
  - GET  /health                   - Health check

Examples:
  # Start server on default port
  erechnung serve

  # Start on custom port in debug mode
  erechnung serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv := server.NewServer(config)
	return srv.Run()
}
