package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/erechnung/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "erechnung",
	Short: "Generate and validate German e-invoices (XRechnung, ZUGFeRD)",
	Long: `erechnung is a CLI tool for German electronic invoicing.

It takes an invoice draft (JSON data model) and produces
standards-compliant output:
  - XRechnung 3.0 (EN 16931 UBL XML)
  - ZUGFeRD 2.2 / Factur-X (CII XML embedded in a PDF)
  - an EN 16931 validation report for the draft

Examples:
  # Validate a draft
  erechnung validate rechnung.json

  # Export as XRechnung XML
  erechnung export rechnung.json --format xrechnung

  # Export as ZUGFeRD (embeds XML into the rendered PDF)
  erechnung export rechnung.json --format zugferd --pdf rechnung.pdf`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Report output format (json, table)")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	config := logger.DefaultConfig()
	if verbose {
		config.Level = "debug"
	}
	if err := logger.Setup(config); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
	}
}
