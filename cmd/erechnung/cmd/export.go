package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/erechnung/internal/logger"
	"github.com/rezonia/erechnung/internal/validation"
	"github.com/rezonia/erechnung/internal/xrechnung"
	"github.com/rezonia/erechnung/internal/zugferd"
)

var (
	exportFormat string
	exportPDF    string
	exportOut    string
	exportForce  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export an invoice draft as XRechnung or ZUGFeRD",
	Long: `Export an invoice draft (JSON data model file) as a standards-compliant
e-invoice document.

The draft is validated first; export is refused while errors remain
(override with --force at your own risk, warnings never block).

Formats:
  xrechnung  XRechnung 3.0 UBL XML (default)
  zugferd    ZUGFeRD 2.2 / Factur-X PDF; requires --pdf with the
             rendered visual invoice to embed into

Examples:
  erechnung export rechnung.json
  erechnung export rechnung.json --format zugferd --pdf rechnung.pdf
  erechnung export rechnung.json -f out/RE-2026-0001.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "xrechnung", "Export format (xrechnung, zugferd)")
	exportCmd.Flags().StringVar(&exportPDF, "pdf", "", "Source PDF to embed into (zugferd only)")
	exportCmd.Flags().StringVarP(&exportOut, "file", "f", "", "Output file (default: conventional name)")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Export despite validation errors")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	inv, err := readInvoice(args[0])
	if err != nil {
		return err
	}

	report := validation.Validate(inv)
	if !report.Valid && !exportForce {
		printReport(fileReport{File: args[0], Report: report})
		return fmt.Errorf("draft has %d validation error(s); fix them or use --force", len(report.Errors))
	}

	var out []byte
	var name string

	switch exportFormat {
	case "xrechnung":
		xml, err := xrechnung.Generate(inv)
		if err != nil {
			return err
		}
		out = []byte(xml)
		name = xrechnung.FileName(inv)
	case "zugferd":
		if exportPDF == "" {
			return fmt.Errorf("--pdf is required for zugferd export")
		}
		sourcePDF, err := os.ReadFile(exportPDF)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", exportPDF, err)
		}
		out, err = zugferd.Export(inv, sourcePDF, time.Now())
		if err != nil {
			return err
		}
		name = zugferd.FileName(inv)
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	if exportOut != "" {
		name = exportOut
	}
	if err := os.WriteFile(name, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	log.Info().Str("file", name).Int("bytes", len(out)).Msg("export written")
	fmt.Printf("wrote %s (%d bytes)\n", name, len(out))
	return nil
}
