package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice drafts against the EN 16931 rule subset",
	Long: `Validate one or more invoice drafts (JSON data model files).

Checks performed include:
  - required document fields (number, issue date)
  - seller/buyer address and tax identification
  - Leitweg-ID, IBAN, VAT-ID and postal code formats
  - at least one complete position
  - tax rate and calculation plausibility

Warnings and infos never block export; the command fails only when
errors are present.

Examples:
  erechnung validate rechnung.json
  erechnung validate drafts/*.json -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// fileReport pairs a validation result with its source file.
type fileReport struct {
	File   string             `json:"file"`
	Report *validation.Result `json:"report"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	reports := make([]fileReport, 0, len(args))
	allValid := true

	for _, file := range args {
		inv, err := readInvoice(file)
		if err != nil {
			return err
		}
		report := validation.Validate(inv)
		reports = append(reports, fileReport{File: file, Report: report})
		if !report.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(r)
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func printReport(r fileReport) {
	if r.Report.Valid {
		fmt.Printf("✓ %s: VALID\n", r.File)
	} else {
		fmt.Printf("✗ %s: INVALID\n", r.File)
	}
	for _, m := range r.Report.Errors {
		fmt.Printf("  - [%s] %s\n", m.Code, m.Message)
	}
	for _, m := range r.Report.Warnings {
		fmt.Printf("  ⚠ [%s] %s\n", m.Code, m.Message)
	}
	for _, m := range r.Report.Infos {
		fmt.Printf("  ℹ [%s] %s\n", m.Code, m.Message)
	}
}

func readInvoice(path string) (*model.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var inv model.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &inv, nil
}
