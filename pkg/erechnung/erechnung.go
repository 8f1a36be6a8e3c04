// Package erechnung provides the public API for generating and validating
// German electronic invoices.
//
// It exposes the document data model, the EN 16931 validation engine, the
// monetary aggregation routine and the two export formats (XRechnung 3.0 UBL
// and ZUGFeRD 2.2 / Factur-X).
//
// Example usage:
//
//	report := erechnung.Validate(inv)
//	if report.Valid {
//	    xml, err := erechnung.ExportXRechnung(inv)
//	    ...
//	}
package erechnung

import (
	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/totals"
	"github.com/rezonia/erechnung/internal/validation"
)

// Re-export core types for public API
type (
	Invoice      = model.Invoice
	Header       = model.Header
	Seller       = model.Seller
	Buyer        = model.Buyer
	Party        = model.Party
	LineItem     = model.LineItem
	Category     = model.Category
	DocumentType = model.DocumentType
	TypeCode     = model.TypeCode
	Totals       = totals.Totals
)

// Re-export document types
const (
	DocumentInvoice = model.DocumentInvoice
	DocumentOffer   = model.DocumentOffer
)

// Re-export type codes
const (
	TypeCodeInvoice           = model.TypeCodeInvoice
	TypeCodeCreditNote        = model.TypeCodeCreditNote
	TypeCodeCorrectedInvoice  = model.TypeCodeCorrectedInvoice
	TypeCodeSelfBilledInvoice = model.TypeCodeSelfBilledInvoice
)

// Re-export line item categories
const (
	CategoryLabor    = model.CategoryLabor
	CategoryMaterial = model.CategoryMaterial
	CategoryTravel   = model.CategoryTravel
	CategoryOther    = model.CategoryOther
)

// Re-export validation types
type (
	ValidationResult  = validation.Result
	ValidationMessage = validation.Message
	Severity          = validation.Severity
)

// Re-export error types
type (
	GenerationError = model.GenerationError
	ExportError     = model.ExportError
)

// Validate runs the EN 16931 rule subset over the invoice.
func Validate(inv *Invoice) *ValidationResult {
	return validation.Validate(inv)
}

// CalculateTotals derives all monetary aggregates from the line items.
func CalculateTotals(inv *Invoice) Totals {
	return totals.Calculate(inv.Items)
}
