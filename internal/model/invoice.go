package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed per product scope: domestic German invoicing in Euro. Kept as named
// constants so a multi-country extension touches one place.
const (
	CountryCode  = "DE"
	CurrencyCode = "EUR"
)

// DateLayout is the wire format for all user-entered dates.
const DateLayout = "2006-01-02"

// PaymentTermDays is the default payment term applied when the user does not
// override the due date.
const PaymentTermDays = 14

// DocumentType distinguishes invoices from offers. Offers share the document
// shape but are never exported as XRechnung or ZUGFeRD.
type DocumentType string

const (
	DocumentInvoice DocumentType = "rechnung"
	DocumentOffer   DocumentType = "angebot"
)

// TypeCode is the UNTDID 1001 document type code.
type TypeCode int

const (
	TypeCodeOffer             TypeCode = 310 // internal convention, never exported
	TypeCodeInvoice           TypeCode = 380
	TypeCodeCreditNote        TypeCode = 381
	TypeCodeCorrectedInvoice  TypeCode = 384
	TypeCodeSelfBilledInvoice TypeCode = 389
)

// Code returns the 3-digit wire representation.
func (tc TypeCode) Code() string {
	return strconv.Itoa(int(tc))
}

// Label returns the German display label.
func (tc TypeCode) Label() string {
	switch tc {
	case TypeCodeOffer:
		return "Angebot"
	case TypeCodeInvoice:
		return "Rechnung"
	case TypeCodeCreditNote:
		return "Gutschrift"
	case TypeCodeCorrectedInvoice:
		return "Rechnungskorrektur"
	case TypeCodeSelfBilledInvoice:
		return "Gutschrift (Selbstfakturierung)"
	}
	return ""
}

// Exportable reports whether the code belongs to the document types that may
// be emitted as XRechnung/ZUGFeRD.
func (tc TypeCode) Exportable() bool {
	switch tc {
	case TypeCodeInvoice, TypeCodeCreditNote, TypeCodeCorrectedInvoice, TypeCodeSelfBilledInvoice:
		return true
	}
	return false
}

// UnmarshalJSON accepts either a plain number (380) or the legacy form-field
// convention "380 Rechnung" where the leading 3 characters carry the code.
func (tc *TypeCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if len(s) < 3 {
			return fmt.Errorf("invalid type code %q", s)
		}
		n, err := strconv.Atoi(s[:3])
		if err != nil {
			return fmt.Errorf("invalid type code %q: %w", s, err)
		}
		*tc = TypeCode(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*tc = TypeCode(n)
	return nil
}

// MarshalJSON emits the numeric code.
func (tc TypeCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(tc))
}

// Category classifies a line item for the §35a EStG labor/material split on
// the invoice. It is a domestic disclosure feature, not a UBL/CII field.
type Category string

const (
	CategoryLabor    Category = "arbeit"
	CategoryMaterial Category = "material"
	CategoryTravel   Category = "fahrt"
	CategoryOther    Category = "sonstiges"
)

// LineItem is a single invoice position. JSON tags follow the German field
// names of the input form; validation field paths address the same names.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"beschreibung"`
	Category    Category        `json:"kategorie"`
	Quantity    decimal.Decimal `json:"menge"`
	Unit        string          `json:"einheit"`
	UnitPrice   decimal.Decimal `json:"einzelpreis"`
	TaxRate     decimal.Decimal `json:"steuersatz"`
}

// Billable reports whether the line counts towards totals and XML output.
// Incomplete lines are silently excluded, never an error.
func (li LineItem) Billable() bool {
	return strings.TrimSpace(li.Description) != "" &&
		li.Quantity.IsPositive() &&
		li.UnitPrice.IsPositive()
}

// Amount is the net line amount (quantity x unit price).
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Party carries the address fields shared by seller and buyer.
type Party struct {
	Name       string `json:"name"`
	Street     string `json:"strasse"`
	PostalCode string `json:"plz"`
	City       string `json:"ort"`
}

// Seller is the invoicing party.
type Seller struct {
	Party
	VATID         string `json:"ustId"`
	TaxNumber     string `json:"steuernummer"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`
	BankName      string `json:"bank"`
	RegisterEntry string `json:"handelsregister"`
	Phone         string `json:"telefon"`
	Email         string `json:"email"`
}

// Buyer is the invoiced party.
type Buyer struct {
	Party
	VATID          string `json:"ustId"`
	ContactName    string `json:"ansprechpartner"`
	Email          string `json:"email"`
	CustomerNumber string `json:"kundennummer"`
}

// Header holds the document-level fields.
type Header struct {
	Number        string   `json:"nummer"`
	IssueDate     string   `json:"datum"`
	DueDate       string   `json:"faelligkeit"`
	ServicePeriod string   `json:"leistungszeitraum"`
	TypeCode      TypeCode `json:"art"`
	LeitwegID     string   `json:"leitwegId"`
	OrderRef      string   `json:"bestellnummer"`
}

// Invoice is the canonical document data model. It is produced by the input
// form, persisted by the archive, and consumed read-only by the totals
// engine, both XML generators and the validation engine.
type Invoice struct {
	Header
	Type   DocumentType `json:"dokumentart"`
	Seller Seller       `json:"verkaeufer"`
	Buyer  Buyer        `json:"kaeufer"`
	Items  []LineItem   `json:"positionen"`
}

// BillableItems returns the complete positions in original order.
func (inv *Invoice) BillableItems() []LineItem {
	items := make([]LineItem, 0, len(inv.Items))
	for _, li := range inv.Items {
		if li.Billable() {
			items = append(items, li)
		}
	}
	return items
}

// DefaultDueDate derives the due date from an issue date using the default
// payment term. Returns "" if the issue date does not parse.
func DefaultDueDate(issueDate string) string {
	t, err := time.Parse(DateLayout, issueDate)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, PaymentTermDays).Format(DateLayout)
}
