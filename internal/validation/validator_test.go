package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/validation"
)

// validInvoice mirrors the minimal invoice that must validate without errors:
// complete seller/buyer addresses, seller VAT-ID, one complete position.
func validInvoice() *model.Invoice {
	return &model.Invoice{
		Header: model.Header{
			Number:    "RE-2026-0001",
			IssueDate: "2026-01-15",
			DueDate:   "2026-01-29",
		},
		Type: model.DocumentInvoice,
		Seller: model.Seller{
			Party: model.Party{
				Name:       "Muster GmbH",
				Street:     "Hauptstraße 1",
				PostalCode: "80331",
				City:       "München",
			},
			VATID: "DE123456789",
			IBAN:  "DE02120300000000202051",
		},
		Buyer: model.Buyer{
			Party: model.Party{
				Name:       "Kunde AG",
				Street:     "Marienplatz 8",
				PostalCode: "80333",
				City:       "München",
			},
		},
		Items: []model.LineItem{
			{
				Description: "Beratung",
				Quantity:    decimal.NewFromInt(2),
				Unit:        model.UnitHour,
				UnitPrice:   decimal.NewFromInt(100),
				TaxRate:     decimal.NewFromInt(19),
			},
		},
	}
}

func codes(msgs []validation.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Code)
	}
	return out
}

func TestValidate_ValidInvoice(t *testing.T) {
	result := validation.Validate(validInvoice())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	// Leitweg-ID absence is advisory only.
	assert.Contains(t, codes(result.Warnings), "XR-DOC-06")
}

func TestValidate_ValidityMatchesErrorCount(t *testing.T) {
	invoices := []*model.Invoice{
		validInvoice(),
		{},
		func() *model.Invoice { inv := validInvoice(); inv.Number = ""; return inv }(),
		func() *model.Invoice { inv := validInvoice(); inv.Buyer.PostalCode = "1234"; return inv }(),
	}
	for _, inv := range invoices {
		result := validation.Validate(inv)
		assert.Equal(t, len(result.Errors) == 0, result.Valid)
	}
}

func TestValidate_MissingNumber(t *testing.T) {
	inv := validInvoice()
	inv.Number = "  "
	result := validation.Validate(inv)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "XR-DOC-01", result.Errors[0].Code)
	assert.Equal(t, "BT-1", result.Errors[0].BT)
	assert.Equal(t, "nummer", result.Errors[0].Field)
}

func TestValidate_IssueDate(t *testing.T) {
	inv := validInvoice()
	inv.IssueDate = ""
	result := validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-DOC-02")

	inv.IssueDate = "15.01.2026"
	result = validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-DOC-03")

	inv.IssueDate = "2026-02-30"
	result = validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-DOC-03")
}

func TestValidate_TypeCodeWarning(t *testing.T) {
	inv := validInvoice()
	inv.TypeCode = 999
	result := validation.Validate(inv)

	assert.True(t, result.Valid)
	assert.Contains(t, codes(result.Warnings), "XR-DOC-04")
}

func TestValidate_DueDateInfoOnly(t *testing.T) {
	inv := validInvoice()
	inv.DueDate = ""
	result := validation.Validate(inv)

	assert.True(t, result.Valid)
	assert.Contains(t, codes(result.Infos), "XR-DOC-05")
}

func TestValidate_LeitwegID(t *testing.T) {
	inv := validInvoice()
	inv.LeitwegID = "04011000-1234512345-06"
	result := validation.Validate(inv)
	assert.True(t, result.Valid)
	assert.NotContains(t, codes(result.Warnings), "XR-DOC-06")

	// Present but malformed is an error, unlike absence.
	inv.LeitwegID = "nurointeil"
	result = validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-DOC-07")

	inv.LeitwegID = "a-b"
	result = validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-DOC-07", "too short")
}

func TestValidate_SellerTaxIdentification(t *testing.T) {
	inv := validInvoice()
	inv.Seller.VATID = ""
	inv.Seller.TaxNumber = ""
	result := validation.Validate(inv)

	// Exactly one error referencing BT-31/BT-32.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "XR-SEL-06", result.Errors[0].Code)
	assert.Equal(t, "BT-31/BT-32", result.Errors[0].BT)

	// Either identifier alone satisfies the rule.
	inv.Seller.TaxNumber = "143/815/08152"
	result = validation.Validate(inv)
	assert.True(t, result.Valid)
}

func TestValidate_SellerVATIDFormat(t *testing.T) {
	inv := validInvoice()
	inv.Seller.VATID = "DE12345"
	result := validation.Validate(inv)

	assert.True(t, result.Valid, "format issue is a warning, not an error")
	assert.Contains(t, codes(result.Warnings), "XR-SEL-07")
}

func TestValidate_IBAN(t *testing.T) {
	inv := validInvoice()
	inv.Seller.IBAN = ""
	result := validation.Validate(inv)
	assert.True(t, result.Valid)
	assert.Contains(t, codes(result.Warnings), "XR-SEL-08")

	inv.Seller.IBAN = "DE123"
	result = validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-SEL-09")

	// German IBANs must have exactly 22 characters.
	inv.Seller.IBAN = "DE0212030000000020205"
	result = validation.Validate(inv)
	assert.Contains(t, codes(result.Errors), "XR-SEL-09")

	// Spaces in the form input are tolerated.
	inv.Seller.IBAN = "DE02 1203 0000 0000 2020 51"
	result = validation.Validate(inv)
	assert.NotContains(t, codes(result.Errors), "XR-SEL-09")

	// Non-German IBANs only need the generic shape.
	inv.Seller.IBAN = "AT611904300234573201"
	result = validation.Validate(inv)
	assert.NotContains(t, codes(result.Errors), "XR-SEL-09")
}

func TestValidate_BuyerPostalCodeWarning(t *testing.T) {
	inv := validInvoice()
	inv.Buyer.PostalCode = "1234"
	result := validation.Validate(inv)

	assert.True(t, result.Valid, "a 4-digit postal code must not block export")
	assert.Contains(t, codes(result.Warnings), "XR-BUY-05")
}

func TestValidate_Emails(t *testing.T) {
	inv := validInvoice()
	inv.Seller.Email = "kein-at-zeichen"
	inv.Buyer.Email = "auch@kaputt"
	result := validation.Validate(inv)

	assert.True(t, result.Valid)
	assert.Contains(t, codes(result.Warnings), "XR-SEL-10")
	assert.Contains(t, codes(result.Warnings), "XR-BUY-06")
}

func TestValidate_RequiredAddressFields(t *testing.T) {
	inv := &model.Invoice{}
	result := validation.Validate(inv)

	errs := codes(result.Errors)
	for _, code := range []string{
		"XR-SEL-01", "XR-SEL-02", "XR-SEL-03", "XR-SEL-04",
		"XR-BUY-01", "XR-BUY-02", "XR-BUY-03", "XR-BUY-04",
		"XR-POS-00",
	} {
		assert.Contains(t, errs, code)
	}
}

func TestValidate_IncompleteLineFiresPositionRuleOnly(t *testing.T) {
	inv := validInvoice()
	inv.Items = []model.LineItem{
		{
			Description: "Beratung",
			Quantity:    decimal.Zero, // incomplete: not a position at all
			Unit:        model.UnitHour,
			UnitPrice:   decimal.NewFromInt(100),
			TaxRate:     decimal.NewFromInt(19),
		},
	}
	result := validation.Validate(inv)

	// An incomplete line is not a position, so no per-line error refers to
	// it; the missing-position rule is the only one that fires.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "XR-POS-00", result.Errors[0].Code)
}

func TestValidate_UnknownTaxRateWarning(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].TaxRate = decimal.NewFromInt(16)
	result := validation.Validate(inv)

	assert.True(t, result.Valid)
	warnings := result.Warnings
	found := false
	for _, w := range warnings {
		if w.Code == "XR-POS-04" {
			found = true
			assert.Equal(t, "positionen.0.steuersatz", w.Field)
		}
	}
	assert.True(t, found, "expected XR-POS-04 warning")
}

func TestValidate_RulesAreIndependent(t *testing.T) {
	empty := &model.Invoice{}
	base := validation.Validate(empty)

	// Fixing the invoice number removes exactly its own error.
	withNumber := &model.Invoice{Header: model.Header{Number: "RE-1"}}
	result := validation.Validate(withNumber)

	assert.Equal(t, len(base.Errors)-1, len(result.Errors))
	assert.NotContains(t, codes(result.Errors), "XR-DOC-01")
}

func TestValidate_NilInvoice(t *testing.T) {
	result := validation.Validate(nil)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "XR-DOC-00", result.Errors[0].Code)
}

func TestValidate_FieldPaths(t *testing.T) {
	inv := validInvoice()
	inv.Seller.PostalCode = "123"
	result := validation.Validate(inv)

	found := false
	for _, w := range result.Warnings {
		if w.Code == "XR-SEL-05" {
			found = true
			assert.Equal(t, "verkaeufer.plz", w.Field)
		}
	}
	assert.True(t, found)
}
