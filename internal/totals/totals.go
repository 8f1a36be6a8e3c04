// Package totals derives all monetary aggregates of an invoice. It is the
// only place in the repository that sums line amounts; the preview, both XML
// generators and the validation engine call Calculate so displayed and
// exported totals can never drift apart.
package totals

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/erechnung/internal/model"
)

var (
	// Rate19 and Rate7 are the two German VAT rates with their own bucket.
	Rate19 = decimal.NewFromInt(19)
	Rate7  = decimal.NewFromInt(7)

	factor19 = decimal.New(19, -2) // 0.19
	factor7  = decimal.New(7, -2)  // 0.07
)

// Totals holds the derived aggregates of one invoice. They are never stored;
// every consumer recomputes them from the line items.
type Totals struct {
	Net19         decimal.Decimal `json:"netto19"`
	Net7          decimal.Decimal `json:"netto7"`
	Net0          decimal.Decimal `json:"netto0"`
	NetTotal      decimal.Decimal `json:"nettoGesamt"`
	VAT19         decimal.Decimal `json:"ust19"`
	VAT7          decimal.Decimal `json:"ust7"`
	GrossTotal    decimal.Decimal `json:"bruttoGesamt"`
	LaborTotal    decimal.Decimal `json:"arbeitskosten"`
	MaterialTotal decimal.Decimal `json:"materialkosten"`
}

// VATTotal is the summed tax amount over all buckets.
func (t Totals) VATTotal() decimal.Decimal {
	return t.VAT19.Add(t.VAT7)
}

// Calculate aggregates all billable line items. Incomplete lines contribute
// nothing. A tax rate outside {7, 19} is routed into the 0% bucket; the
// validation engine flags such lines separately. Empty input yields all
// zeroes, never an error.
func Calculate(items []model.LineItem) Totals {
	var t Totals

	for _, li := range items {
		if !li.Billable() {
			continue
		}
		amount := li.Amount()

		switch {
		case li.TaxRate.Equal(Rate19):
			t.Net19 = t.Net19.Add(amount)
		case li.TaxRate.Equal(Rate7):
			t.Net7 = t.Net7.Add(amount)
		default:
			t.Net0 = t.Net0.Add(amount)
		}

		switch li.Category {
		case model.CategoryLabor:
			t.LaborTotal = t.LaborTotal.Add(amount)
		case model.CategoryMaterial:
			t.MaterialTotal = t.MaterialTotal.Add(amount)
		}
	}

	t.VAT19 = t.Net19.Mul(factor19)
	t.VAT7 = t.Net7.Mul(factor7)
	t.NetTotal = t.Net19.Add(t.Net7).Add(t.Net0)
	t.GrossTotal = t.NetTotal.Add(t.VAT19).Add(t.VAT7)

	return t
}

// FormatAmount renders a monetary value with exactly two decimal places.
// Rounding happens here, at serialization time, never during aggregation.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
