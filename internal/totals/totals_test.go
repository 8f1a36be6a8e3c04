package totals_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/totals"
)

func item(desc string, qty, price, rate int64, cat model.Category) model.LineItem {
	return model.LineItem{
		Description: desc,
		Category:    cat,
		Quantity:    decimal.NewFromInt(qty),
		Unit:        model.UnitHour,
		UnitPrice:   decimal.NewFromInt(price),
		TaxRate:     decimal.NewFromInt(rate),
	}
}

func eq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w, err := decimal.NewFromString(want)
	assert.NoError(t, err)
	assert.True(t, got.Equal(w), "expected %s, got %s", want, got.String())
}

func TestCalculate_Buckets(t *testing.T) {
	items := []model.LineItem{
		item("Beratung", 2, 100, 19, model.CategoryLabor),    // 200 @ 19%
		item("Bücher", 1, 100, 7, model.CategoryOther),       // 100 @ 7%
		item("Porto", 1, 50, 0, model.CategoryOther),         // 50 @ 0%
		item("Material", 3, 20, 19, model.CategoryMaterial),  // 60 @ 19%
	}

	agg := totals.Calculate(items)

	eq(t, "260", agg.Net19)
	eq(t, "100", agg.Net7)
	eq(t, "50", agg.Net0)
	eq(t, "410", agg.NetTotal)
	eq(t, "49.4", agg.VAT19)
	eq(t, "7", agg.VAT7)
	eq(t, "466.4", agg.GrossTotal)
	eq(t, "200", agg.LaborTotal)
	eq(t, "60", agg.MaterialTotal)
}

func TestCalculate_NetTotalIsSumOfBuckets(t *testing.T) {
	items := []model.LineItem{
		item("A", 3, 33, 19, model.CategoryLabor),
		item("B", 7, 11, 7, model.CategoryOther),
		item("C", 2, 9, 0, model.CategoryTravel),
	}
	agg := totals.Calculate(items)

	assert.True(t, agg.NetTotal.Equal(agg.Net19.Add(agg.Net7).Add(agg.Net0)))
	assert.True(t, agg.GrossTotal.Equal(agg.NetTotal.Add(agg.VAT19).Add(agg.VAT7)))
	assert.True(t, agg.VATTotal().Equal(agg.VAT19.Add(agg.VAT7)))
}

func TestCalculate_SkipsIncompleteLines(t *testing.T) {
	items := []model.LineItem{
		item("", 2, 100, 19, model.CategoryLabor),        // no description
		item("Gratis", 2, 0, 19, model.CategoryLabor),    // zero price
		item("Storniert", 0, 100, 19, model.CategoryLabor), // zero quantity
	}

	agg := totals.Calculate(items)

	eq(t, "0", agg.NetTotal)
	eq(t, "0", agg.GrossTotal)
	eq(t, "0", agg.LaborTotal)
}

func TestCalculate_EmptyInput(t *testing.T) {
	agg := totals.Calculate(nil)
	eq(t, "0", agg.NetTotal)
	eq(t, "0", agg.GrossTotal)

	agg = totals.Calculate([]model.LineItem{})
	eq(t, "0", agg.GrossTotal)
}

func TestCalculate_UnknownRateGoesToZeroBucket(t *testing.T) {
	items := []model.LineItem{
		item("Sondersatz", 1, 100, 5, model.CategoryOther),
	}
	agg := totals.Calculate(items)

	eq(t, "100", agg.Net0)
	eq(t, "0", agg.VAT19)
	eq(t, "0", agg.VAT7)
	eq(t, "100", agg.GrossTotal)
}

func TestCalculate_FractionalAmounts(t *testing.T) {
	items := []model.LineItem{
		{
			Description: "Teilstunden",
			Quantity:    decimal.NewFromFloat(1.5),
			UnitPrice:   decimal.NewFromFloat(99.9),
			TaxRate:     decimal.NewFromInt(19),
		},
	}
	agg := totals.Calculate(items)

	// 1.5 * 99.90 = 149.85; VAT = 28.4715 kept unrounded until formatting.
	eq(t, "149.85", agg.Net19)
	eq(t, "28.4715", agg.VAT19)
	assert.Equal(t, "28.47", totals.FormatAmount(agg.VAT19))
	assert.Equal(t, "178.32", totals.FormatAmount(agg.GrossTotal))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "238.00", totals.FormatAmount(decimal.NewFromInt(238)))
	assert.Equal(t, "0.00", totals.FormatAmount(decimal.Zero))
	assert.Equal(t, "12.35", totals.FormatAmount(decimal.NewFromFloat(12.345)))
}
