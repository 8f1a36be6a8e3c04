// Package validation checks a draft invoice against a hand-written subset of
// the EN16931 business rules before export is permitted. It is not a
// replacement for the official XRechnung Schematron rule set.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/totals"
)

var (
	// Leitweg-ID: at least two dash-separated alphanumeric segments.
	leitwegPattern = regexp.MustCompile(`^[0-9A-Za-z]+-[0-9A-Za-z]+(?:-[0-9A-Za-z]+)*$`)
	plzPattern     = regexp.MustCompile(`^\d{5}$`)
	vatIDPattern   = regexp.MustCompile(`^DE\d{9}$`)
	ibanPattern    = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Za-z0-9]{1,30}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// vatTolerance bounds the plausibility advisory; legitimate rounding
// differences must not trigger it.
var vatTolerance = decimal.New(1, -2) // 0.01

// Validate runs every applicable rule over the invoice. Rules are
// independent and cumulative: one failing rule never short-circuits another.
func Validate(inv *model.Invoice) *Result {
	r := newResult()
	if inv == nil {
		r.addError("XR-DOC-00", "", "", "Kein Dokument übergeben")
		return r.finish()
	}

	checkDocument(r, inv)
	checkSeller(r, &inv.Seller)
	checkBuyer(r, &inv.Buyer)
	checkItems(r, inv.Items)
	checkCalculation(r, inv.Items)

	return r.finish()
}

func checkDocument(r *Result, inv *model.Invoice) {
	if strings.TrimSpace(inv.Number) == "" {
		r.addError("XR-DOC-01", "nummer", "BT-1", "Rechnungsnummer fehlt")
	}

	switch {
	case inv.IssueDate == "":
		r.addError("XR-DOC-02", "datum", "BT-2", "Rechnungsdatum fehlt")
	case !validDate(inv.IssueDate):
		r.addError("XR-DOC-03", "datum", "BT-2", fmt.Sprintf("Rechnungsdatum %q ist kein gültiges Datum (JJJJ-MM-TT)", inv.IssueDate))
	}

	if inv.TypeCode != 0 && !inv.TypeCode.Exportable() {
		r.addWarning("XR-DOC-04", "art", "BT-3", fmt.Sprintf("Unbekannter Dokumenttyp-Code %s", inv.TypeCode.Code()))
	}

	if inv.DueDate == "" {
		r.addInfo("XR-DOC-05", "faelligkeit", "BT-9", "Kein Fälligkeitsdatum angegeben")
	}

	switch {
	case inv.LeitwegID == "":
		r.addWarning("XR-DOC-06", "leitwegId", "BT-10", "Keine Leitweg-ID angegeben (für öffentliche Auftraggeber erforderlich)")
	case len(inv.LeitwegID) < 5 || !leitwegPattern.MatchString(inv.LeitwegID):
		r.addError("XR-DOC-07", "leitwegId", "BT-10", fmt.Sprintf("Leitweg-ID %q hat ein ungültiges Format", inv.LeitwegID))
	}
}

func checkSeller(r *Result, s *model.Seller) {
	if strings.TrimSpace(s.Name) == "" {
		r.addError("XR-SEL-01", "verkaeufer.name", "BT-27", "Name des Verkäufers fehlt")
	}
	if strings.TrimSpace(s.Street) == "" {
		r.addError("XR-SEL-02", "verkaeufer.strasse", "BT-35", "Straße des Verkäufers fehlt")
	}
	if strings.TrimSpace(s.City) == "" {
		r.addError("XR-SEL-03", "verkaeufer.ort", "BT-37", "Ort des Verkäufers fehlt")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		r.addError("XR-SEL-04", "verkaeufer.plz", "BT-38", "Postleitzahl des Verkäufers fehlt")
	} else if !plzPattern.MatchString(s.PostalCode) {
		r.addWarning("XR-SEL-05", "verkaeufer.plz", "BT-38", fmt.Sprintf("Postleitzahl %q hat nicht das deutsche Format (5 Ziffern)", s.PostalCode))
	}

	if s.VATID == "" && s.TaxNumber == "" {
		r.addError("XR-SEL-06", "verkaeufer.ustId", "BT-31/BT-32", "USt-IdNr. oder Steuernummer des Verkäufers erforderlich")
	}
	if s.VATID != "" && !vatIDPattern.MatchString(s.VATID) {
		r.addWarning("XR-SEL-07", "verkaeufer.ustId", "BT-31", fmt.Sprintf("USt-IdNr. %q entspricht nicht dem Format DE+9 Ziffern", s.VATID))
	}

	checkIBAN(r, s.IBAN)

	if s.Email != "" && !emailPattern.MatchString(s.Email) {
		r.addWarning("XR-SEL-10", "verkaeufer.email", "BT-43", fmt.Sprintf("E-Mail-Adresse %q ist ungültig", s.Email))
	}
}

func checkIBAN(r *Result, iban string) {
	if iban == "" {
		r.addWarning("XR-SEL-08", "verkaeufer.iban", "BT-84", "Keine IBAN angegeben (für die Zahlung empfohlen)")
		return
	}
	stripped := strings.Join(strings.Fields(iban), "")
	bad := !ibanPattern.MatchString(stripped)
	if !bad && strings.HasPrefix(stripped, "DE") && len(stripped) != 22 {
		bad = true
	}
	if bad {
		r.addError("XR-SEL-09", "verkaeufer.iban", "BT-84", fmt.Sprintf("IBAN %q hat ein ungültiges Format", iban))
	}
}

func checkBuyer(r *Result, b *model.Buyer) {
	if strings.TrimSpace(b.Name) == "" {
		r.addError("XR-BUY-01", "kaeufer.name", "BT-44", "Name des Käufers fehlt")
	}
	if strings.TrimSpace(b.Street) == "" {
		r.addError("XR-BUY-02", "kaeufer.strasse", "BT-50", "Straße des Käufers fehlt")
	}
	if strings.TrimSpace(b.City) == "" {
		r.addError("XR-BUY-03", "kaeufer.ort", "BT-52", "Ort des Käufers fehlt")
	}
	if strings.TrimSpace(b.PostalCode) == "" {
		r.addError("XR-BUY-04", "kaeufer.plz", "BT-53", "Postleitzahl des Käufers fehlt")
	} else if !plzPattern.MatchString(b.PostalCode) {
		r.addWarning("XR-BUY-05", "kaeufer.plz", "BT-53", fmt.Sprintf("Postleitzahl %q hat nicht das deutsche Format (5 Ziffern)", b.PostalCode))
	}

	if b.Email != "" && !emailPattern.MatchString(b.Email) {
		r.addWarning("XR-BUY-06", "kaeufer.email", "BT-49", fmt.Sprintf("E-Mail-Adresse %q ist ungültig", b.Email))
	}
}

// checkItems has no per-line completeness errors: Billable already requires
// a description, a positive quantity and a positive price, and a line failing
// any of those is not a position at all — only XR-POS-00 speaks for it.
func checkItems(r *Result, items []model.LineItem) {
	billable := 0
	for i, li := range items {
		if !li.Billable() {
			continue
		}
		billable++

		if !knownRate(li.TaxRate) {
			r.addWarning("XR-POS-04", field(i, "steuersatz"), "BT-152",
				fmt.Sprintf("Position %d: Steuersatz %s%% ist nicht vorgesehen (0, 7, 19) und wird als 0%% ausgewiesen", i+1, li.TaxRate.String()))
		}
	}

	if billable == 0 {
		r.addError("XR-POS-00", "positionen", "BG-25", "Mindestens eine vollständige Position erforderlich")
	}
}

// checkCalculation is a soft plausibility advisory, not a strict equality
// rule: it reuses the shared totals engine and only speaks up when the tax of
// a bucket drifts from its basis beyond rounding.
func checkCalculation(r *Result, items []model.LineItem) {
	agg := totals.Calculate(items)

	buckets := []struct {
		net, vat decimal.Decimal
		rate     decimal.Decimal
	}{
		{agg.Net19, agg.VAT19, totals.Rate19},
		{agg.Net7, agg.VAT7, totals.Rate7},
	}
	for _, b := range buckets {
		if b.net.IsZero() {
			continue
		}
		expected := b.net.Mul(b.rate).Div(decimal.NewFromInt(100))
		if b.vat.Sub(expected).Abs().GreaterThan(vatTolerance) {
			r.addInfo("XR-CALC-01", "", "BT-117",
				fmt.Sprintf("Steuerbetrag %s weicht vom erwarteten Betrag (%s%% von %s) ab",
					totals.FormatAmount(b.vat), b.rate.String(), totals.FormatAmount(b.net)))
		}
	}
}

func knownRate(rate decimal.Decimal) bool {
	return rate.IsZero() || rate.Equal(totals.Rate7) || rate.Equal(totals.Rate19)
}

func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

func field(index int, name string) string {
	return fmt.Sprintf("positionen.%d.%s", index, name)
}
