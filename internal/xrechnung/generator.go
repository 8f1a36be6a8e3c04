// Package xrechnung generates EN16931-conformant UBL 2.1 invoice XML
// following the XRechnung 3.0 national profile.
package xrechnung

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/totals"
)

// Conformance identifiers, bit-exact per KoSIT / Peppol.
const (
	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:xoev-de:kosit:standard:xrechnung_3.0"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
)

// UBL 2.1 namespace set.
const (
	nsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCAC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCBC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// FileName returns the conventional download name for an XRechnung export.
func FileName(inv *model.Invoice) string {
	return fmt.Sprintf("XRechnung_%s_%s.xml", inv.Number, inv.IssueDate)
}

// Generate serializes the invoice as XRechnung UBL XML.
//
// The generator performs no user-data validation; callers are expected to
// gate exports on the validation engine. Missing optional fields merely omit
// the corresponding XML blocks. It fails only on contract violations:
// a nil invoice, an absent line-item collection, or an offer.
func Generate(inv *model.Invoice) (string, error) {
	if inv == nil {
		return "", model.NewGenerationError("xrechnung", "invoice must not be nil")
	}
	if inv.Items == nil {
		return "", model.NewGenerationError("xrechnung", "line item collection is absent")
	}
	if inv.Type == model.DocumentOffer {
		return "", model.NewGenerationError("xrechnung", "offers cannot be exported as XRechnung")
	}

	agg := totals.Calculate(inv.Items)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", nsInvoice)
	root.CreateAttr("xmlns:cac", nsCAC)
	root.CreateAttr("xmlns:cbc", nsCBC)

	text(root, "cbc:CustomizationID", CustomizationID)
	text(root, "cbc:ProfileID", ProfileID)
	text(root, "cbc:ID", inv.Number)
	text(root, "cbc:IssueDate", inv.IssueDate)
	if inv.DueDate != "" {
		text(root, "cbc:DueDate", inv.DueDate)
	}
	text(root, "cbc:InvoiceTypeCode", typeCode(inv))
	text(root, "cbc:DocumentCurrencyCode", model.CurrencyCode)
	text(root, "cbc:BuyerReference", buyerReference(inv))

	if inv.OrderRef != "" {
		orderRef := root.CreateElement("cac:OrderReference")
		text(orderRef, "cbc:ID", inv.OrderRef)
	}

	supplier := root.CreateElement("cac:AccountingSupplierParty")
	sellerParty(supplier.CreateElement("cac:Party"), &inv.Seller)

	customer := root.CreateElement("cac:AccountingCustomerParty")
	buyerParty(customer.CreateElement("cac:Party"), &inv.Buyer)

	if inv.Seller.IBAN != "" {
		paymentMeans(root, &inv.Seller)
	}

	taxTotal(root, agg)
	monetaryTotal(root, agg)

	for i, li := range inv.BillableItems() {
		invoiceLine(root, i+1, li)
	}

	doc.Indent(2)
	return doc.WriteToString()
}

func typeCode(inv *model.Invoice) string {
	tc := inv.TypeCode
	if tc == 0 {
		tc = model.TypeCodeInvoice
	}
	return tc.Code()
}

// buyerReference must never be empty: Leitweg-ID, then the buyer's customer
// number, then the literal "n/a".
func buyerReference(inv *model.Invoice) string {
	if inv.LeitwegID != "" {
		return inv.LeitwegID
	}
	if inv.Buyer.CustomerNumber != "" {
		return inv.Buyer.CustomerNumber
	}
	return "n/a"
}

func postalAddress(party *etree.Element, p *model.Party) {
	addr := party.CreateElement("cac:PostalAddress")
	text(addr, "cbc:StreetName", p.Street)
	text(addr, "cbc:CityName", p.City)
	text(addr, "cbc:PostalZone", p.PostalCode)
	country := addr.CreateElement("cac:Country")
	text(country, "cbc:IdentificationCode", model.CountryCode)
}

func partyTaxScheme(party *etree.Element, vatID string) {
	pts := party.CreateElement("cac:PartyTaxScheme")
	text(pts, "cbc:CompanyID", vatID)
	scheme := pts.CreateElement("cac:TaxScheme")
	text(scheme, "cbc:ID", "VAT")
}

func sellerParty(party *etree.Element, s *model.Seller) {
	postalAddress(party, &s.Party)
	if s.VATID != "" {
		partyTaxScheme(party, s.VATID)
	}
	legal := party.CreateElement("cac:PartyLegalEntity")
	text(legal, "cbc:RegistrationName", s.Name)
	if s.RegisterEntry != "" {
		text(legal, "cbc:CompanyID", s.RegisterEntry)
	}
	if s.Phone != "" || s.Email != "" {
		contact := party.CreateElement("cac:Contact")
		if s.Phone != "" {
			text(contact, "cbc:Telephone", s.Phone)
		}
		if s.Email != "" {
			text(contact, "cbc:ElectronicMail", s.Email)
		}
	}
}

func buyerParty(party *etree.Element, b *model.Buyer) {
	postalAddress(party, &b.Party)
	if b.VATID != "" {
		partyTaxScheme(party, b.VATID)
	}
	legal := party.CreateElement("cac:PartyLegalEntity")
	text(legal, "cbc:RegistrationName", b.Name)
	if b.ContactName != "" || b.Email != "" {
		contact := party.CreateElement("cac:Contact")
		if b.ContactName != "" {
			text(contact, "cbc:Name", b.ContactName)
		}
		if b.Email != "" {
			text(contact, "cbc:ElectronicMail", b.Email)
		}
	}
}

// paymentMeans emits code 58 (SEPA credit transfer) with the seller's IBAN,
// whitespace stripped.
func paymentMeans(root *etree.Element, s *model.Seller) {
	pm := root.CreateElement("cac:PaymentMeans")
	text(pm, "cbc:PaymentMeansCode", "58")
	account := pm.CreateElement("cac:PayeeFinancialAccount")
	text(account, "cbc:ID", stripSpaces(s.IBAN))
	if s.BankName != "" {
		text(account, "cbc:Name", s.BankName)
	}
	if s.BIC != "" {
		branch := account.CreateElement("cac:FinancialInstitutionBranch")
		text(branch, "cbc:ID", s.BIC)
	}
}

func taxTotal(root *etree.Element, agg totals.Totals) {
	tt := root.CreateElement("cac:TaxTotal")
	amount(tt, "cbc:TaxAmount", agg.VATTotal())

	taxSubtotal(tt, agg.Net19, agg.VAT19, totals.Rate19)
	taxSubtotal(tt, agg.Net7, agg.VAT7, totals.Rate7)
	taxSubtotal(tt, agg.Net0, decimal.Zero, decimal.Zero)
}

// taxSubtotal emits one subtotal per bucket with a nonzero basis.
func taxSubtotal(tt *etree.Element, basis, tax, rate decimal.Decimal) {
	if basis.IsZero() {
		return
	}
	sub := tt.CreateElement("cac:TaxSubtotal")
	amount(sub, "cbc:TaxableAmount", basis)
	amount(sub, "cbc:TaxAmount", tax)
	cat := sub.CreateElement("cac:TaxCategory")
	text(cat, "cbc:ID", categoryID(rate))
	text(cat, "cbc:Percent", rate.StringFixed(2))
	scheme := cat.CreateElement("cac:TaxScheme")
	text(scheme, "cbc:ID", "VAT")
}

func monetaryTotal(root *etree.Element, agg totals.Totals) {
	mt := root.CreateElement("cac:LegalMonetaryTotal")
	amount(mt, "cbc:LineExtensionAmount", agg.NetTotal)
	amount(mt, "cbc:TaxExclusiveAmount", agg.NetTotal)
	amount(mt, "cbc:TaxInclusiveAmount", agg.GrossTotal)
	amount(mt, "cbc:PayableAmount", agg.GrossTotal)
}

// invoiceLine emits one cac:InvoiceLine with a 1-based sequential ID that is
// independent of the item's stored identifier.
func invoiceLine(root *etree.Element, seq int, li model.LineItem) {
	line := root.CreateElement("cac:InvoiceLine")
	text(line, "cbc:ID", fmt.Sprintf("%d", seq))

	qty := text(line, "cbc:InvoicedQuantity", li.Quantity.StringFixed(2))
	qty.CreateAttr("unitCode", model.UnitCode(li.Unit))

	amount(line, "cbc:LineExtensionAmount", li.Amount())

	item := line.CreateElement("cac:Item")
	text(item, "cbc:Name", li.Description)
	cat := item.CreateElement("cac:ClassifiedTaxCategory")
	text(cat, "cbc:ID", categoryID(li.TaxRate))
	text(cat, "cbc:Percent", lineRate(li.TaxRate).StringFixed(2))
	scheme := cat.CreateElement("cac:TaxScheme")
	text(scheme, "cbc:ID", "VAT")

	price := line.CreateElement("cac:Price")
	amount(price, "cbc:PriceAmount", li.UnitPrice)
}

// categoryID maps a rate to the EN16931 tax category: "S" for the two
// standard rates, "Z" for the zero bucket (which also absorbs unknown rates,
// same as the aggregator).
func categoryID(rate decimal.Decimal) string {
	if rate.Equal(totals.Rate19) || rate.Equal(totals.Rate7) {
		return "S"
	}
	return "Z"
}

// lineRate reports the rate emitted per line: unknown rates are bucketed as
// 0% to stay consistent with the totals engine.
func lineRate(rate decimal.Decimal) decimal.Decimal {
	if rate.Equal(totals.Rate19) || rate.Equal(totals.Rate7) {
		return rate
	}
	return decimal.Zero
}

func text(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

func amount(parent *etree.Element, tag string, d decimal.Decimal) *etree.Element {
	el := text(parent, tag, totals.FormatAmount(d))
	el.CreateAttr("currencyID", model.CurrencyCode)
	return el
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
