// Package zugferd generates ZUGFeRD 2.2 / Factur-X hybrid invoices: a
// UN/CEFACT Cross-Industry-Invoice XML payload embedded into a PDF.
package zugferd

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/totals"
)

// GuidelineID declares Factur-X comfort / EN16931 conformance, bit-exact.
const GuidelineID = "urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:comfort"

// AttachmentName is the embedded file name ZUGFeRD readers look for.
const AttachmentName = "factur-x.xml"

// UN/CEFACT CII namespace set.
const (
	nsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
)

// FileName returns the conventional download name for a ZUGFeRD export.
func FileName(inv *model.Invoice) string {
	return fmt.Sprintf("ZUGFeRD-%s-%s.pdf", inv.Number, inv.IssueDate)
}

// GenerateCII serializes the invoice as CII XML. Same contract as the
// XRechnung generator: no user-data validation, optional fields omit their
// blocks, contract violations fail.
func GenerateCII(inv *model.Invoice) (string, error) {
	if inv == nil {
		return "", model.NewGenerationError("zugferd", "invoice must not be nil")
	}
	if inv.Items == nil {
		return "", model.NewGenerationError("zugferd", "line item collection is absent")
	}
	if inv.Type == model.DocumentOffer {
		return "", model.NewGenerationError("zugferd", "offers cannot be exported as ZUGFeRD")
	}

	agg := totals.Calculate(inv.Items)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", nsRSM)
	root.CreateAttr("xmlns:ram", nsRAM)
	root.CreateAttr("xmlns:udt", nsUDT)

	context := root.CreateElement("rsm:ExchangedDocumentContext")
	guideline := context.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	text(guideline, "ram:ID", GuidelineID)

	document := root.CreateElement("rsm:ExchangedDocument")
	text(document, "ram:ID", inv.Number)
	text(document, "ram:TypeCode", typeCode(inv))
	issue := document.CreateElement("ram:IssueDateTime")
	dateTime(issue, inv.IssueDate)

	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")

	for i, li := range inv.BillableItems() {
		tradeLineItem(tx, i+1, li)
	}

	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	if ref := buyerReference(inv); ref != "" {
		text(agreement, "ram:BuyerReference", ref)
	}
	sellerTradeParty(agreement, &inv.Seller)
	buyerTradeParty(agreement, &inv.Buyer)
	if inv.OrderRef != "" {
		order := agreement.CreateElement("ram:BuyerOrderReferencedDocument")
		text(order, "ram:IssuerAssignedID", inv.OrderRef)
	}

	delivery := tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	if inv.ServicePeriod != "" {
		event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
		occurrence := event.CreateElement("ram:OccurrenceDateTime")
		dateTime(occurrence, inv.IssueDate)
	}

	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	text(settlement, "ram:InvoiceCurrencyCode", model.CurrencyCode)
	if inv.Seller.IBAN != "" {
		means := settlement.CreateElement("ram:SpecifiedTradeSettlementPaymentMeans")
		text(means, "ram:TypeCode", "58")
		account := means.CreateElement("ram:PayeePartyCreditorFinancialAccount")
		text(account, "ram:IBANID", stripSpaces(inv.Seller.IBAN))
		if inv.Seller.BIC != "" {
			institution := means.CreateElement("ram:PayeeSpecifiedCreditorFinancialInstitution")
			text(institution, "ram:BICID", inv.Seller.BIC)
		}
	}
	headerTradeTax(settlement, agg.VAT19, agg.Net19, totals.Rate19)
	headerTradeTax(settlement, agg.VAT7, agg.Net7, totals.Rate7)
	headerTradeTax(settlement, decimal.Zero, agg.Net0, decimal.Zero)
	if inv.DueDate != "" {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		due := terms.CreateElement("ram:DueDateDateTime")
		dateTime(due, inv.DueDate)
	}
	summation(settlement, agg)

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

func buyerReference(inv *model.Invoice) string {
	if inv.LeitwegID != "" {
		return inv.LeitwegID
	}
	return inv.Buyer.CustomerNumber
}

// dateTime emits a udt:DateTimeString in CII format 102: the ISO date with
// separators stripped, e.g. "2026-01-15" -> "20260115".
func dateTime(parent *etree.Element, isoDate string) {
	el := text(parent, "udt:DateTimeString", compactDate(isoDate))
	el.CreateAttr("format", "102")
}

func compactDate(isoDate string) string {
	return strings.ReplaceAll(isoDate, "-", "")
}

func tradeLineItem(tx *etree.Element, seq int, li model.LineItem) {
	line := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	lineDoc := line.CreateElement("ram:AssociatedDocumentLineDocument")
	text(lineDoc, "ram:LineID", fmt.Sprintf("%d", seq))

	product := line.CreateElement("ram:SpecifiedTradeProduct")
	text(product, "ram:Name", li.Description)

	lineAgreement := line.CreateElement("ram:SpecifiedLineTradeAgreement")
	price := lineAgreement.CreateElement("ram:NetPriceProductTradePrice")
	text(price, "ram:ChargeAmount", totals.FormatAmount(li.UnitPrice))

	lineDelivery := line.CreateElement("ram:SpecifiedLineTradeDelivery")
	qty := text(lineDelivery, "ram:BilledQuantity", li.Quantity.StringFixed(2))
	qty.CreateAttr("unitCode", model.UnitCode(li.Unit))

	lineSettlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
	tax := lineSettlement.CreateElement("ram:ApplicableTradeTax")
	text(tax, "ram:TypeCode", "VAT")
	text(tax, "ram:CategoryCode", categoryCode(li.TaxRate))
	text(tax, "ram:RateApplicablePercent", lineRate(li.TaxRate).StringFixed(2))
	lineSum := lineSettlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	text(lineSum, "ram:LineTotalAmount", totals.FormatAmount(li.Amount()))
}

func tradeParty(parent *etree.Element, tag string, p *model.Party, email string) *etree.Element {
	party := parent.CreateElement(tag)
	text(party, "ram:Name", p.Name)
	addr := party.CreateElement("ram:PostalTradeAddress")
	text(addr, "ram:PostcodeCode", p.PostalCode)
	text(addr, "ram:LineOne", p.Street)
	text(addr, "ram:CityName", p.City)
	text(addr, "ram:CountryID", model.CountryCode)
	if email != "" {
		comm := party.CreateElement("ram:URIUniversalCommunication")
		uri := text(comm, "ram:URIID", email)
		uri.CreateAttr("schemeID", "EM")
	}
	return party
}

func sellerTradeParty(agreement *etree.Element, s *model.Seller) {
	party := tradeParty(agreement, "ram:SellerTradeParty", &s.Party, s.Email)
	// Scheme FC carries the domestic tax number, VA the VAT identifier.
	if s.TaxNumber != "" {
		taxRegistration(party, "FC", s.TaxNumber)
	}
	if s.VATID != "" {
		taxRegistration(party, "VA", s.VATID)
	}
}

func buyerTradeParty(agreement *etree.Element, b *model.Buyer) {
	party := tradeParty(agreement, "ram:BuyerTradeParty", &b.Party, b.Email)
	if b.VATID != "" {
		taxRegistration(party, "VA", b.VATID)
	}
}

func taxRegistration(party *etree.Element, schemeID, id string) {
	reg := party.CreateElement("ram:SpecifiedTaxRegistration")
	el := text(reg, "ram:ID", id)
	el.CreateAttr("schemeID", schemeID)
}

// headerTradeTax emits one ApplicableTradeTax per bucket with nonzero basis.
func headerTradeTax(settlement *etree.Element, tax, basis, rate decimal.Decimal) {
	if basis.IsZero() {
		return
	}
	tt := settlement.CreateElement("ram:ApplicableTradeTax")
	text(tt, "ram:CalculatedAmount", totals.FormatAmount(tax))
	text(tt, "ram:TypeCode", "VAT")
	text(tt, "ram:BasisAmount", totals.FormatAmount(basis))
	text(tt, "ram:CategoryCode", categoryCode(rate))
	text(tt, "ram:RateApplicablePercent", rate.StringFixed(2))
}

func summation(settlement *etree.Element, agg totals.Totals) {
	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	text(sum, "ram:LineTotalAmount", totals.FormatAmount(agg.NetTotal))
	text(sum, "ram:TaxBasisTotalAmount", totals.FormatAmount(agg.NetTotal))
	taxTotal := text(sum, "ram:TaxTotalAmount", totals.FormatAmount(agg.VATTotal()))
	taxTotal.CreateAttr("currencyID", model.CurrencyCode)
	text(sum, "ram:GrandTotalAmount", totals.FormatAmount(agg.GrossTotal))
	text(sum, "ram:DuePayableAmount", totals.FormatAmount(agg.GrossTotal))
}

func categoryCode(rate decimal.Decimal) string {
	if rate.Equal(totals.Rate19) || rate.Equal(totals.Rate7) {
		return "S"
	}
	return "Z"
}

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

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
