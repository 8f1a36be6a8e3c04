package zugferd

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezonia/erechnung/internal/model"
)

const producer = "erechnung"

// Meta holds the document-level PDF metadata set during embedding.
type Meta struct {
	Title    string
	Author   string // seller name
	Subject  string
	Keywords string
}

// DefaultMeta derives PDF metadata from the invoice.
func DefaultMeta(inv *model.Invoice) Meta {
	return Meta{
		Title:    fmt.Sprintf("Rechnung %s", inv.Number),
		Author:   inv.Seller.Name,
		Subject:  fmt.Sprintf("Rechnung %s vom %s", inv.Number, inv.IssueDate),
		Keywords: "ZUGFeRD, Factur-X, EN16931, Rechnung",
	}
}

// Export generates the CII XML for inv and embeds it into sourcePDF.
func Export(inv *model.Invoice, sourcePDF []byte, now time.Time) ([]byte, error) {
	cii, err := GenerateCII(inv)
	if err != nil {
		return nil, err
	}
	return Embed(sourcePDF, []byte(cii), DefaultMeta(inv), now)
}

// Embed attaches the CII XML to the source PDF as factur-x.xml with
// AFRelationship Alternative (the signal that the attachment is the
// machine-readable equivalent of the visible pages), injects the XMP packet
// into the catalog metadata stream and rewrites the Info dictionary.
//
// Any failure is reported as an ExportError; no partial document is returned.
func Embed(sourcePDF, cii []byte, meta Meta, now time.Time) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(sourcePDF), pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return nil, model.NewExportError("read", "source PDF could not be parsed", err)
	}

	modTime := now
	attachment := pdfmodel.Attachment{
		Reader:   bytes.NewReader(cii),
		ID:       AttachmentName,
		FileName: AttachmentName,
		Desc:     "Factur-X/ZUGFeRD invoice",
		ModTime:  &modTime,
	}
	if err := ctx.AddAttachment(attachment, false); err != nil {
		return nil, model.NewExportError("attach", "embedding the invoice XML failed", err)
	}

	if err := markAlternative(ctx); err != nil {
		return nil, model.NewExportError("attach", "flagging the attachment failed", err)
	}
	if err := injectXMP(ctx, []byte(BuildXMP(producer, now))); err != nil {
		return nil, model.NewExportError("metadata", "writing XMP metadata failed", err)
	}
	if err := writeInfoDict(ctx, meta, now); err != nil {
		return nil, model.NewExportError("metadata", "writing the info dictionary failed", err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, model.NewExportError("write", "saving the PDF failed", err)
	}
	return buf.Bytes(), nil
}

// markAlternative locates the file specification created by AddAttachment,
// sets AFRelationship and records it in the catalog's /AF array. The embedded
// file stream additionally gets the text/xml subtype.
func markAlternative(ctx *pdfmodel.Context) error {
	var fileSpecNr int

	for objNr, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		switch obj := entry.Object.(type) {
		case types.Dict:
			if name, ok := obj["Type"].(types.Name); ok && name == "Filespec" {
				obj["AFRelationship"] = types.Name("Alternative")
				fileSpecNr = objNr
			}
		case types.StreamDict:
			if name, ok := obj.Dict["Type"].(types.Name); ok && name == "EmbeddedFile" {
				obj.Dict["Subtype"] = types.Name("text/xml")
			}
		}
	}

	if fileSpecNr == 0 {
		return fmt.Errorf("file specification for %s not found", AttachmentName)
	}

	rootDict, err := ctx.DereferenceDict(*ctx.Root)
	if err != nil {
		return err
	}
	rootDict["AF"] = types.Array{*types.NewIndirectRef(fileSpecNr, 0)}
	return nil
}

// injectXMP stores the XMP packet as the catalog's metadata stream. The
// stream stays unfiltered as required for PDF/A.
func injectXMP(ctx *pdfmodel.Context, xmp []byte) error {
	length := int64(len(xmp))
	sd := types.StreamDict{
		Dict: types.Dict{
			"Type":    types.Name("Metadata"),
			"Subtype": types.Name("XML"),
			"Length":  types.Integer(len(xmp)),
		},
		Content:      xmp,
		Raw:          xmp,
		StreamLength: &length,
	}

	ref, err := ctx.IndRefForNewObject(sd)
	if err != nil {
		return err
	}

	rootDict, err := ctx.DereferenceDict(*ctx.Root)
	if err != nil {
		return err
	}
	rootDict["Metadata"] = *ref
	return nil
}

func writeInfoDict(ctx *pdfmodel.Context, meta Meta, now time.Time) error {
	date := pdfDate(now)
	info := types.Dict{
		"Title":        pdfString(meta.Title),
		"Author":       pdfString(meta.Author),
		"Subject":      pdfString(meta.Subject),
		"Keywords":     pdfString(meta.Keywords),
		"Creator":      pdfString(producer),
		"Producer":     pdfString(producer),
		"CreationDate": pdfString(date),
		"ModDate":      pdfString(date),
	}

	ref, err := ctx.IndRefForNewObject(info)
	if err != nil {
		return err
	}
	ctx.Info = ref
	return nil
}

// pdfString escapes a value for use as a PDF string literal.
func pdfString(s string) types.StringLiteral {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return types.StringLiteral(r.Replace(s))
}

// pdfDate renders a PDF date string, e.g. D:20260115093000Z.
func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}
