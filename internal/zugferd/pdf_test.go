package zugferd_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/zugferd"
)

// minimalPDF assembles a valid empty one-page PDF. Object offsets are
// computed while writing so the cross-reference table is always correct.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>\nendobj\n",
	}
	offsets := make([]int, 0, len(objects))
	for _, obj := range objects {
		offsets = append(offsets, buf.Len())
		buf.WriteString(obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)
	return buf.Bytes()
}

func TestBuildXMP(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	xmp := zugferd.BuildXMP("erechnung", now)

	assert.Contains(t, xmp, "<pdfaid:part>3</pdfaid:part>")
	assert.Contains(t, xmp, "<pdfaid:conformance>B</pdfaid:conformance>")
	assert.Contains(t, xmp, "<fx:DocumentFileName>factur-x.xml</fx:DocumentFileName>")
	assert.Contains(t, xmp, "<fx:DocumentType>INVOICE</fx:DocumentType>")
	assert.Contains(t, xmp, "<fx:ConformanceLevel>EN 16931</fx:ConformanceLevel>")
	assert.Contains(t, xmp, "2026-01-15T09:30:00Z")
	assert.True(t, strings.HasPrefix(xmp, "<?xpacket begin="))
}

func TestExport_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	out, err := zugferd.Export(testInvoice(), minimalPDF(), now)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	// The XMP metadata stream is unfiltered, so the packet appears verbatim.
	assert.Contains(t, string(out), "<pdfaid:part>3</pdfaid:part>")
	assert.Contains(t, string(out), "<fx:DocumentFileName>factur-x.xml</fx:DocumentFileName>")

	// Re-read the finished document and inspect the embedding structures.
	ctx, err := api.ReadContext(bytes.NewReader(out), pdfmodel.NewDefaultConfiguration())
	require.NoError(t, err)

	rootDict, err := ctx.DereferenceDict(*ctx.Root)
	require.NoError(t, err)
	assert.NotNil(t, rootDict["AF"], "catalog must reference the attachment via /AF")
	assert.NotNil(t, rootDict["Metadata"], "catalog must carry the XMP metadata stream")

	var foundFileSpec, foundEmbeddedFile bool
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		switch obj := entry.Object.(type) {
		case types.Dict:
			if name, ok := obj["Type"].(types.Name); ok && name == "Filespec" {
				foundFileSpec = true
				rel, ok := obj["AFRelationship"].(types.Name)
				require.True(t, ok, "file specification is missing AFRelationship")
				assert.Equal(t, types.Name("Alternative"), rel)
			}
		case types.StreamDict:
			if name, ok := obj.Dict["Type"].(types.Name); ok && name == "EmbeddedFile" {
				foundEmbeddedFile = true
			}
		}
	}
	assert.True(t, foundFileSpec, "no file specification in the output")
	assert.True(t, foundEmbeddedFile, "no embedded file stream in the output")
}

func TestEmbed_RejectsMalformedPDF(t *testing.T) {
	_, err := zugferd.Embed([]byte("not a pdf"), []byte("<xml/>"), zugferd.Meta{}, time.Now())
	require.Error(t, err)

	var exportErr *model.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "read", exportErr.Stage)
}

func TestExport_PropagatesContractViolation(t *testing.T) {
	var genErr *model.GenerationError
	_, err := zugferd.Export(nil, []byte("%PDF-1.7"), time.Now())
	require.ErrorAs(t, err, &genErr)
}

func TestDefaultMeta(t *testing.T) {
	meta := zugferd.DefaultMeta(testInvoice())
	assert.Equal(t, "Rechnung RE-2026-0001", meta.Title)
	assert.Equal(t, "Muster GmbH", meta.Author)
	assert.Contains(t, meta.Keywords, "ZUGFeRD")
	assert.Contains(t, meta.Keywords, "Factur-X")
	assert.Contains(t, meta.Keywords, "EN16931")
}
