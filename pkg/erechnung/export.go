package erechnung

import (
	"fmt"
	"time"

	"github.com/rezonia/erechnung/internal/validation"
	"github.com/rezonia/erechnung/internal/xrechnung"
	"github.com/rezonia/erechnung/internal/zugferd"
)

// ValidationFailedError is returned by the export conveniences when the
// invoice does not pass validation. The full report is attached for display.
type ValidationFailedError struct {
	Report *validation.Result
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("invoice has %d validation error(s)", len(e.Report.Errors))
}

// ExportXRechnung validates the invoice and, if it passes, generates
// XRechnung 3.0 UBL XML.
func ExportXRechnung(inv *Invoice) (string, error) {
	if report := validation.Validate(inv); !report.Valid {
		return "", &ValidationFailedError{Report: report}
	}
	return xrechnung.Generate(inv)
}

// XRechnungFileName returns the conventional download name for an XRechnung
// export (XRechnung_<number>_<date>.xml).
func XRechnungFileName(inv *Invoice) string {
	return xrechnung.FileName(inv)
}

// ExportZUGFeRD validates the invoice and, if it passes, generates the CII
// XML and embeds it into sourcePDF as a ZUGFeRD 2.2 / Factur-X document.
func ExportZUGFeRD(inv *Invoice, sourcePDF []byte) ([]byte, error) {
	if report := validation.Validate(inv); !report.Valid {
		return nil, &ValidationFailedError{Report: report}
	}
	return zugferd.Export(inv, sourcePDF, time.Now())
}

// ZUGFeRDFileName returns the conventional download name for a ZUGFeRD
// export (ZUGFeRD-<number>-<date>.pdf).
func ZUGFeRDFileName(inv *Invoice) string {
	return zugferd.FileName(inv)
}
