package model

import "fmt"

// GenerationError represents a programming-contract violation when calling a
// generator: structurally absent inputs, or an offer passed to an invoice
// exporter. User-data problems never surface here; they are validation
// messages.
type GenerationError struct {
	Format  string // "xrechnung" or "zugferd"
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Format, e.Message)
}

// NewGenerationError creates a new generation error
func NewGenerationError(format, message string) *GenerationError {
	return &GenerationError{
		Format:  format,
		Message: message,
	}
}

// ExportError represents an external-resource failure during ZUGFeRD export
// (PDF load, attachment or save). It is distinct from a validation failure
// and never carries a partial document.
type ExportError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("export failed [%s]: %s", e.Stage, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new export error
func NewExportError(stage, message string, cause error) *ExportError {
	return &ExportError{
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}
