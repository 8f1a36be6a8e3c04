package server

import "github.com/rezonia/erechnung/internal/validation"

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ValidationFailedResponse is returned when an export is requested for an
// invoice that does not pass validation.
type ValidationFailedResponse struct {
	Error  string             `json:"error"`
	Report *validation.Result `json:"report"`
}
