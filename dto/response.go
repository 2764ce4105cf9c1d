package dto

import (
	"errors"
	"fmt"
	"strings"
)

// Custom errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoDocuments     = errors.New("no documents provided")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// InputError describes a malformed person record. Document is 1-based; zero
// means the error concerns the record itself.
type InputError struct {
	PersonID string
	Document int
	Field    string
	Reason   string
	Err      error
}

func (e *InputError) Error() string {
	var parts []string
	if e.PersonID != "" {
		parts = append(parts, "person "+e.PersonID)
	}
	if e.Document > 0 {
		parts = append(parts, fmt.Sprintf("document %d", e.Document))
	}
	if e.Field != "" {
		parts = append(parts, "field "+e.Field)
	}
	if len(parts) == 0 {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s: %s", strings.Join(parts, ", "), e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
