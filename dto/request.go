package dto

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// SupportedExtensions lists the document file types accepted for extraction.
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}

// IsSupportedFile reports whether filename has a supported extension.
func IsSupportedFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range SupportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ExtractRequest represents the multipart request for extraction plus verification
type ExtractRequest struct {
	PersonID string
	Files    []*multipart.FileHeader
}

// Validate validates the extraction request
func (r *ExtractRequest) Validate(maxDocuments int) error {
	if strings.TrimSpace(r.PersonID) == "" {
		return fmt.Errorf("person_id is required")
	}
	if len(r.Files) == 0 {
		return ErrNoDocuments
	}
	if maxDocuments > 0 && len(r.Files) > maxDocuments {
		return fmt.Errorf("at most %d documents are accepted per person", maxDocuments)
	}

	for _, f := range r.Files {
		if !IsSupportedFile(f.Filename) {
			return fmt.Errorf("%w: %s (supported: PDF, PNG, JPG)", ErrUnsupportedFile, f.Filename)
		}
	}

	return nil
}
