package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	blankLinesRe = regexp.MustCompile(`\n\s+\n`)
	hSpaceRe     = regexp.MustCompile(`[ \t]+`)
)

// CleanOCRText applies NFKC normalization and tidies OCR whitespace while
// keeping the line structure the field parsers rely on.
func CleanOCRText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = hSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// InferMimeType infers MIME type from file extension
func InferMimeType(filename string) string {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".pdf") {
		return "application/pdf"
	} else if strings.HasSuffix(lower, ".png") {
		return "image/png"
	} else if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return "image/jpeg"
	}
	return ""
}

// IsValidMimeType checks if the MIME type is supported
func IsValidMimeType(mimeType string) bool {
	validTypes := []string{
		"application/pdf",
		"image/png",
		"image/jpeg",
		"image/jpg",
	}

	mimeType = strings.ToLower(mimeType)
	for _, valid := range validTypes {
		if strings.Contains(mimeType, valid) {
			return true
		}
	}
	return false
}
