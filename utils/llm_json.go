package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

var (
	ErrNoJSONObject = errors.New("no JSON object in model output")

	keyCleanRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// fieldAliases maps cleaned model keys onto the field set. Keys equal to a
// field name are matched directly and need no entry.
var fieldAliases = map[string]dto.FieldName{
	"name":            dto.FieldFullName,
	"father_name":     dto.FieldFathersName,
	"father_s_name":   dto.FieldFathersName,
	"dob":             dto.FieldDateOfBirth,
	"birth_date":      dto.FieldDateOfBirth,
	"address":         dto.FieldAddress,
	"phone":           dto.FieldPhoneNumber,
	"mobile":          dto.FieldPhoneNumber,
	"mobile_number":   dto.FieldPhoneNumber,
	"email":           dto.FieldEmailAddress,
	"aadhaar":         dto.FieldAadhaarNumber,
	"aadhar_number":   dto.FieldAadhaarNumber,
	"pan":             dto.FieldPANNumber,
	"emp_id":          dto.FieldEmployeeID,
	"account_no":      dto.FieldAccountNumber,
	"bank_account":    dto.FieldAccountNumber,
	"account":         dto.FieldAccountNumber,
	"employee_number": dto.FieldEmployeeID,
}

// ParseLLMFields decodes a language model reply into the field set. It
// tolerates markdown code fences, prose around the JSON object, null values,
// numeric values and title-case keys such as "Father's Name".
func ParseLLMFields(reply string) (dto.ExtractedFields, error) {
	text := stripCodeFences(reply)
	obj, ok := extractBalanced(text, '{', '}')
	if !ok {
		return nil, ErrNoJSONObject
	}

	dec := json.NewDecoder(strings.NewReader(obj))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}

	fields := dto.NewExtractedFields()
	for key, value := range raw {
		name, ok := fieldForKey(key)
		if !ok {
			continue
		}
		if s := stringValue(value); s != "" {
			fields[name] = s
		}
	}
	return fields, nil
}

func fieldForKey(key string) (dto.FieldName, bool) {
	cleaned := strings.ToLower(strings.ReplaceAll(key, "'", ""))
	cleaned = strings.Trim(keyCleanRe.ReplaceAllString(cleaned, "_"), "_")

	if name := dto.FieldName(cleaned); dto.IsKnownField(name) {
		return name, true
	}
	name, ok := fieldAliases[cleaned]
	return name, ok
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return CollapseSpaces(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// stripCodeFences removes surrounding Markdown code fences like ```json ... ```.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		// remove a possible language tag at the start of the fence
		if i := strings.IndexByte(s, '\n'); i != -1 {
			first := strings.TrimSpace(s[:i])
			if len(first) > 0 && len(first) < 20 && !strings.ContainsAny(first, "{[") {
				s = s[i+1:]
			}
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// extractBalanced returns the first balanced open/close delimited span of s.
// Delimiters inside JSON strings are ignored.
func extractBalanced(s string, open, close rune) (string, bool) {
	start := -1
	depth := 0
	inString, escaped := false, false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
