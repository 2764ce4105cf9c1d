package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

var (
	nameLabelRe    = regexp.MustCompile(`(?i)^(?:full\s+|applicant(?:'?s)?\s+|employee\s+)?name\b`)
	fatherLabelRe  = regexp.MustCompile(`(?i)^(?:father(?:'?s)?\s*(?:/\s*husband(?:'?s)?\s*)?name\b|s/o\b|son\s+of\b|d/o\b|daughter\s+of\b)`)
	dobLabelRe     = regexp.MustCompile(`(?i)^(?:dob|d\.o\.b\.?|date\s+of\s+birth|birth\s+date)`)
	addressLabelRe = regexp.MustCompile(`(?i)^(?:complete\s+|permanent\s+|residential\s+)?address\b`)
	phoneLabelRe   = regexp.MustCompile(`(?i)^(?:mobile|phone|mob|contact|tel)\b(?:\s*(?:no\.?|number))?`)
	empLabelRe     = regexp.MustCompile(`(?i)^(?:employee|emp)\.?\s*(?:id|code|no\.?|number)\b`)

	anyDateRe     = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4}\b|\b\d{4}-\d{1,2}-\d{1,2}\b`)
	panTokenRe    = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	aadhaarTokRe  = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
	phoneTokenRe  = regexp.MustCompile(`(?:\+91[\s-]?|\b0)?\b[6-9]\d{4}[\s-]?\d{5}\b`)
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	empIDRe       = regexp.MustCompile(`(?i)\b(EMP[- ]?\d{3,})\b`)
	nameCleanRe   = regexp.MustCompile(`[^A-Za-z.\s]+`)
	leadingJunkRe = regexp.MustCompile(`^[^A-Za-z0-9]+`)
	commaRe       = regexp.MustCompile(`\s*,\s*`)

	accountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`account\s*(?:no\.?|number)[\s\-]*([0-9]{9,18})`),
		regexp.MustCompile(`a/c\s*(?:no\.?)?[\s\-]*([0-9]{9,18})`),
		regexp.MustCompile(`ac\s*no\.?[\s\-]*([0-9]{9,18})`),
		regexp.MustCompile(`acc\s*no\.?[\s\-]*([0-9]{9,18})`),
	}
)

// ParseKYCFields extracts the identity field set from cleaned OCR text using
// label and pattern heuristics. Fields that cannot be located stay empty.
func ParseKYCFields(text string) dto.ExtractedFields {
	lines := normalizeLines(text)
	fields := dto.NewExtractedFields()

	dob, dobIdx := extractDOB(lines)
	fields[dto.FieldDateOfBirth] = dob
	fields[dto.FieldFullName] = extractName(lines, dobIdx)
	fields[dto.FieldFathersName] = extractFathersName(lines)
	fields[dto.FieldAddress] = extractAddressBlock(lines)
	fields[dto.FieldPhoneNumber] = extractPhone(lines, text)
	fields[dto.FieldEmailAddress] = emailRe.FindString(text)
	fields[dto.FieldPANNumber] = panTokenRe.FindString(strings.ToUpper(text))
	fields[dto.FieldEmployeeID] = extractEmployeeID(lines, text)

	account := extractAccountNumber(text)
	fields[dto.FieldAccountNumber] = account
	fields[dto.FieldAadhaarNumber] = extractAadhaar(lines, text, account)

	return fields
}

// normalizeLines cleans and splits OCR text into lines
func normalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	rawLines := strings.Split(text, "\n")

	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// valueAfterLabel returns the text following label on the first line that
// starts with it, or the next line when the label stands alone.
func valueAfterLabel(lines []string, label *regexp.Regexp) (string, int) {
	for i, line := range lines {
		loc := label.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line[loc[1]:]), ":-"))
		if rest != "" {
			return rest, i
		}
		if i+1 < len(lines) {
			return lines[i+1], i + 1
		}
	}
	return "", -1
}

// ---------------- DOB ----------------

func extractDOB(lines []string) (string, int) {
	if v, idx := valueAfterLabel(lines, dobLabelRe); v != "" {
		if m := anyDateRe.FindString(v); m != "" {
			return m, idx
		}
	}

	// Fallback: first date-looking token anywhere
	for i, line := range lines {
		if m := anyDateRe.FindString(line); m != "" {
			return m, i
		}
	}
	return "", -1
}

// ---------------- Names ----------------

func extractName(lines []string, dobIdx int) string {
	for i, line := range lines {
		if fatherLabelRe.MatchString(line) {
			continue
		}
		loc := nameLabelRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line[loc[1]:]), ":-"))
		if rest == "" && i+1 < len(lines) {
			rest = lines[i+1]
		}
		if name := cleanNameFromLine(rest); isLikelyPersonName(name) {
			return name
		}
	}

	// Aadhaar layout: the name sits just above the DOB line
	if dobIdx > 0 {
		for i := dobIdx - 1; i >= 0 && dobIdx-i <= 3; i-- {
			if fatherLabelRe.MatchString(lines[i]) {
				continue
			}
			if name := cleanNameFromLine(lines[i]); isLikelyPersonName(name) {
				return name
			}
		}
	}
	return ""
}

func extractFathersName(lines []string) string {
	v, _ := valueAfterLabel(lines, fatherLabelRe)
	if v == "" {
		return ""
	}
	// "S/O Suresh Sharma, 12 MG Road" keeps only the name part
	if i := strings.IndexByte(v, ','); i > 0 {
		v = v[:i]
	}
	name := cleanNameFromLine(v)
	if isLikelyPersonName(name) {
		return name
	}
	return ""
}

// cleanNameFromLine strips noise and returns the first four words.
func cleanNameFromLine(line string) string {
	line = nameCleanRe.ReplaceAllString(line, " ")
	parts := strings.Fields(line)
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, " ")
}

// isLikelyPersonName runs a few sanity checks to avoid picking
// "Government of India", "Income Tax Department", etc.
func isLikelyPersonName(name string) bool {
	words := strings.Fields(name)
	if len(words) < 1 || len(words) > 4 {
		return false
	}

	lower := strings.ToLower(name)
	badTokens := []string{
		"government", "india", "authority", "unique", "identification",
		"aadhaar", "address", "income", "department", "signature",
		"permanent", "account", "birth",
	}
	for _, t := range badTokens {
		if strings.Contains(lower, t) {
			return false
		}
	}

	letterCount := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	return letterCount >= 3
}

// ---------------- Address ----------------

// extractAddressBlock reads lines starting from the line that contains "Address"
// and collects a few subsequent lines, stopping at disclaimers or other labels.
func extractAddressBlock(lines []string) string {
	startIdx := -1
	for i, line := range lines {
		if addressLabelRe.MatchString(line) {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return ""
	}

	var addrLines []string
	first := lines[startIdx]
	loc := addressLabelRe.FindStringIndex(first)
	if cl := cleanAddressLine(strings.TrimLeft(strings.TrimSpace(first[loc[1]:]), ":-")); cl != "" {
		addrLines = append(addrLines, cl)
	}

	for i := startIdx + 1; i < len(lines) && len(addrLines) < 6; i++ {
		line := lines[i]
		lower := strings.ToLower(line)

		if strings.Contains(lower, "aadhaar is proof") ||
			strings.Contains(lower, "it should be used with verification") ||
			strings.Contains(lower, "authentication") ||
			isFieldLabel(line) {
			break
		}

		if cl := cleanAddressLine(line); cl != "" {
			addrLines = append(addrLines, cl)
		}
	}

	seen := make(map[string]bool)
	final := make([]string, 0, len(addrLines))
	for _, l := range addrLines {
		if !seen[l] {
			seen[l] = true
			final = append(final, l)
		}
	}

	return strings.Join(final, ", ")
}

func isFieldLabel(line string) bool {
	for _, re := range []*regexp.Regexp{nameLabelRe, fatherLabelRe, dobLabelRe, phoneLabelRe, empLabelRe} {
		if re.MatchString(line) {
			return true
		}
	}
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "email") ||
		strings.HasPrefix(lower, "pan") ||
		strings.HasPrefix(lower, "aadhaar") ||
		strings.HasPrefix(lower, "account")
}

// cleanAddressLine trims leading noise and compresses spaces.
func cleanAddressLine(line string) string {
	line = leadingJunkRe.ReplaceAllString(line, "")
	line = CollapseSpaces(line)
	line = strings.TrimRight(commaRe.ReplaceAllString(line, ", "), ", ")
	if line == "" {
		return ""
	}

	letterOrDigit := 0
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letterOrDigit++
		}
	}
	if letterOrDigit < 3 {
		return ""
	}
	return line
}

// ---------------- Numbers ----------------

func extractPhone(lines []string, text string) string {
	if v, _ := valueAfterLabel(lines, phoneLabelRe); v != "" {
		if m := phoneTokenRe.FindString(v); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return strings.TrimSpace(phoneTokenRe.FindString(text))
}

func extractEmployeeID(lines []string, text string) string {
	if m := empIDRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.ToUpper(m[1])
	}
	if v, _ := valueAfterLabel(lines, empLabelRe); v != "" {
		if fields := strings.Fields(v); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// extractAccountNumber only accepts explicitly labelled account numbers, so
// that Aadhaar and phone numbers are never mistaken for one.
func extractAccountNumber(text string) string {
	cleaned := strings.ReplaceAll(text, "—", "-")
	cleaned = strings.ReplaceAll(cleaned, ":", " ")
	cleaned = strings.ReplaceAll(cleaned, "|", " ")
	cleaned = strings.ToLower(cleaned)

	for _, re := range accountPatterns {
		if matches := re.FindStringSubmatch(cleaned); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}

func extractAadhaar(lines []string, text, account string) string {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "aadhaar") || strings.Contains(strings.ToLower(line), "uid") {
			if m := aadhaarTokRe.FindString(line); m != "" {
				return m
			}
		}
	}

	for _, m := range aadhaarTokRe.FindAllString(text, -1) {
		if account != "" && NormalizeID(m) == account {
			continue
		}
		return m
	}
	return ""
}
