package service

import (
	"fmt"
	"strings"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/utils"
)

const notEnoughValues = "fewer than two values to compare"

// fieldValue is one non-empty normalized value and the 1-based document it came from.
type fieldValue struct {
	doc   int
	value string
}

func collect(docs []dto.ExtractedFields, field dto.FieldName, normalize func(string) string) []fieldValue {
	var out []fieldValue
	for i, doc := range docs {
		if v := normalize(doc.Get(field)); v != "" {
			out = append(out, fieldValue{doc: i + 1, value: v})
		}
	}
	return out
}

func valuesOf(fv []fieldValue) []string {
	out := make([]string, len(fv))
	for i, v := range fv {
		out[i] = v.value
	}
	return out
}

func docList(fv []fieldValue) string {
	parts := make([]string, len(fv))
	for i, v := range fv {
		parts[i] = fmt.Sprint(v.doc)
	}
	return strings.Join(parts, ", ")
}

// fuzzyRule passes when every pair of values scores at least threshold.
func fuzzyRule(field dto.FieldName, threshold float64, sortTokens bool) evalFunc {
	normalize := utils.NormalizeText
	if sortTokens {
		normalize = func(s string) string { return utils.SortTokens(utils.NormalizeText(s)) }
	}

	return func(docs []dto.ExtractedFields) dto.RuleOutcome {
		vals := collect(docs, field, normalize)
		score, ok := utils.MinPairwiseSimilarity(valuesOf(vals))
		if !ok {
			return dto.Pass(notEnoughValues)
		}

		detail := fmt.Sprintf("lowest similarity %.2f across documents %s, threshold %.2f", score, docList(vals), threshold)
		if score >= threshold {
			return dto.Pass(detail).WithScore(score)
		}
		return dto.Fail(detail).WithScore(score)
	}
}

// equalityRule passes when every normalized value is identical.
func equalityRule(field dto.FieldName, normalize func(string) string) evalFunc {
	return func(docs []dto.ExtractedFields) dto.RuleOutcome {
		vals := collect(docs, field, normalize)
		if len(vals) < 2 {
			return dto.Pass(notEnoughValues)
		}
		for _, v := range vals[1:] {
			if v.value != vals[0].value {
				return dto.Fail(fmt.Sprintf("document %d differs from document %d", v.doc, vals[0].doc))
			}
		}
		return dto.Pass(fmt.Sprintf("documents %s agree", docList(vals)))
	}
}

func dobRule() evalFunc {
	same := equalityRule(dto.FieldDateOfBirth, utils.NormalizeDate)
	return func(docs []dto.ExtractedFields) dto.RuleOutcome {
		for _, v := range collect(docs, dto.FieldDateOfBirth, utils.NormalizeDate) {
			if v.value == utils.DateUnparsed {
				return dto.Fail(fmt.Sprintf("unparseable date of birth in document %d", v.doc))
			}
		}
		return same(docs)
	}
}

func phoneRule(nationalLength int) evalFunc {
	return equalityRule(dto.FieldPhoneNumber, func(s string) string {
		return utils.NormalizePhone(s, nationalLength)
	})
}

// formatRule passes when every present value satisfies valid. With required
// set, a person with no value at all fails.
func formatRule(field dto.FieldName, label string, valid func(string) bool, required bool) evalFunc {
	return func(docs []dto.ExtractedFields) dto.RuleOutcome {
		vals := collect(docs, field, utils.NormalizeID)
		if len(vals) == 0 {
			if required {
				return dto.Fail("no " + label + " found in any document")
			}
			return dto.Pass("no " + label + " present")
		}
		for _, v := range vals {
			if !valid(v.value) {
				return dto.Fail(fmt.Sprintf("invalid %s format in document %d", label, v.doc))
			}
		}
		return dto.Pass(fmt.Sprintf("valid %s in documents %s", label, docList(vals)))
	}
}
