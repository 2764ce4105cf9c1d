package service

import (
	"encoding/json"
	"testing"

	"github.com/Aashish23092/kyc-document-verification/config"
	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDocument() dto.ExtractedFields {
	return dto.ExtractedFields{
		dto.FieldFullName:      "Rahul Kumar Sharma",
		dto.FieldFathersName:   "Suresh Sharma",
		dto.FieldDateOfBirth:   "15-08-1995",
		dto.FieldAddress:       "12, MG Road, Pune, Maharashtra 411001",
		dto.FieldPhoneNumber:   "+91 98765 43210",
		dto.FieldEmailAddress:  "rahul.sharma@example.com",
		dto.FieldAadhaarNumber: "1234 5678 9012",
		dto.FieldPANNumber:     "ABCDE1234F",
		dto.FieldEmployeeID:    "EMP-1042",
		dto.FieldAccountNumber: "123456789012",
	}
}

func documentWith(overrides map[dto.FieldName]string) dto.ExtractedFields {
	doc := baseDocument()
	for k, v := range overrides {
		doc[k] = v
	}
	return doc
}

func validate(t *testing.T, rules config.Rules, docs ...dto.ExtractedFields) dto.VerificationResult {
	t.Helper()
	result, err := NewValidator(rules).Validate(dto.PersonRecord{PersonID: "P001", Documents: docs})
	require.NoError(t, err)
	require.Len(t, result.Rules, len(dto.AllRules))
	return result
}

func TestValidateIdenticalDocuments(t *testing.T) {
	result := validate(t, config.DefaultRules(), baseDocument(), baseDocument(), baseDocument())

	for _, id := range dto.AllRules {
		assert.Equal(t, dto.StatusPass, result.Rules[id].Status, id)
	}
	assert.Equal(t, 0, result.FailedRules)
	assert.Equal(t, dto.StatusVerified, result.OverallStatus)
	require.NotNil(t, result.Rules[dto.RuleNameMatch].Score)
	assert.Equal(t, 100.0, *result.Rules[dto.RuleNameMatch].Score)
}

func TestNameMatchThreshold(t *testing.T) {
	tests := []struct {
		name   string
		other  string
		status dto.RuleStatus
		score  float64
	}{
		{"single typo", "Rahul Kumar Sharme", dto.StatusPass, 94.44},
		{"case and spacing ignored", "  RAHUL   kumar sharma", dto.StatusPass, 100},
		{"different person", "Priya Verma", dto.StatusFail, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, config.DefaultRules(),
				baseDocument(),
				documentWith(map[dto.FieldName]string{dto.FieldFullName: tt.other}),
			)

			outcome := result.Rules[dto.RuleNameMatch]
			assert.Equal(t, tt.status, outcome.Status)
			require.NotNil(t, outcome.Score)
			if tt.status == dto.StatusPass {
				assert.Equal(t, tt.score, *outcome.Score)
			} else {
				assert.Less(t, *outcome.Score, 80.0)
			}
		})
	}
}

func TestFuzzyBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		field  dto.FieldName
		rule   dto.RuleID
		a, b   string
		status dto.RuleStatus
		score  float64
	}{
		{"name at 80 passes", dto.FieldFullName, dto.RuleNameMatch, "ANITA SHAH", "ANIKA SHAW", dto.StatusPass, 80},
		{"name at 70 fails", dto.FieldFullName, dto.RuleNameMatch, "ANITA SHAH", "ANIKA SHEW", dto.StatusFail, 70},
		{"father at 80 passes", dto.FieldFathersName, dto.RuleFatherNameMatch, "ANITA SHAH", "ANIKA SHAW", dto.StatusPass, 80},
		{"address at 70 passes", dto.FieldAddress, dto.RuleAddressMatch, "ANITA SHAH", "ANIKA SHEW", dto.StatusPass, 70},
		{"address at 60 fails", dto.FieldAddress, dto.RuleAddressMatch, "ANITA SHAH", "ANIKO SHEW", dto.StatusFail, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, config.DefaultRules(),
				documentWith(map[dto.FieldName]string{tt.field: tt.a}),
				documentWith(map[dto.FieldName]string{tt.field: tt.b}),
			)

			outcome := result.Rules[tt.rule]
			assert.Equal(t, tt.status, outcome.Status)
			require.NotNil(t, outcome.Score)
			assert.Equal(t, tt.score, *outcome.Score)
		})
	}
}

func TestFuzzyRuleReportsLowestPair(t *testing.T) {
	result := validate(t, config.DefaultRules(),
		documentWith(map[dto.FieldName]string{dto.FieldFullName: "ANITA SHAH"}),
		documentWith(map[dto.FieldName]string{dto.FieldFullName: "ANITA SHAH"}),
		documentWith(map[dto.FieldName]string{dto.FieldFullName: "ANIKA SHEW"}),
	)

	outcome := result.Rules[dto.RuleNameMatch]
	assert.Equal(t, dto.StatusFail, outcome.Status)
	assert.Equal(t, 70.0, *outcome.Score)
}

func TestSortNameTokens(t *testing.T) {
	docs := []dto.ExtractedFields{
		documentWith(map[dto.FieldName]string{dto.FieldFullName: "Rahul Sharma"}),
		documentWith(map[dto.FieldName]string{dto.FieldFullName: "Sharma Rahul"}),
	}

	plain := validate(t, config.DefaultRules(), docs...)
	assert.Equal(t, dto.StatusFail, plain.Rules[dto.RuleNameMatch].Status)

	rules := config.DefaultRules()
	rules.SortNameTokens = true
	sorted := validate(t, rules, docs...)
	assert.Equal(t, dto.StatusPass, sorted.Rules[dto.RuleNameMatch].Status)
	assert.Equal(t, 100.0, *sorted.Rules[dto.RuleNameMatch].Score)
}

func TestDOBMatch(t *testing.T) {
	tests := []struct {
		name   string
		dobs   []string
		status dto.RuleStatus
	}{
		{"same date in different formats", []string{"15-08-1995", "1995-08-15", "15/08/1995"}, dto.StatusPass},
		{"two digit year and ordinal day", []string{"15-08-1995", "15-08-95", "15th August 1995"}, dto.StatusPass},
		{"different day", []string{"15-08-1995", "16-08-1995"}, dto.StatusFail},
		{"unparseable value", []string{"15-08-1995", "not a date"}, dto.StatusFail},
		{"unparseable single value", []string{"not a date", ""}, dto.StatusFail},
		{"one value only", []string{"15-08-1995", ""}, dto.StatusPass},
		{"all empty", []string{"", ""}, dto.StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]dto.ExtractedFields, len(tt.dobs))
			for i, dob := range tt.dobs {
				docs[i] = documentWith(map[dto.FieldName]string{dto.FieldDateOfBirth: dob})
			}

			result := validate(t, config.DefaultRules(), docs...)
			assert.Equal(t, tt.status, result.Rules[dto.RuleDOBMatch].Status)
			assert.Nil(t, result.Rules[dto.RuleDOBMatch].Score)
		})
	}
}

func TestPhoneMatch(t *testing.T) {
	tests := []struct {
		name   string
		phones []string
		status dto.RuleStatus
	}{
		{"prefix variants agree", []string{"+91 98765 43210", "09876543210", "98765-43210"}, dto.StatusPass},
		{"different numbers", []string{"9876543210", "9123456789"}, dto.StatusFail},
		{"missing value ignored", []string{"9876543210", ""}, dto.StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]dto.ExtractedFields, len(tt.phones))
			for i, phone := range tt.phones {
				docs[i] = documentWith(map[dto.FieldName]string{dto.FieldPhoneNumber: phone})
			}

			result := validate(t, config.DefaultRules(), docs...)
			assert.Equal(t, tt.status, result.Rules[dto.RulePhoneMatch].Status)
		})
	}
}

func TestPANFormat(t *testing.T) {
	tests := []struct {
		name   string
		pans   []string
		status dto.RuleStatus
	}{
		{"valid", []string{"ABCDE1234F", ""}, dto.StatusPass},
		{"surrounding spaces stripped", []string{" ABCDE 1234F "}, dto.StatusPass},
		{"digit in last position", []string{"ABCDE12345"}, dto.StatusFail},
		{"lower case", []string{"abcde1234f"}, dto.StatusFail},
		{"one bad among good", []string{"ABCDE1234F", "ABCDE12345"}, dto.StatusFail},
		{"absent", []string{"", ""}, dto.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]dto.ExtractedFields, len(tt.pans))
			for i, pan := range tt.pans {
				docs[i] = documentWith(map[dto.FieldName]string{dto.FieldPANNumber: pan})
			}

			result := validate(t, config.DefaultRules(), docs...)
			assert.Equal(t, tt.status, result.Rules[dto.RulePANFormat].Status)
		})
	}
}

func TestAadhaarFormat(t *testing.T) {
	tests := []struct {
		name    string
		aadhaar string
		status  dto.RuleStatus
	}{
		{"grouped digits", "1234 5678 9012", dto.StatusPass},
		{"plain digits", "123456789012", dto.StatusPass},
		{"eleven digits", "12345678901", dto.StatusFail},
		{"thirteen digits", "1234567890123", dto.StatusFail},
		{"hyphens kept", "1234-5678-9012", dto.StatusFail},
		{"absent", "", dto.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, config.DefaultRules(),
				documentWith(map[dto.FieldName]string{dto.FieldAadhaarNumber: tt.aadhaar}))
			assert.Equal(t, tt.status, result.Rules[dto.RuleAadhaarFormat].Status)
		})
	}
}

func TestAbsentIdentifiersWhenNotRequired(t *testing.T) {
	rules := config.DefaultRules()
	rules.RequirePAN = false
	rules.RequireAadhaar = false

	result := validate(t, rules, documentWith(map[dto.FieldName]string{
		dto.FieldPANNumber:     "",
		dto.FieldAadhaarNumber: "",
	}))

	assert.Equal(t, dto.StatusPass, result.Rules[dto.RulePANFormat].Status)
	assert.Equal(t, dto.StatusPass, result.Rules[dto.RuleAadhaarFormat].Status)
}

func TestSingleDocument(t *testing.T) {
	result := validate(t, config.DefaultRules(), documentWith(map[dto.FieldName]string{
		dto.FieldPANNumber: "ABCDE12345",
	}))

	for _, id := range []dto.RuleID{dto.RuleNameMatch, dto.RuleDOBMatch, dto.RuleAddressMatch, dto.RulePhoneMatch, dto.RuleFatherNameMatch} {
		assert.Equal(t, dto.StatusPass, result.Rules[id].Status, id)
		assert.Nil(t, result.Rules[id].Score, id)
	}
	assert.Equal(t, dto.StatusFail, result.Rules[dto.RulePANFormat].Status)
	assert.Equal(t, 1, result.FailedRules)
}

func TestOverallStatus(t *testing.T) {
	twoFailures := documentWith(map[dto.FieldName]string{
		dto.FieldFullName:    "Priya Verma",
		dto.FieldDateOfBirth: "16-08-1995",
	})
	result := validate(t, config.DefaultRules(), baseDocument(), twoFailures)
	assert.Equal(t, 2, result.FailedRules)
	assert.Equal(t, dto.StatusVerified, result.OverallStatus)

	threeFailures := documentWith(map[dto.FieldName]string{
		dto.FieldFullName:    "Priya Verma",
		dto.FieldDateOfBirth: "16-08-1995",
		dto.FieldPhoneNumber: "9123456789",
	})
	result = validate(t, config.DefaultRules(), baseDocument(), threeFailures)
	assert.Equal(t, 3, result.FailedRules)
	assert.Equal(t, dto.StatusFailed, result.OverallStatus)

	strict := config.DefaultRules()
	strict.MaxFailedRules = 0
	result = validate(t, strict, baseDocument(), documentWith(map[dto.FieldName]string{dto.FieldPhoneNumber: "9123456789"}))
	assert.Equal(t, 1, result.FailedRules)
	assert.Equal(t, dto.StatusFailed, result.OverallStatus)
}

func TestValidateRejectsMalformedRecords(t *testing.T) {
	missing := baseDocument()
	delete(missing, dto.FieldEmailAddress)

	unknown := baseDocument()
	unknown["gender"] = "M"

	tests := []struct {
		name   string
		record dto.PersonRecord
	}{
		{"empty person id", dto.PersonRecord{Documents: []dto.ExtractedFields{baseDocument()}}},
		{"no documents", dto.PersonRecord{PersonID: "P001"}},
		{"missing field", dto.PersonRecord{PersonID: "P001", Documents: []dto.ExtractedFields{baseDocument(), missing}}},
		{"unknown field", dto.PersonRecord{PersonID: "P001", Documents: []dto.ExtractedFields{unknown}}},
	}

	v := NewValidator(config.DefaultRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate(tt.record)
			require.Error(t, err)
			assert.ErrorIs(t, err, dto.ErrInvalidInput)

			var inputErr *dto.InputError
			assert.ErrorAs(t, err, &inputErr)
			assert.Nil(t, result.Rules)
		})
	}
}

func TestPanickingRuleFailsAlone(t *testing.T) {
	v := NewValidator(config.DefaultRules())
	v.checks[0].eval = func([]dto.ExtractedFields) dto.RuleOutcome {
		panic("boom")
	}

	result, err := v.Validate(dto.PersonRecord{PersonID: "P001", Documents: []dto.ExtractedFields{baseDocument(), baseDocument()}})
	require.NoError(t, err)

	assert.Equal(t, dto.StatusFail, result.Rules[dto.RuleNameMatch].Status)
	assert.Contains(t, result.Rules[dto.RuleNameMatch].Detail, "boom")
	assert.Equal(t, dto.StatusPass, result.Rules[dto.RuleAadhaarFormat].Status)
	assert.Equal(t, 1, result.FailedRules)
}

func TestValidateIsDeterministic(t *testing.T) {
	record := dto.PersonRecord{
		PersonID: "P001",
		Documents: []dto.ExtractedFields{
			baseDocument(),
			documentWith(map[dto.FieldName]string{dto.FieldFullName: "Rahul Kumar Sharme", dto.FieldDateOfBirth: "1995-08-15"}),
		},
	}

	encode := func() []byte {
		result, err := NewValidator(config.DefaultRules()).Validate(record)
		require.NoError(t, err)
		out, err := json.MarshalIndent([]dto.PersonResult{dto.NewPersonResult(record, result)}, "", "  ")
		require.NoError(t, err)
		return out
	}

	first := encode()
	assert.Equal(t, first, encode())
	assert.Contains(t, string(first), `"rule_1_name_match": {`)
	assert.Contains(t, string(first), `"score": 94.44`)
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	doc := baseDocument()
	record := dto.PersonRecord{PersonID: "P001", Documents: []dto.ExtractedFields{doc, baseDocument()}}

	_, err := NewValidator(config.DefaultRules()).Validate(record)
	require.NoError(t, err)
	assert.Equal(t, baseDocument(), doc)
}
