package service

import (
	"fmt"

	"github.com/Aashish23092/kyc-document-verification/config"
	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/utils"
)

type evalFunc func(docs []dto.ExtractedFields) dto.RuleOutcome

type ruleCheck struct {
	id   dto.RuleID
	eval evalFunc
}

// Validator cross-checks the documents of one person against the seven KYC
// rules. It holds no mutable state and is safe for concurrent use.
type Validator struct {
	rules  config.Rules
	checks []ruleCheck
}

// NewValidator builds a validator for the given policy.
func NewValidator(rules config.Rules) *Validator {
	return &Validator{
		rules: rules,
		checks: []ruleCheck{
			{dto.RuleNameMatch, fuzzyRule(dto.FieldFullName, rules.NameThreshold, rules.SortNameTokens)},
			{dto.RuleDOBMatch, dobRule()},
			{dto.RuleAddressMatch, fuzzyRule(dto.FieldAddress, rules.AddressThreshold, false)},
			{dto.RulePhoneMatch, phoneRule(rules.PhoneNationalLength)},
			{dto.RuleFatherNameMatch, fuzzyRule(dto.FieldFathersName, rules.FatherNameThreshold, rules.SortNameTokens)},
			{dto.RulePANFormat, formatRule(dto.FieldPANNumber, "PAN", utils.IsValidPAN, rules.RequirePAN)},
			{dto.RuleAadhaarFormat, formatRule(dto.FieldAadhaarNumber, "Aadhaar number", utils.IsValidAadhaar, rules.RequireAadhaar)},
		},
	}
}

// Rules returns the policy the validator was built with.
func (v *Validator) Rules() config.Rules {
	return v.rules
}

// Validate checks the record shape and then evaluates every rule. A
// malformed record returns a *dto.InputError and no result.
func (v *Validator) Validate(record dto.PersonRecord) (dto.VerificationResult, error) {
	if err := record.Validate(); err != nil {
		return dto.VerificationResult{}, err
	}

	result := dto.VerificationResult{
		Rules: make(map[dto.RuleID]dto.RuleOutcome, len(v.checks)),
	}
	for _, check := range v.checks {
		outcome := evaluate(check, record.Documents)
		result.Rules[check.id] = outcome
		if outcome.Status == dto.StatusFail {
			result.FailedRules++
		}
	}

	result.OverallStatus = dto.StatusVerified
	if result.FailedRules > v.rules.MaxFailedRules {
		result.OverallStatus = dto.StatusFailed
	}
	return result, nil
}

// evaluate runs one rule, turning a panic into a FAIL outcome.
func evaluate(check ruleCheck, docs []dto.ExtractedFields) (outcome dto.RuleOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = dto.Fail(fmt.Sprintf("rule evaluation error: %v", r))
		}
	}()
	return check.eval(docs)
}
