package dto

import "fmt"

// RuleID identifies one cross-document validation rule.
type RuleID string

const (
	RuleNameMatch       RuleID = "rule_1_name_match"
	RuleDOBMatch        RuleID = "rule_2_dob_match"
	RuleAddressMatch    RuleID = "rule_3_address_match"
	RulePhoneMatch      RuleID = "rule_4_phone_match"
	RuleFatherNameMatch RuleID = "rule_5_father_name_match"
	RulePANFormat       RuleID = "rule_6_pan_format"
	RuleAadhaarFormat   RuleID = "rule_7_aadhaar_format"
)

// AllRules lists the rules in evaluation order.
var AllRules = []RuleID{
	RuleNameMatch,
	RuleDOBMatch,
	RuleAddressMatch,
	RulePhoneMatch,
	RuleFatherNameMatch,
	RulePANFormat,
	RuleAadhaarFormat,
}

type RuleStatus string

const (
	StatusPass RuleStatus = "PASS"
	StatusFail RuleStatus = "FAIL"
)

type OverallStatus string

const (
	StatusVerified OverallStatus = "VERIFIED"
	StatusFailed   OverallStatus = "FAILED"
)

// RuleOutcome is the verdict of a single rule. Score is the lowest pairwise
// similarity (0-100) for fuzzy rules that compared at least two values.
type RuleOutcome struct {
	Status RuleStatus `json:"status"`
	Score  *float64   `json:"score,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

func Pass(detail string) RuleOutcome {
	return RuleOutcome{Status: StatusPass, Detail: detail}
}

func Fail(detail string) RuleOutcome {
	return RuleOutcome{Status: StatusFail, Detail: detail}
}

// WithScore returns a copy of o carrying score.
func (o RuleOutcome) WithScore(score float64) RuleOutcome {
	o.Score = &score
	return o
}

// VerificationResult holds every rule outcome for one person and the
// aggregate status derived from the failure count.
type VerificationResult struct {
	Rules         map[RuleID]RuleOutcome `json:"rules"`
	FailedRules   int                    `json:"failed_rule_count"`
	OverallStatus OverallStatus          `json:"overall_status"`
}

// PersonResult is the output contract written for each person.
type PersonResult struct {
	PersonID            string                     `json:"person_id"`
	ExtractedData       map[string]ExtractedFields `json:"extracted_data"`
	VerificationResults map[RuleID]RuleOutcome     `json:"verification_results"`
	FailedRules         int                        `json:"failed_rule_count"`
	OverallStatus       OverallStatus              `json:"overall_status"`
}

// NewPersonResult echoes the documents of record next to its verification.
func NewPersonResult(record PersonRecord, result VerificationResult) PersonResult {
	extracted := make(map[string]ExtractedFields, len(record.Documents))
	for i, doc := range record.Documents {
		extracted[DocumentKey(i)] = doc.Clone()
	}
	return PersonResult{
		PersonID:            record.PersonID,
		ExtractedData:       extracted,
		VerificationResults: result.Rules,
		FailedRules:         result.FailedRules,
		OverallStatus:       result.OverallStatus,
	}
}

// DocumentKey names the i-th (zero based) document in the output.
func DocumentKey(i int) string {
	return fmt.Sprintf("document_%d", i+1)
}
