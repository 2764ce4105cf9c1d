package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// FieldName identifies one of the fixed identity fields extracted per document.
type FieldName string

const (
	FieldFullName      FieldName = "full_name"
	FieldFathersName   FieldName = "fathers_name"
	FieldDateOfBirth   FieldName = "date_of_birth"
	FieldAddress       FieldName = "complete_address"
	FieldPhoneNumber   FieldName = "phone_number"
	FieldEmailAddress  FieldName = "email_address"
	FieldAadhaarNumber FieldName = "aadhaar_number"
	FieldPANNumber     FieldName = "pan_number"
	FieldEmployeeID    FieldName = "employee_id"
	FieldAccountNumber FieldName = "account_number"
)

// AllFields lists every field in output order.
var AllFields = []FieldName{
	FieldFullName,
	FieldFathersName,
	FieldDateOfBirth,
	FieldAddress,
	FieldPhoneNumber,
	FieldEmailAddress,
	FieldAadhaarNumber,
	FieldPANNumber,
	FieldEmployeeID,
	FieldAccountNumber,
}

// IsKnownField reports whether name belongs to the fixed field set.
func IsKnownField(name FieldName) bool {
	for _, f := range AllFields {
		if f == name {
			return true
		}
	}
	return false
}

// ExtractedFields maps each field of one document to its extracted value.
// Unavailable values are empty strings, never missing keys.
type ExtractedFields map[FieldName]string

// NewExtractedFields returns a mapping with every field present and empty.
func NewExtractedFields() ExtractedFields {
	fields := make(ExtractedFields, len(AllFields))
	for _, f := range AllFields {
		fields[f] = ""
	}
	return fields
}

// Get returns the value for name, or "" when absent.
func (e ExtractedFields) Get(name FieldName) string {
	return e[name]
}

// Clone returns an independent copy.
func (e ExtractedFields) Clone() ExtractedFields {
	out := make(ExtractedFields, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge copies the non-empty values of other over e and returns e.
func (e ExtractedFields) Merge(other ExtractedFields) ExtractedFields {
	for k, v := range other {
		if v != "" {
			e[k] = v
		}
	}
	return e
}

// PersonRecord groups the per-document fields extracted for one person.
type PersonRecord struct {
	PersonID  string            `json:"person_id"`
	Documents []ExtractedFields `json:"documents"`
}

// Validate checks the record shape before any rule runs.
func (r PersonRecord) Validate() error {
	if r.PersonID == "" {
		return &InputError{Reason: "person_id is required"}
	}
	if len(r.Documents) == 0 {
		return &InputError{PersonID: r.PersonID, Reason: "at least one document is required", Err: ErrNoDocuments}
	}

	for i, doc := range r.Documents {
		if doc == nil {
			return &InputError{PersonID: r.PersonID, Document: i + 1, Reason: "document is null"}
		}
		for _, f := range AllFields {
			if _, ok := doc[f]; !ok {
				return &InputError{PersonID: r.PersonID, Document: i + 1, Field: string(f), Reason: "missing field"}
			}
		}
		if len(doc) != len(AllFields) {
			for _, k := range sortedKeys(doc) {
				if !IsKnownField(k) {
					return &InputError{PersonID: r.PersonID, Document: i + 1, Field: string(k), Reason: "unknown field"}
				}
			}
		}
	}
	return nil
}

// rawRecord keeps field values undecoded so type errors can be reported per field.
type rawRecord struct {
	PersonID  json.RawMessage              `json:"person_id"`
	Documents []map[string]json.RawMessage `json:"documents"`
}

// DecodePersonRecords reads the input contract (a JSON array of person records)
// and validates each record. Non-string values are rejected rather than coerced.
func DecodePersonRecords(r io.Reader) ([]PersonRecord, error) {
	var raws []rawRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raws); err != nil {
		return nil, &InputError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &InputError{Reason: "unexpected data after the record array"}
	}

	records := make([]PersonRecord, 0, len(raws))
	for i, raw := range raws {
		var personID string
		if err := decodeString(raw.PersonID, &personID); err != nil {
			return nil, &InputError{Reason: fmt.Sprintf("record %d: person_id must be a string", i+1)}
		}

		record := PersonRecord{PersonID: personID, Documents: make([]ExtractedFields, 0, len(raw.Documents))}
		for d, rawDoc := range raw.Documents {
			if rawDoc == nil {
				record.Documents = append(record.Documents, nil)
				continue
			}
			doc := make(ExtractedFields, len(rawDoc))
			for key, value := range rawDoc {
				var s string
				if err := decodeString(value, &s); err != nil {
					return nil, &InputError{PersonID: personID, Document: d + 1, Field: key, Reason: "value must be a string"}
				}
				doc[FieldName(key)] = s
			}
			record.Documents = append(record.Documents, doc)
		}

		if err := record.Validate(); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("not a string")
	}
	return json.Unmarshal(raw, dst)
}

func sortedKeys(doc ExtractedFields) []FieldName {
	keys := make([]FieldName, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
