package dto

import (
	"encoding/xml"
	"strings"
)

// AadhaarQRData represents the XML structure in Aadhaar QR code
// Based on UIDAI's secure QR code format
type AadhaarQRData struct {
	XMLName     xml.Name `xml:"PrintLetterBarcodeData"`
	UID         string   `xml:"uid,attr"`
	Name        string   `xml:"name,attr"`
	Gender      string   `xml:"gender,attr"`
	YearOfBirth string   `xml:"yob,attr"`
	DateOfBirth string   `xml:"dob,attr"`
	CO          string   `xml:"co,attr"` // Care of
	House       string   `xml:"house,attr"`
	Street      string   `xml:"street,attr"`
	Landmark    string   `xml:"lm,attr"`
	Locality    string   `xml:"loc,attr"`
	VTC         string   `xml:"vtc,attr"` // Village/Town/City
	PO          string   `xml:"po,attr"`  // Post Office
	District    string   `xml:"dist,attr"`
	SubDistrict string   `xml:"subdist,attr"`
	State       string   `xml:"state,attr"`
	PC          string   `xml:"pc,attr"` // Pin Code
}

// GetFullAddress constructs the full address from QR data.
// The care-of name is left out; it is reported as the father's name instead.
func (q *AadhaarQRData) GetFullAddress() string {
	parts := []string{}
	for _, p := range []string{
		q.House, q.Street, q.Landmark, q.Locality, q.VTC,
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if q.PO != "" {
		parts = append(parts, "PO "+q.PO)
	}
	for _, p := range []string{q.SubDistrict, q.District, q.State, q.PC} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}

// FathersName returns the care-of name when it is given as S/O or D/O.
func (q *AadhaarQRData) FathersName() string {
	co := strings.TrimSpace(q.CO)
	upper := strings.ToUpper(co)
	for _, prefix := range []string{"S/O", "D/O", "S/0", "D/0"} {
		if strings.HasPrefix(upper, prefix) {
			return strings.TrimSpace(strings.TrimLeft(co[len(prefix):], ": "))
		}
	}
	return ""
}

// GetDOB returns the date of birth, falling back to the year of birth.
func (q *AadhaarQRData) GetDOB() string {
	if q.DateOfBirth != "" {
		return q.DateOfBirth
	}
	return q.YearOfBirth
}

// ToFields maps the QR payload onto the extracted field set. The UID is only
// used when it is a full, unmasked 12 digit number.
func (q *AadhaarQRData) ToFields() ExtractedFields {
	fields := NewExtractedFields()
	fields[FieldFullName] = strings.TrimSpace(q.Name)
	fields[FieldFathersName] = q.FathersName()
	fields[FieldDateOfBirth] = q.GetDOB()
	fields[FieldAddress] = q.GetFullAddress()

	uid := strings.ReplaceAll(q.UID, " ", "")
	if len(uid) == 12 && strings.Trim(uid, "0123456789") == "" {
		fields[FieldAadhaarNumber] = uid
	}
	return fields
}
