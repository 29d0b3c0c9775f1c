package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/smeshko/text-extractor/constants"
)

var idPrefixPattern = regexp.MustCompile(`^\d{4}$`)

// PersonalInformation holds identity fields found in a document.
// ExtractionPage is 0 when no page supplied a field.
type PersonalInformation struct {
	FirstName      string                 `json:"first_name,omitempty"`
	LastName       string                 `json:"last_name,omitempty"`
	MiddleName     string                 `json:"middle_name,omitempty"`
	IDNumberPrefix string                 `json:"id_number_prefix,omitempty"`
	Age            *int                   `json:"age,omitempty"`
	CharacterSet   constants.CharacterSet `json:"character_set"`
	ExtractionPage int                    `json:"extraction_page,omitempty"`
	IsComplete     bool                   `json:"is_complete"`
}

// EmptyPersonalInformation returns a record with no fields set.
func EmptyPersonalInformation() PersonalInformation {
	return PersonalInformation{CharacterSet: constants.CharsetUnknown}
}

// Validate checks the field constraints of the record.
func (p PersonalInformation) Validate() error {
	if p.IDNumberPrefix != "" && !idPrefixPattern.MatchString(p.IDNumberPrefix) {
		return fmt.Errorf("id number prefix must be exactly 4 digits, got %q", p.IDNumberPrefix)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return fmt.Errorf("age must be between 0 and 150, got %d", *p.Age)
	}
	if p.ExtractionPage < 0 {
		return fmt.Errorf("extraction page must be >= 1 when set, got %d", p.ExtractionPage)
	}
	return nil
}

// Recompute derives IsComplete from the required fields.
func (p *PersonalInformation) Recompute() {
	p.IsComplete = p.FirstName != "" && p.LastName != "" && p.IDNumberPrefix != ""
}

// FullName joins first, middle and last names, skipping absent parts.
func (p PersonalInformation) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// HasAnyData reports whether at least one field was extracted.
func (p PersonalInformation) HasAnyData() bool {
	return p.FirstName != "" || p.LastName != "" || p.MiddleName != "" ||
		p.IDNumberPrefix != "" || p.Age != nil
}

// MaskedID renders the ID prefix followed by a mask.
func (p PersonalInformation) MaskedID() string {
	if p.IDNumberPrefix == "" {
		return ""
	}
	return p.IDNumberPrefix + "******"
}

// Initials returns the uppercased initials of first, middle and last names.
func (p PersonalInformation) Initials() string {
	var b strings.Builder
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		for _, r := range s {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	return b.String()
}

// Clone returns an independent copy of the record.
func (p PersonalInformation) Clone() PersonalInformation {
	if p.Age != nil {
		a := *p.Age
		p.Age = &a
	}
	return p
}
