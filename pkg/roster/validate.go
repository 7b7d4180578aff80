package roster

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength  = 40
	MaxEmailLength = 40
	IDLength       = 10
)

// IDCharset selects which characters a student ID may contain
type IDCharset int

const (
	DecimalIDs IDCharset = iota
	HexIDs
)

// ParseIDCharset accepts "decimal" (or "") and "hex".
func ParseIDCharset(s string) (IDCharset, error) {
	switch strings.ToLower(s) {
	case "", "decimal", "digits":
		return DecimalIDs, nil
	case "hex", "hexadecimal":
		return HexIDs, nil
	default:
		return 0, fmt.Errorf("unknown id charset %q", s)
	}
}

// Allows reports whether r is a legal ID character.
func (c IDCharset) Allows(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if c == HexIDs {
		return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	}
	return false
}

func (c IDCharset) String() string {
	if c == HexIDs {
		return "hex"
	}
	return "decimal"
}

// Validator checks field values before they reach the roster
type Validator struct {
	IDCharset IDCharset
}

// NewValidator creates a validator for the given ID character class
func NewValidator(charset IDCharset) *Validator {
	return &Validator{IDCharset: charset}
}

// Normalize trims surrounding whitespace and turns tabs into single spaces.
func Normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\t", " ")
}

// IsNormalized reports whether s survives Normalize unchanged. Only such
// values read back from the roster file exactly as written.
func IsNormalized(s string) bool {
	return Normalize(s) == s
}

// ValidEmailFormat is the hook for email format rules. Any address passes.
func ValidEmailFormat(string) bool {
	return true
}

func (v *Validator) ValidateName(name string) error {
	return validateText(FieldName, name, MaxNameLength)
}

func (v *Validator) ValidateEmail(email string) error {
	if err := validateText(FieldEmail, email, MaxEmailLength); err != nil {
		return err
	}
	if !ValidEmailFormat(email) {
		return &ValidationError{Field: FieldEmail, Value: email, Reason: "malformed address"}
	}
	return nil
}

// ValidateID requires exactly IDLength characters from the configured charset.
func (v *Validator) ValidateID(id string) error {
	if utf8.RuneCountInString(id) != IDLength {
		return &ValidationError{Field: FieldID, Value: id, Reason: fmt.Sprintf("must be exactly %d characters", IDLength)}
	}
	for _, r := range id {
		if !v.IDCharset.Allows(r) {
			return &ValidationError{Field: FieldID, Value: id, Reason: fmt.Sprintf("must contain only %s digits", v.IDCharset)}
		}
	}
	return nil
}

// ValidateGrade parses a grade value for field f.
func (v *Validator) ValidateGrade(f Field, value string) (Grade, error) {
	g := ParseGrade(value)
	if !g.Valid() {
		return GradeInvalid, &ValidationError{Field: f, Value: value, Reason: "must be one of A, B, C, D, F"}
	}
	return g, nil
}

// ValidateField checks a raw value for any field.
func (v *Validator) ValidateField(f Field, value string) error {
	switch f {
	case FieldName:
		return v.ValidateName(value)
	case FieldEmail:
		return v.ValidateEmail(value)
	case FieldID:
		return v.ValidateID(value)
	case FieldPresentation, FieldEssay, FieldProject:
		_, err := v.ValidateGrade(f, value)
		return err
	default:
		return &ValidationError{Field: f, Value: value, Reason: "unknown field"}
	}
}

// ValidateStudent checks every field of s.
func (v *Validator) ValidateStudent(s Student) error {
	if err := v.ValidateName(s.Name); err != nil {
		return err
	}
	if err := v.ValidateEmail(s.Email); err != nil {
		return err
	}
	if err := v.ValidateID(s.ID); err != nil {
		return err
	}
	for i, g := range s.Grades() {
		if !g.Valid() {
			return &ValidationError{Field: FieldPresentation + Field(i), Value: g.String(), Reason: "grade is not set"}
		}
	}
	return nil
}

func validateText(f Field, value string, max int) error {
	if value == "" {
		return &ValidationError{Field: f, Value: value, Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(value); n > max {
		return &ValidationError{Field: f, Value: value, Reason: fmt.Sprintf("must be at most %d characters", max)}
	}
	if strings.ContainsAny(value, "\r\n") {
		return &ValidationError{Field: f, Value: value, Reason: "must not contain line breaks"}
	}
	if !IsNormalized(value) {
		return &ValidationError{Field: f, Value: value, Reason: "must not have surrounding spaces or tabs"}
	}
	return nil
}
