package roster

import (
	"fmt"
	"strings"
)

// Student is one roster record
type Student struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ID           string `json:"id"`
	Presentation Grade  `json:"presentation"`
	Essay        Grade  `json:"essay"`
	Project      Grade  `json:"project"`
}

// Field identifies a Student attribute for lookups and updates
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldID
	FieldPresentation
	FieldEssay
	FieldProject
)

// Fields lists every field in persisted order.
var Fields = []Field{FieldName, FieldEmail, FieldID, FieldPresentation, FieldEssay, FieldProject}

var fieldNames = map[Field]string{
	FieldName:         "name",
	FieldEmail:        "email",
	FieldID:           "id",
	FieldPresentation: "presentation",
	FieldEssay:        "essay",
	FieldProject:      "project",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Searchable reports whether Find accepts the field.
func (f Field) Searchable() bool {
	return f == FieldName || f == FieldEmail || f == FieldID
}

// IsGrade reports whether the field holds a Grade.
func (f Field) IsGrade() bool {
	return f == FieldPresentation || f == FieldEssay || f == FieldProject
}

// ParseField resolves a field by name, case-insensitively. "uid" is accepted
// as an alias for id.
func ParseField(s string) (Field, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "uid" {
		return FieldID, nil
	}
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, &ValidationError{Field: -1, Value: s, Reason: "unknown field"}
}

// Value returns the string form of a field. Grades render as their letter.
func (s Student) Value(f Field) string {
	switch f {
	case FieldName:
		return s.Name
	case FieldEmail:
		return s.Email
	case FieldID:
		return s.ID
	case FieldPresentation:
		return s.Presentation.String()
	case FieldEssay:
		return s.Essay.String()
	case FieldProject:
		return s.Project.String()
	default:
		return ""
	}
}

// Grades returns the three grades in persisted order.
func (s Student) Grades() [3]Grade {
	return [3]Grade{s.Presentation, s.Essay, s.Project}
}
