package roster

import (
	"fmt"
	"strings"
)

// Grade is a letter grade. The numeric value is the grade point (F=0 ... A=4).
type Grade int

const (
	GradeF Grade = iota
	GradeD
	GradeC
	GradeB
	GradeA
	// GradeInvalid marks input that did not parse. It is never stored.
	GradeInvalid
)

// GradeFromChar maps the persisted single-character form back to a Grade.
// Only the upper-case letters written by Char are accepted.
func GradeFromChar(c byte) Grade {
	switch c {
	case 'A':
		return GradeA
	case 'B':
		return GradeB
	case 'C':
		return GradeC
	case 'D':
		return GradeD
	case 'F':
		return GradeF
	default:
		return GradeInvalid
	}
}

// ParseGrade parses operator input: one character, case-insensitive letter
// A, B, C, D or F, or the numeric shorthand 4..0.
func ParseGrade(s string) Grade {
	if len(s) != 1 {
		return GradeInvalid
	}
	switch c := s[0]; c {
	case '4':
		return GradeA
	case '3':
		return GradeB
	case '2':
		return GradeC
	case '1':
		return GradeD
	case '0':
		return GradeF
	default:
		return GradeFromChar(strings.ToUpper(s)[0])
	}
}

// Valid reports whether g is one of the five letter grades.
func (g Grade) Valid() bool {
	return g >= GradeF && g <= GradeA
}

// Char returns the persisted character for g, or '?' when g is not valid.
func (g Grade) Char() byte {
	switch g {
	case GradeA:
		return 'A'
	case GradeB:
		return 'B'
	case GradeC:
		return 'C'
	case GradeD:
		return 'D'
	case GradeF:
		return 'F'
	default:
		return '?'
	}
}

// Points returns the grade point value, or -1 for an invalid grade.
func (g Grade) Points() int {
	if !g.Valid() {
		return -1
	}
	return int(g)
}

func (g Grade) String() string {
	return string(g.Char())
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid grade %d", int(g))
	}
	return []byte{g.Char()}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	parsed := ParseGrade(string(text))
	if !parsed.Valid() {
		return fmt.Errorf("invalid grade %q", string(text))
	}
	*g = parsed
	return nil
}
