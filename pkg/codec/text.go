package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ssargent/rollcall/pkg/roster"
)

// LinesPerRecord is the number of lines one student occupies
const LinesPerRecord = 6

// maxLineSize bounds a single line; anything longer is treated as corruption.
const maxLineSize = 64 * 1024

// ErrCorruptData is matched by every *CorruptDataError.
var ErrCorruptData = errors.New("corrupt roster data")

// CorruptDataError locates the first damaged record in a roster stream
type CorruptDataError struct {
	Record int // 1-based record number
	Line   int // 1-based line number where the record starts
	Reason string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt record %d at line %d: %s", e.Record, e.Line, e.Reason)
}

func (e *CorruptDataError) Unwrap() error {
	return ErrCorruptData
}

// TextCodec converts students to and from the six-line text layout
type TextCodec struct {
	validator *roster.Validator
}

// NewTextCodec creates a codec. When validator is non-nil every decoded
// record must pass it.
func NewTextCodec(validator *roster.Validator) *TextCodec {
	return &TextCodec{validator: validator}
}

// Encode writes students in order. Nothing is written if any student cannot
// be represented.
func (c *TextCodec) Encode(w io.Writer, students []roster.Student) error {
	for _, s := range students {
		if err := checkEncodable(s); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	for _, s := range students {
		writeRecord(bw, s)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write roster: %w", err)
	}
	return nil
}

// EncodeRecord returns one student as a six-line block
func (c *TextCodec) EncodeRecord(s roster.Student) ([]byte, error) {
	if err := checkEncodable(s); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	writeRecord(bw, s)
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads six-line groups until end of input. When a group is damaged
// it returns the records before it together with a *CorruptDataError.
func (c *TextCodec) Decode(r io.Reader) ([]roster.Student, error) {
	lines, err := readLines(r)
	var unreadable *CorruptDataError
	if err != nil && !errors.As(err, &unreadable) {
		return nil, err
	}
	if unreadable != nil {
		// Only whole groups before the unreadable line are decoded
		lines = lines[:(unreadable.Record-1)*LinesPerRecord]
	}

	students := make([]roster.Student, 0, len(lines)/LinesPerRecord)
	for start := 0; start < len(lines); start += LinesPerRecord {
		record := start/LinesPerRecord + 1
		if len(lines)-start < LinesPerRecord {
			return students, &CorruptDataError{
				Record: record,
				Line:   start + 1,
				Reason: fmt.Sprintf("truncated: %d of %d lines", len(lines)-start, LinesPerRecord),
			}
		}

		s, reason := c.decodeGroup(lines[start : start+LinesPerRecord])
		if reason != "" {
			return students, &CorruptDataError{Record: record, Line: start + 1, Reason: reason}
		}
		students = append(students, s)
	}
	if unreadable != nil {
		return students, unreadable
	}
	return students, nil
}

// DecodeRecord parses a block holding exactly one student
func (c *TextCodec) DecodeRecord(data []byte) (roster.Student, error) {
	students, err := c.Decode(bytes.NewReader(data))
	if err != nil {
		return roster.Student{}, err
	}
	if len(students) != 1 {
		return roster.Student{}, &CorruptDataError{
			Record: 1,
			Line:   1,
			Reason: fmt.Sprintf("expected one record, found %d", len(students)),
		}
	}
	return students[0], nil
}

func (c *TextCodec) decodeGroup(group []string) (roster.Student, string) {
	s := roster.Student{
		Name:  group[0],
		Email: group[1],
		ID:    group[2],
	}

	grades := [3]*roster.Grade{&s.Presentation, &s.Essay, &s.Project}
	for i, dst := range grades {
		line := group[3+i]
		g := roster.GradeInvalid
		if len(line) == 1 {
			g = roster.GradeFromChar(line[0])
		}
		if !g.Valid() {
			return roster.Student{}, fmt.Sprintf("invalid %s grade %q", roster.FieldPresentation+roster.Field(i), line)
		}
		*dst = g
	}

	if c.validator != nil {
		if err := c.validator.ValidateStudent(s); err != nil {
			return roster.Student{}, err.Error()
		}
		return s, ""
	}
	for _, f := range []roster.Field{roster.FieldName, roster.FieldEmail, roster.FieldID} {
		if s.Value(f) == "" {
			return roster.Student{}, fmt.Sprintf("empty %s", f)
		}
	}
	return s, ""
}

// readLines returns normalized lines with trailing blank lines dropped. A
// line longer than maxLineSize stops the read with the lines before it and a
// *CorruptDataError pointing at the record holding the long line.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, roster.Normalize(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			record := len(lines)/LinesPerRecord + 1
			return lines, &CorruptDataError{
				Record: record,
				Line:   (record-1)*LinesPerRecord + 1,
				Reason: fmt.Sprintf("line %d too long", len(lines)+1),
			}
		}
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func writeRecord(w *bufio.Writer, s roster.Student) {
	w.WriteString(s.Name)
	w.WriteByte('\n')
	w.WriteString(s.Email)
	w.WriteByte('\n')
	w.WriteString(s.ID)
	w.WriteByte('\n')
	for _, g := range s.Grades() {
		w.WriteByte(g.Char())
		w.WriteByte('\n')
	}
}

func checkEncodable(s roster.Student) error {
	for _, f := range []roster.Field{roster.FieldName, roster.FieldEmail, roster.FieldID} {
		v := s.Value(f)
		switch {
		case v == "":
			return &roster.ValidationError{Field: f, Value: v, Reason: "must not be empty"}
		case strings.ContainsAny(v, "\r\n"):
			return &roster.ValidationError{Field: f, Value: v, Reason: "must not contain line breaks"}
		case !roster.IsNormalized(v):
			return &roster.ValidationError{Field: f, Value: v, Reason: "must not have surrounding spaces or tabs"}
		}
	}
	for i, g := range s.Grades() {
		if !g.Valid() {
			return &roster.ValidationError{
				Field:  roster.FieldPresentation + roster.Field(i),
				Value:  g.String(),
				Reason: "grade has no persisted form",
			}
		}
	}
	return nil
}
