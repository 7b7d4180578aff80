// Package codec provides the text serialization of a student roster.
//
// The codec package implements the flat file format rollcall persists to.
// It works on streams; path handling, temp files and crash recovery live in
// package store.
//
// # Record Format
//
// Each student occupies six consecutive lines:
//
//	name
//	email
//	id
//	presentation grade
//	essay grade
//	project grade
//
// Fields:
//   - name, email: free text, at most 40 characters, no line breaks
//   - id: 10 characters from the configured ID character class
//   - grades: a single upper-case letter, one of A, B, C, D or F
//
// There is no header, no trailer and no escaping. Records follow each other
// directly and the file ends with a newline.
//
// # Reading
//
// Every line is trimmed of surrounding whitespace and internal tabs become
// single spaces before it is stored in a field. Blank lines after the last
// complete record are ignored.
//
// # Usage
//
//	c := codec.NewTextCodec(roster.NewValidator(roster.DecimalIDs))
//
//	// Encode a roster
//	if err := c.Encode(w, students); err != nil {
//	    return err
//	}
//
//	// Decode it back
//	students, err := c.Decode(r)
//	if errors.Is(err, codec.ErrCorruptData) {
//	    // students holds every record before the damaged one
//	}
//
// # Error Handling
//
// Decode reports damage with a *CorruptDataError carrying the record number,
// the line it starts on and a reason:
//   - truncated record (fewer than six lines left)
//   - grade line that is not exactly one of A, B, C, D, F
//   - record failing the configured validator
//
// Encode refuses a roster containing a student whose grade is unset
// (roster.GradeInvalid) or whose text fields contain a line break. It checks
// the whole roster before writing, so a rejected Encode writes nothing.
//
// # Thread Safety
//
// TextCodec holds no mutable state and is safe for concurrent use.
package codec
