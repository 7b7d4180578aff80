package cmd

import (
	"encoding/json"
	"io"

	"github.com/ssargent/rollcall/pkg/console"
	"github.com/ssargent/rollcall/pkg/roster"
)

func printStudents(w io.Writer, students []roster.Student) error {
	if cfg.Output.Format == "json" {
		return printJSON(w, students)
	}
	if len(students) == 0 {
		_, err := io.WriteString(w, "No students exist.\n")
		return err
	}
	_, err := io.WriteString(w, console.RenderTable(students)+"\n")
	return err
}

func printStudent(w io.Writer, student roster.Student) error {
	if cfg.Output.Format == "json" {
		return printJSON(w, student)
	}
	_, err := io.WriteString(w, console.RenderStudent(student, false))
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
