// Package console runs the interactive single-letter command loop.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ssargent/rollcall/pkg/roster"
	"go.uber.org/zap"
)

// Service is the roster the shell operates on
type Service interface {
	Add(s roster.Student) error
	Remove(i int) error
	Update(i int, f roster.Field, value string) error
	Find(f roster.Field, value string) (int, roster.Student, error)
	Get(i int) (roster.Student, error)
	List() []roster.Student
	Len() int
	Validator() *roster.Validator
	Save() error
}

// Config holds configuration for a shell
type Config struct {
	In     io.Reader
	Out    io.Writer
	Logger *zap.Logger
}

// errInterrupted ends the loop when the context is cancelled mid-prompt
var errInterrupted = errors.New("interrupted")

// Shell reads one-letter commands and applies them to a Service. Only the
// goroutine calling Run touches the service.
type Shell struct {
	svc    Service
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	lines  <-chan string
}

// NewShell creates a shell over svc
func NewShell(svc Service, config Config) *Shell {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{
		svc:    svc,
		in:     config.In,
		out:    config.Out,
		logger: logger,
	}
}

// Run processes commands until q, end of input, or ctx is cancelled. All
// three save the roster before returning.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = s.readLines(done)

	s.print(commandsBanner())
	s.print("\n")

	for {
		s.print("Enter command: ")
		input, err := s.next(ctx)
		if err != nil {
			return s.quit(err)
		}

		c, ok := command(input)
		if !ok {
			s.print("Unknown command. Enter \"h\" for commands.\n")
			continue
		}

		switch c {
		case 'a':
			s.print(title("Adding student"))
			err = s.add(ctx)
		case 'r':
			s.print(title("Removing student"))
			err = s.remove(ctx)
		case 'p':
			s.print(title("Printing students"))
			s.printAll()
		case 'u':
			s.print(title("Updating student"))
			err = s.update(ctx)
		case 'f':
			s.print(title("Finding student"))
			err = s.find(ctx)
		case 'q':
			s.print(title("Quitting program"))
			return s.quit(nil)
		case 'h':
			s.print(commandsBanner())
		}

		if errors.Is(err, errInterrupted) || errors.Is(err, io.EOF) {
			return s.quit(err)
		}
		if err != nil {
			s.logger.Error("command failed", zap.String("command", string(c)), zap.Error(err))
			s.print(errorStyle.Render("ERR: "+err.Error()) + "\n")
		}
		s.print("\n")
	}
}

// command maps a line to a lower-case command letter.
func command(input string) (rune, bool) {
	if utf8.RuneCountInString(input) != 1 {
		return 0, false
	}
	c := unicode.ToLower([]rune(input)[0])
	if !strings.ContainsRune("arpufqh", c) {
		return 0, false
	}
	return c, true
}

func (s *Shell) quit(cause error) error {
	switch {
	case errors.Is(cause, errInterrupted):
		s.print("\nInterrupted, saving roster\n")
		s.logger.Info("interrupted, saving roster")
	case errors.Is(cause, io.EOF):
		s.print("\n")
		s.logger.Info("end of input, saving roster")
	}

	if err := s.svc.Save(); err != nil {
		s.print(errorStyle.Render("ERR: "+err.Error()) + "\n")
		return err
	}
	s.print("Roster saved. Goodbye.\n")
	return nil
}

func (s *Shell) add(ctx context.Context) error {
	var student roster.Student
	for _, f := range roster.Fields {
		value, err := s.promptField(ctx, f)
		if err != nil {
			return err
		}
		switch f {
		case roster.FieldName:
			student.Name = value
		case roster.FieldEmail:
			student.Email = value
		case roster.FieldID:
			student.ID = value
		case roster.FieldPresentation:
			student.Presentation = roster.ParseGrade(value)
		case roster.FieldEssay:
			student.Essay = roster.ParseGrade(value)
		case roster.FieldProject:
			student.Project = roster.ParseGrade(value)
		}
	}

	if err := s.svc.Add(student); err != nil {
		return err
	}
	s.printf("Added %s (%s)\n", student.Name, student.ID)
	return nil
}

func (s *Shell) remove(ctx context.Context) error {
	i, student, err := s.search(ctx)
	if err != nil || i < 0 {
		return err
	}
	if err := s.svc.Remove(i); err != nil {
		return err
	}
	s.printf("Removed %s (%s)\n", student.Name, student.ID)
	return nil
}

func (s *Shell) find(ctx context.Context) error {
	i, student, err := s.search(ctx)
	if err != nil || i < 0 {
		return err
	}
	s.print(RenderStudent(student, false))
	return nil
}

func (s *Shell) update(ctx context.Context) error {
	i, _, err := s.search(ctx)
	if err != nil || i < 0 {
		return err
	}

	for {
		student, err := s.svc.Get(i)
		if err != nil {
			return err
		}
		s.print(RenderStudent(student, true))
		s.print("Select an option for which field to update: ")

		input, err := s.next(ctx)
		if err != nil {
			return err
		}
		choice, ok := menuChoice(input, len(roster.Fields)+1)
		if !ok {
			s.print("Unknown option. Please try again.\n")
			continue
		}
		if choice == len(roster.Fields) {
			return nil
		}

		f := roster.Fields[choice]
		value, err := s.promptField(ctx, f)
		if err != nil {
			return err
		}
		if err := s.svc.Update(i, f, value); err != nil {
			return err
		}
		s.print("...updating student\n")
	}
}

// search runs the find menu. It returns -1 with a nil error when the operator
// backs out or nothing matches.
func (s *Shell) search(ctx context.Context) (int, roster.Student, error) {
	searchable := []roster.Field{roster.FieldName, roster.FieldEmail, roster.FieldID}

	s.print("A: Name\nB: Email\nC: UID\nD: Exit\n")
	s.print("How would you like to search for the student?\n")

	var f roster.Field
	for {
		s.print("Enter letter of search parameter: ")
		input, err := s.next(ctx)
		if err != nil {
			return -1, roster.Student{}, err
		}
		choice, ok := menuChoice(input, len(searchable)+1)
		if !ok {
			s.print("Unknown parameter. Please try again.\n")
			continue
		}
		if choice == len(searchable) {
			return -1, roster.Student{}, nil
		}
		f = searchable[choice]
		break
	}

	value, err := s.promptField(ctx, f)
	if err != nil {
		return -1, roster.Student{}, err
	}

	i, student, err := s.svc.Find(f, value)
	if errors.Is(err, roster.ErrNotFound) {
		s.print("Student does not exist\n")
		return -1, roster.Student{}, nil
	}
	if err != nil {
		return -1, roster.Student{}, err
	}
	return i, student, nil
}

// promptField asks for a value until it passes validation for f.
func (s *Shell) promptField(ctx context.Context, f roster.Field) (string, error) {
	prompt := fieldPrompt(f)
	s.printf("Enter %s: ", prompt)
	for {
		value, err := s.next(ctx)
		if err != nil {
			return "", err
		}
		err = s.svc.Validator().ValidateField(f, value)
		if err == nil {
			return value, nil
		}

		var verr *roster.ValidationError
		if !errors.As(err, &verr) {
			return "", err
		}
		s.printf("Invalid %s (%s). Re-enter %s: ", fieldLabel(f), verr.Reason, prompt)
	}
}

func fieldPrompt(f roster.Field) string {
	switch f {
	case roster.FieldName:
		return fmt.Sprintf("student name (%d char max)", roster.MaxNameLength)
	case roster.FieldEmail:
		return fmt.Sprintf("student email (%d char max)", roster.MaxEmailLength)
	case roster.FieldID:
		return fmt.Sprintf("student UID (%d characters)", roster.IDLength)
	default:
		return f.String() + " grade (A, B, C, D, F)"
	}
}

func fieldLabel(f roster.Field) string {
	if f.IsGrade() {
		return "grade"
	}
	if f == roster.FieldID {
		return "UID"
	}
	return f.String()
}

// menuChoice maps a single letter A, B, ... to 0, 1, ... below n.
func menuChoice(input string, n int) (int, bool) {
	if utf8.RuneCountInString(input) != 1 {
		return 0, false
	}
	choice := int(unicode.ToUpper([]rune(input)[0]) - 'A')
	if choice < 0 || choice >= n {
		return 0, false
	}
	return choice, true
}

func (s *Shell) printAll() {
	if s.svc.Len() == 0 {
		s.print("ERR: No students exist. Enter \"a\" to add a new student.\n")
		return
	}
	s.print(RenderTable(s.svc.List()) + "\n")
}

// next returns the next normalized input line. It fails with io.EOF at end
// of input and errInterrupted once ctx is done.
func (s *Shell) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", errInterrupted
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return roster.Normalize(line), nil
	}
}

// readLines feeds input lines to the loop until input ends or done closes.
func (s *Shell) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Warn("stopped reading input", zap.Error(err))
		}
	}()
	return lines
}

func (s *Shell) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Shell) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
