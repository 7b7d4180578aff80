// Package sheet exchanges rosters with xlsx workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet Export writes
const SheetName = "Roster"

// Headers is the first row of an exported sheet. Import reads the first six
// columns and ignores the rest.
var Headers = []string{"Name", "Email", "ID", "Presentation", "Essay", "Project", "Points"}

const importColumns = 6

// RowError describes a sheet row that could not be imported
type RowError struct {
	Row int // 1-based, as shown by spreadsheet programs
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ImportResult holds the students read from a workbook and the rows skipped
type ImportResult struct {
	Sheet    string
	Students []roster.Student
	Errors   []*RowError
}

// Export writes students to a new workbook at path
func Export(path string, students []roster.Student) error {
	f, err := build(students)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// ExportTo writes students as a workbook to w
func ExportTo(w io.Writer, students []roster.Student) error {
	f, err := build(students)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func build(students []roster.Student) (*excelize.File, error) {
	f := excelize.NewFile()

	// Rename the default sheet rather than adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, s := range students {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			s.Name,
			s.Email,
			s.ID,
			s.Presentation.String(),
			s.Essay.String(),
			s.Project.String(),
			s.Presentation.Points() + s.Essay.Points() + s.Project.Points(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "B", 30)
	return f, nil
}

// Import reads students from the first sheet of the workbook at path. The
// header row is skipped. Rows that fail validation are reported in the
// result and left out.
func Import(path string, validator *roster.Validator) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return importFile(f, validator)
}

// ImportFrom is Import for a workbook read from r
func ImportFrom(r io.Reader, validator *roster.Validator) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return importFile(f, validator)
}

func importFile(f *excelize.File, validator *roster.Validator) (*ImportResult, error) {
	if validator == nil {
		validator = roster.NewValidator(roster.DecimalIDs)
	}

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	result := &ImportResult{Sheet: sheetName, Students: []roster.Student{}}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		s, err := parseRow(row, validator)
		if err != nil {
			result.Errors = append(result.Errors, &RowError{Row: i + 1, Err: err})
			continue
		}
		result.Students = append(result.Students, s)
	}
	return result, nil
}

func parseRow(row []string, validator *roster.Validator) (roster.Student, error) {
	if len(row) < importColumns {
		return roster.Student{}, fmt.Errorf("expected %d columns, found %d", importColumns, len(row))
	}

	cells := make([]string, importColumns)
	for i := range cells {
		cells[i] = roster.Normalize(row[i])
	}

	s := roster.Student{Name: cells[0], Email: cells[1], ID: cells[2]}
	grades := [3]*roster.Grade{&s.Presentation, &s.Essay, &s.Project}
	for i, dst := range grades {
		g, err := validator.ValidateGrade(roster.FieldPresentation+roster.Field(i), cells[3+i])
		if err != nil {
			return roster.Student{}, err
		}
		*dst = g
	}

	if err := validator.ValidateStudent(s); err != nil {
		return roster.Student{}, err
	}
	return s, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if roster.Normalize(cell) != "" {
			return false
		}
	}
	return true
}
