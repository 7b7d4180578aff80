package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ssargent/rollcall/pkg/roster"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// fieldLabels are the names shown to the operator, in Field order
var fieldLabels = [...]string{"Name", "Email", "UID", "Presentation Grade", "Essay Grade", "Project Grade"}

// RenderTable draws students as a bordered table numbered from 1
func RenderTable(students []roster.Student) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Email", "UID", "Presentation", "Essay", "Project").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, s := range students {
		t.Row(
			strconv.Itoa(i+1),
			s.Name,
			s.Email,
			s.ID,
			s.Presentation.String(),
			s.Essay.String(),
			s.Project.String(),
		)
	}
	return t.String()
}

// RenderStudent lists every field of s on its own line. With labeled set
// each line is prefixed with the letter that selects it in the update menu.
func RenderStudent(s roster.Student, labeled bool) string {
	var b strings.Builder
	for i, f := range roster.Fields {
		if labeled {
			fmt.Fprintf(&b, "%c: ", 'A'+i)
		}
		fmt.Fprintf(&b, "%s: %s\n", fieldLabels[f], s.Value(f))
	}
	if labeled {
		fmt.Fprintf(&b, "%c: Exit Updating Student\n", 'A'+len(roster.Fields))
	}
	return b.String()
}

func commandsBanner() string {
	lines := []string{
		"********************************************",
		"* COMMANDS:                                *",
		"* a: Add Student         r: Remove Student *",
		"* p: Show Students       u: Update Student *",
		"* f: Find Student        q: Quit Program   *",
		"********************************************",
		`Enter "h" for options menu`,
	}
	return strings.Join(lines, "\n") + "\n"
}

func title(s string) string {
	return titleStyle.Render("*****"+s+"*****") + "\n"
}
