package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todo-tracker/internal/models"
)

var (
	colorGreen = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed   = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorBlue  = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorCyan  = lipgloss.AdaptiveColor{Dark: "#66D9E8", Light: "#0C8599"}
	colorGray  = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	ruleStyle    = lipgloss.NewStyle().Foreground(colorGray)
	idStyle      = lipgloss.NewStyle().Foreground(colorBlue)
	doneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Column widths of the todo table.
const (
	doneWidth = 4
	idWidth   = 3
	gap       = 2
)

// PrintError reports a failed command.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
}

func (a *App) success(format string, args ...any) {
	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

func (a *App) empty(msg string) {
	fmt.Fprintln(a.out, errorStyle.Render(msg))
}

// printTodos renders todos as a Done/ID/Title table with descriptions dimmed
// on the following line.
func printTodos(w io.Writer, todos []models.Todo) {
	spacer := strings.Repeat(" ", gap)
	indent := strings.Repeat(" ", doneWidth+gap+idWidth+gap)

	fmt.Fprintln(w, headerStyle.Render("Done  ID   Title"))
	fmt.Fprintln(w, ruleStyle.Render("----  ---  -----"))
	for _, t := range todos {
		box := fmt.Sprintf("%-*s", doneWidth, " ")
		if t.Completed {
			box = doneStyle.Render(fmt.Sprintf("%-*s", doneWidth, "✓"))
		}
		id := idStyle.Render(fmt.Sprintf("%-*d", idWidth, t.ID))
		title := t.Title
		if t.Priority > 0 {
			title += " " + dimStyle.Render(fmt.Sprintf("(p%d)", t.Priority))
		}
		fmt.Fprintln(w, box+spacer+id+spacer+title)
		if t.Description != nil {
			fmt.Fprintln(w, indent+dimStyle.Render(*t.Description))
		}
	}
}

func printStats(w io.Writer, s models.Stats) {
	rows := []struct {
		label string
		n     int
	}{
		{"Total", s.Total},
		{"Completed", s.Completed},
		{"Active", s.Active},
		{"High", s.HighPriority},
		{"Medium", s.MediumPriority},
		{"Low", s.LowPriority},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %d\n", headerStyle.Render(fmt.Sprintf("%-10s", r.label)), r.n)
	}
}
