// Package report renders todo summaries for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/theme"
)

const dueLayout = "2006-01-02 15:04 MST"

// Stats renders the statistics of one user.
func Stats(username string, s model.TodoStats) string {
	rows := []string{
		row("total", fmt.Sprint(s.Total)),
		row("completed", fmt.Sprint(s.Completed)),
		row("pending", fmt.Sprint(s.Pending)),
		row("overdue", overdueCount(s.Overdue)),
		"",
		theme.LabelStyle.Render("by priority"),
	}
	for _, p := range model.TodoPriorities {
		rows = append(rows, row("  "+string(p), theme.PriorityStyle(p).Render(fmt.Sprint(s.ByPriority[p]))))
	}
	rows = append(rows, "", theme.LabelStyle.Render("by status"))
	for _, st := range model.TodoStatuses {
		rows = append(rows, row("  "+string(st), theme.StatusStyle(st).Render(fmt.Sprint(s.ByStatus[st]))))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderStyle.Render("Todos of "+username),
		theme.PanelStyle.Render(strings.Join(rows, "\n")),
	)
}

// Todos renders a titled list of todos. Due dates before now are
// highlighted.
func Todos(title string, todos []model.Todo, now time.Time) string {
	header := theme.HeaderStyle.Render(fmt.Sprintf("%s (%d)", title, len(todos)))
	if len(todos) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, theme.MutedStyle.Render("nothing to show"))
	}

	lines := make([]string, 0, len(todos))
	for _, t := range todos {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.Format(dueLayout)
			if t.DueDate.Before(now) {
				due = theme.OverdueStyle.Render(due)
			}
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s",
			theme.PriorityStyle(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority)),
			theme.StatusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status)),
			due,
			t.Title,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, theme.PanelStyle.Render(strings.Join(lines, "\n")))
}

func row(label, value string) string {
	return theme.LabelStyle.Render(label) + value
}

func overdueCount(n int) string {
	if n == 0 {
		return "0"
	}
	return theme.OverdueStyle.Render(fmt.Sprint(n))
}
