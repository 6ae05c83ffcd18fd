package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/notify"
)

var (
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	idStyle       = lipgloss.NewStyle().Bold(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	recurStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

// FormatTask renders one task as
//
//	[X] [H] #3 Title [!] #a,#b Due: 2025-12-10 14:00 [WEEKLY] [scheduled]
//
// with the description, if any, on an indented second line.
func FormatTask(task model.Task, now time.Time) string {
	parts := make([]string, 0, 9)
	if task.IsComplete() {
		parts = append(parts, doneStyle.Render("[X]"))
	} else {
		parts = append(parts, "[ ]")
	}
	parts = append(parts, priorityBadge(task.Priority))
	parts = append(parts, idStyle.Render("#"+strconv.Itoa(task.ID)))
	parts = append(parts, task.Title)
	if task.IsOverdue(now) {
		parts = append(parts, overdueStyle.Render("[!]"))
	}
	if len(task.Tags) > 0 {
		parts = append(parts, tagStyle.Render("#"+strings.Join(task.Tags, ",#")))
	}
	if task.DueDate != nil {
		parts = append(parts, dueStyle.Render("Due: "+task.DueDate.Format(notify.TimeLayout)))
	}
	if task.Recurrence.IsSet() {
		parts = append(parts, recurStyle.Render("["+string(task.Recurrence)+"]"))
	}
	parts = append(parts, dimStyle.Render("["+string(task.Type())+"]"))

	out := strings.Join(parts, " ")
	if task.Description != "" {
		out += "\n    " + dimStyle.Render(task.Description)
	}
	return out
}

// RenderList formats tasks one per entry. selected < 0 highlights nothing.
func RenderList(tasks []model.Task, now time.Time, selected int) string {
	if len(tasks) == 0 {
		return dimStyle.Render("No tasks found.")
	}
	var b strings.Builder
	for i, task := range tasks {
		if i > 0 {
			b.WriteString("\n")
		}
		line := FormatTask(task, now)
		if i == selected {
			line = selectedStyle.Render("> ") + line
		} else if selected >= 0 {
			line = "  " + line
		}
		b.WriteString(line)
	}
	return b.String()
}

func priorityBadge(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return highStyle.Render("[H]")
	case model.PriorityMedium:
		return mediumStyle.Render("[M]")
	case model.PriorityLow:
		return lowStyle.Render("[L]")
	default:
		return "[?]"
	}
}
