package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amonks/todosync/api"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	urgentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// ErrorLine renders a failure message for the terminal, wrapped to width.
func ErrorLine(message string, width int) string {
	return errorStyle.Render("error: " + ReflowParagraphs(message, width))
}

// SuccessLine renders a confirmation message.
func SuccessLine(message string) string {
	return successStyle.Render(message)
}

// TaskStatusLabel renders a task status name, dimming finished work.
func TaskStatusLabel(status api.TaskStatus) string {
	switch status {
	case api.TaskStatusCompleted, api.TaskStatusDraft:
		return mutedStyle.Render(status.String())
	case api.TaskStatusInProgress:
		return activeStyle.Render(status.String())
	default:
		return status.String()
	}
}

// TaskPriorityLabel renders a task priority name, flagging urgent work.
func TaskPriorityLabel(priority api.TaskPriority) string {
	if priority == api.TaskPriorityUrgent || priority == api.TaskPriorityHi {
		return urgentStyle.Render(priority.String())
	}
	return priority.String()
}
