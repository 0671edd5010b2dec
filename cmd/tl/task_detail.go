package main

import (
	"fmt"
	"strings"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/internal/markdown"
)

const taskDetailLineWidth = 80

// formatTaskDetail renders detailed information about a task.
func formatTaskDetail(t api.Task, highlight func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", highlight(t.ID))
	fmt.Fprintf(&b, "Todolist: %s\n", t.TodoListID)
	fmt.Fprintf(&b, "Title:    %s\n", t.Title)
	fmt.Fprintf(&b, "Status:   %s\n", t.Status)
	fmt.Fprintf(&b, "Priority: %s (%d)\n", t.Priority, t.Priority)
	fmt.Fprintf(&b, "Start:    %s\n", dateOrDash(t.StartDate))
	fmt.Fprintf(&b, "Deadline: %s\n", dateOrDash(t.Deadline))
	if !t.AddedDate.IsZero() {
		fmt.Fprintf(&b, "Added:    %s\n", t.AddedDate.Format("2006-01-02 15:04:05"))
	}

	if t.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", formatTaskDescription(t.Description))
	}
	return b.String()
}

func formatTaskDescription(value string) string {
	formatted := string(markdown.SafeRender(taskDetailLineWidth, 2, []byte(value)))
	if strings.TrimSpace(formatted) == "" {
		return "  -"
	}
	return formatted
}
