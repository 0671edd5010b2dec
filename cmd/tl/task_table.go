package main

import (
	"time"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/internal/ui"
)

// formatTaskTable renders tasks with each id's prefix highlighted relative
// to allIDs, the full task set of the todolist.
func formatTaskTable(tasks []api.Task, allIDs []string, highlight func(string, int) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "PRI", "STATUS", "DEADLINE", "AGE", "TITLE"}, len(tasks))
	highlightID := prefixHighlighter(allIDs, highlight)

	for _, task := range tasks {
		builder.AddRow([]string{
			highlightID(task.ID),
			ui.TaskPriorityLabel(task.Priority),
			ui.TaskStatusLabel(task.Status),
			dateOrDash(task.Deadline),
			ui.FormatTimeAgeShort(task.AddedDate, now),
			ui.TruncateTableCell(task.Title),
		})
	}

	return builder.String()
}

func dateOrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}
