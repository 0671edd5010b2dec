package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/amonks/todosync/api"
)

func newTaskFieldCommand() (*cobra.Command, *taskFields) {
	var fields taskFields
	cmd := &cobra.Command{Use: "update"}
	addTaskFieldFlagAliases(cmd)
	addTaskFieldFlags(cmd, &fields, true)
	return cmd, &fields
}

func TestTaskFieldAliasesSetCanonicalFlags(t *testing.T) {
	cmd, fields := newTaskFieldCommand()

	for alias, value := range map[string]string{
		"desc":  "Sourdough",
		"due":   "2026-05-01",
		"start": "2026-04-01",
		"pri":   "urgent",
	} {
		if err := cmd.Flags().Set(alias, value); err != nil {
			t.Fatalf("set %s alias: %v", alias, err)
		}
	}

	for _, name := range []string{"description", "deadline", "start-date", "priority"} {
		if !cmd.Flags().Changed(name) {
			t.Fatalf("expected %s to be marked as changed", name)
		}
	}
	if fields.description != "Sourdough" || fields.deadline != "2026-05-01" || fields.startDate != "2026-04-01" || fields.priority != "urgent" {
		t.Fatalf("unexpected fields %+v", *fields)
	}

	model, err := fields.updateModel(cmd, strings.NewReader(""))
	if err != nil {
		t.Fatalf("update model: %v", err)
	}
	if model.Deadline == nil || *model.Deadline != "2026-05-01" {
		t.Fatalf("expected deadline from --due, got %v", model.Deadline)
	}
	if model.Priority == nil || *model.Priority != api.TaskPriorityUrgent {
		t.Fatalf("expected urgent priority from --pri, got %v", model.Priority)
	}
}

func TestTaskFieldAliasesStayOutOfUsage(t *testing.T) {
	cmd, _ := newTaskFieldCommand()

	usage := cmd.Flags().FlagUsages()
	for _, alias := range []string{"--desc ", "--due ", "--start ", "--pri "} {
		if strings.Contains(usage, alias) {
			t.Fatalf("did not expect alias %q in usage, got %q", alias, usage)
		}
	}
	for _, inline := range []string{"-d, --description", "-p, --priority", "--start-date", "--deadline"} {
		if !strings.Contains(usage, inline) {
			t.Fatalf("expected %q in usage, got %q", inline, usage)
		}
	}
}
