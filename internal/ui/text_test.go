package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/amonks/todosync/api"
)

func TestReflowParagraphs(t *testing.T) {
	input := "first line\r\ncontinues here\n\n\n  second   paragraph  "

	got := ReflowParagraphs(input, 12)

	expected := "first line\ncontinues\nhere\n\nsecond\nparagraph"
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestReflowParagraphsEmpty(t *testing.T) {
	if got := ReflowParagraphs(" \n\n ", 10); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestLabelsArePlainWithoutColor(t *testing.T) {
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(previous) })

	if got := TaskStatusLabel(api.TaskStatusInProgress); got != "in-progress" {
		t.Fatalf("expected plain status, got %q", got)
	}
	if got := TaskPriorityLabel(api.TaskPriorityUrgent); got != "urgent" {
		t.Fatalf("expected plain priority, got %q", got)
	}
	if got := ErrorLine("Title is required", 80); !strings.Contains(got, "error: Title is required") {
		t.Fatalf("expected error text, got %q", got)
	}
}
