package validation_test

import (
	"errors"
	"testing"

	"github.com/amonks/todosync/internal/validation"
	"github.com/amonks/todosync/store"
)

func TestParseValueNormalizesFilter(t *testing.T) {
	for raw, want := range map[string]store.FilterValue{
		"all":         store.FilterAll,
		" Active ":    store.FilterActive,
		"COMPLETED\n": store.FilterCompleted,
	} {
		got, err := validation.ParseValue(store.ErrInvalidFilter, raw, store.ValidFilters())
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestParseValueRejectsUnknownFilter(t *testing.T) {
	got, err := validation.ParseValue(store.ErrInvalidFilter, "later", store.ValidFilters())
	if !errors.Is(err, store.ErrInvalidFilter) {
		t.Fatalf("expected error to wrap %v, got %v", store.ErrInvalidFilter, err)
	}
	if got != "" {
		t.Fatalf("expected zero value on error, got %q", got)
	}

	want := `invalid filter: "later" (valid: all, active, completed)`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestParseValueRejectsBlank(t *testing.T) {
	if _, err := validation.ParseValue(store.ErrInvalidFilter, "  ", store.ValidFilters()); err == nil {
		t.Fatal("expected blank filter to be rejected")
	}
}

func TestFormatValidValues(t *testing.T) {
	got := validation.FormatValidValues(store.ValidFilters())
	want := "all, active, completed"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
