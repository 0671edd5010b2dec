package store

import (
	"errors"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	cases := []struct {
		messages []string
		want     string
	}{
		{[]string{"Title is required", "second"}, "Title is required"},
		{nil, FallbackErrorMessage},
		{[]string{}, FallbackErrorMessage},
		{[]string{"   "}, FallbackErrorMessage},
	}
	for _, tc := range cases {
		err := &AppError{ResultCode: 1, Messages: tc.messages}
		if got := err.Error(); got != tc.want {
			t.Fatalf("messages %q: expected %q, got %q", tc.messages, tc.want, got)
		}
	}
}

func TestNetworkErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &NetworkError{Err: cause}
	if got := err.Error(); got != cause.Error() {
		t.Fatalf("expected %q, got %q", cause.Error(), got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected network error to unwrap to its cause")
	}

	if got := (&NetworkError{}).Error(); got != FallbackErrorMessage {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := (&NetworkError{Err: errors.New("")}).Error(); got != FallbackErrorMessage {
		t.Fatalf("expected fallback for empty cause, got %q", got)
	}
}

func TestClassifierSetsErrorAndStatusTogether(t *testing.T) {
	s := New(&stubRemote{}, Options{})

	var seen []State
	s.Subscribe(func(state State) { seen = append(seen, state) })

	err := s.handleServerAppError("test", 1, []string{"nope"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(seen) != 1 {
		t.Fatalf("expected one transition, got %d", len(seen))
	}
	app := seen[0].App
	if app.Status != StatusFailed || app.Error == nil || *app.Error != "nope" {
		t.Fatalf("unexpected app state %+v", app)
	}
}
