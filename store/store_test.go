package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/amonks/todosync/api"
)

func TestSubscribeReceivesTransitionsInOrder(t *testing.T) {
	s := New(&stubRemote{}, Options{})

	var order []string
	var statuses []RequestStatus
	unsubscribeFirst := s.Subscribe(func(state State) {
		order = append(order, "first")
		statuses = append(statuses, state.App.Status)
	})
	s.Subscribe(func(state State) { order = append(order, "second") })

	if err := s.SetStatus(StatusLoading); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := s.SetStatus(StatusSucceeded); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"first", "second", "first", "second"}) {
		t.Fatalf("unexpected listener order %v", order)
	}
	if !reflect.DeepEqual(statuses, []RequestStatus{StatusLoading, StatusSucceeded}) {
		t.Fatalf("unexpected statuses %v", statuses)
	}

	unsubscribeFirst()
	unsubscribeFirst()
	order = nil
	if err := s.SetStatus(StatusIdle); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"second"}) {
		t.Fatalf("expected only second listener, got %v", order)
	}
}

func TestListenersAreNotCalledForRejectedBatches(t *testing.T) {
	s := New(&stubRemote{}, Options{})
	calls := 0
	s.Subscribe(func(State) { calls++ })

	if err := s.Dispatch(AddTask{Task: testTask("ghost", "t1", "one")}); !errors.Is(err, ErrTodolistNotFound) {
		t.Fatalf("expected ErrTodolistNotFound, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notifications, got %d", calls)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	initial := seededState(t, []api.Todolist{testTodolist("a", "A")}, testTask("a", "t1", "one"))
	s := New(&stubRemote{}, Options{Initial: &initial})

	snapshot := s.Snapshot()
	snapshot.Todolists[0].Title = "mutated"
	snapshot.Tasks["a"][0].Title = "mutated"
	delete(snapshot.Tasks, "a")

	todolist, _ := s.Todolist("a")
	if todolist.Title != "A" {
		t.Fatalf("expected store todolist untouched, got %q", todolist.Title)
	}
	task, ok := s.Task("a", "t1")
	if !ok || task.Title != "one" {
		t.Fatalf("expected store task untouched, got %+v (present=%v)", task, ok)
	}
	if initial.Tasks["a"][0].Title != "one" {
		t.Fatalf("expected seed state untouched")
	}
}

func TestStrictModeRejectsInconsistentTransitions(t *testing.T) {
	broken := seededState(t, []api.Todolist{testTodolist("a", "A")})
	broken.Tasks["orphan"] = []api.Task{}

	strict := New(&stubRemote{}, Options{Strict: true, Initial: &broken})
	if err := strict.SetStatus(StatusLoading); !errors.Is(err, ErrInconsistentState) {
		t.Fatalf("expected ErrInconsistentState, got %v", err)
	}
	if got := strict.Status(); got != StatusIdle {
		t.Fatalf("expected rejected transition to leave status idle, got %q", got)
	}

	lenient := New(&stubRemote{}, Options{Initial: &broken})
	if err := lenient.SetStatus(StatusLoading); err != nil {
		t.Fatalf("expected lenient store to accept, got %v", err)
	}
}

func TestResetStatusClearsError(t *testing.T) {
	s := New(&stubRemote{}, Options{})
	message := "boom"
	if err := s.Dispatch(SetAppError{Error: &message}, SetAppStatus{Status: StatusFailed}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := s.ResetStatus(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := s.Err(); ok {
		t.Fatalf("expected error to be cleared")
	}
	if got := s.Status(); got != StatusIdle {
		t.Fatalf("expected status idle, got %q", got)
	}
}

func TestDispatchWithoutMutationsIsNoop(t *testing.T) {
	s := New(&stubRemote{}, Options{})
	calls := 0
	s.Subscribe(func(State) { calls++ })
	if err := s.Dispatch(); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notifications, got %d", calls)
	}
}
