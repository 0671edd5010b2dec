package remote_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/remote"
	"github.com/amonks/todosync/store"
)

func newSyncedStore(t *testing.T) (*store.Store, *api.Client) {
	t.Helper()
	server := remote.NewServer(remote.ServerOptions{APIKey: "secret"})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	client := api.NewClient(api.ClientOptions{BaseURL: ts.URL, APIKey: "secret"})
	return store.New(client, store.Options{Strict: true}), client
}

func TestStoreAgainstServer(t *testing.T) {
	s, client := newSyncedStore(t)
	ctx := context.Background()

	groceries, err := s.CreateTodolist(ctx, "Groceries")
	if err != nil {
		t.Fatalf("create todolist: %v", err)
	}
	if _, err := s.CreateTask(ctx, groceries.ID, ""); err == nil {
		t.Fatalf("expected empty title to be rejected")
	}
	if msg, _ := s.Err(); msg != "Title is required" {
		t.Fatalf("expected %q, got %q", "Title is required", msg)
	}
	if tasks, _ := s.Tasks(groceries.ID); len(tasks) != 0 {
		t.Fatalf("expected no tasks after rejection, got %v", tasks)
	}

	milk, err := s.CreateTask(ctx, groceries.ID, "Milk")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if s.Status() != store.StatusSucceeded {
		t.Fatalf("expected status succeeded, got %q", s.Status())
	}
	if err := s.UpdateTask(ctx, groceries.ID, milk.ID, store.UpdateTaskModel{
		Status:      store.StatusPtr(api.TaskStatusCompleted),
		Description: store.StringPtr("two litres"),
	}); err != nil {
		t.Fatalf("update task: %v", err)
	}

	remoteTasks, err := client.GetTasks(ctx, groceries.ID)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(remoteTasks.Items) != 1 {
		t.Fatalf("expected one remote task, got %+v", remoteTasks.Items)
	}
	if got := remoteTasks.Items[0]; got.Title != "Milk" || got.Description != "two litres" || got.Status != api.TaskStatusCompleted {
		t.Fatalf("expected full model on the server, got %+v", got)
	}

	fresh := store.New(client, store.Options{Strict: true})
	if err := fresh.FetchAll(ctx); err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	local, ok := fresh.Task(groceries.ID, milk.ID)
	if !ok || local.Description != "two litres" {
		t.Fatalf("expected reloaded task, got %+v (present=%v)", local, ok)
	}

	if err := s.DeleteTodolist(ctx, groceries.ID); err != nil {
		t.Fatalf("delete todolist: %v", err)
	}
	if err := s.DeleteTodolist(ctx, groceries.ID); !errors.Is(err, store.ErrTodolistNotFound) {
		t.Fatalf("expected ErrTodolistNotFound, got %v", err)
	}
	if err := s.Snapshot().CheckConsistency(); err != nil {
		t.Fatalf("consistency: %v", err)
	}
}

func TestStoreSurfacesStaleTodolist(t *testing.T) {
	s, client := newSyncedStore(t)
	ctx := context.Background()

	list, err := s.CreateTodolist(ctx, "Shared")
	if err != nil {
		t.Fatalf("create todolist: %v", err)
	}
	if _, err := client.DeleteTodolist(ctx, list.ID); err != nil {
		t.Fatalf("delete behind the store's back: %v", err)
	}

	_, err = s.CreateTask(ctx, list.ID, "orphan")
	var appErr *store.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Error() != "Todolist not found" {
		t.Fatalf("unexpected message %q", appErr.Error())
	}
	if err := s.FetchTasks(ctx, list.ID); err == nil {
		t.Fatalf("expected fetch of a deleted todolist to fail")
	}
	if s.Status() != store.StatusFailed {
		t.Fatalf("expected status failed, got %q", s.Status())
	}
}
