package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/internal/config"
	"github.com/amonks/todosync/internal/ids"
	"github.com/amonks/todosync/internal/testsupport"
	"github.com/amonks/todosync/remote"
)

func setupSessionEnv(t *testing.T, redisURL string) *api.Client {
	t.Helper()
	testsupport.SetupTestHome(t)

	server := remote.NewServer(remote.ServerOptions{APIKey: "k"})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	t.Setenv(config.EnvAddr, ts.URL)
	t.Setenv(config.EnvAPIKey, "k")
	t.Setenv(config.EnvRedisURL, redisURL)
	t.Setenv(config.EnvDebug, "")
	return api.NewClient(api.ClientOptions{BaseURL: ts.URL, APIKey: "k"})
}

func TestOpenSessionLoadsTodolistByPrefix(t *testing.T) {
	client := setupSessionEnv(t, "")
	ctx := context.Background()

	created, err := client.CreateTodolist(ctx, "Groceries")
	if err != nil || !created.OK() {
		t.Fatalf("create todolist: %+v %v", created, err)
	}
	listID := created.Data.Item.ID
	if _, err := client.CreateTask(ctx, listID, "Milk"); err != nil {
		t.Fatalf("create task: %v", err)
	}

	s, err := openSession(&cobra.Command{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer s.Close()
	if s.cached {
		t.Fatal("expected no cache without a redis url")
	}

	got, err := s.loadTodolist(ctx, strings.ToUpper(listID[:8]))
	if err != nil {
		t.Fatalf("load todolist: %v", err)
	}
	if got != listID {
		t.Fatalf("expected %q, got %q", listID, got)
	}
	tasks, ok := s.store.Tasks(listID)
	if !ok || len(tasks) != 1 || tasks[0].Title != "Milk" {
		t.Fatalf("expected loaded tasks, got %+v (present=%v)", tasks, ok)
	}

	if _, err := s.resolveTask(listID, "nope"); !errors.Is(err, ids.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestOpenSessionUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := setupSessionEnv(t, "redis://"+mr.Addr()+"/0")
	ctx := context.Background()

	s, err := openSession(&cobra.Command{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer s.Close()
	if !s.cached {
		t.Fatal("expected cached session")
	}

	if _, err := s.store.CreateTodolist(ctx, "Cached"); err != nil {
		t.Fatalf("create todolist: %v", err)
	}
	if err := s.store.FetchTodolists(ctx); err != nil {
		t.Fatalf("fetch todolists: %v", err)
	}
	if len(mr.Keys()) == 0 {
		t.Fatal("expected todolists to be cached in redis")
	}

	if _, err := client.CreateTodolist(ctx, "Behind the cache"); err != nil {
		t.Fatalf("create todolist: %v", err)
	}
	if err := s.store.FetchTodolists(ctx); err != nil {
		t.Fatalf("fetch todolists: %v", err)
	}
	if got := len(s.store.Todolists()); got != 1 {
		t.Fatalf("expected cached read to return 1 todolist, got %d", got)
	}
}

func TestOpenSessionRejectsBadRedisURL(t *testing.T) {
	setupSessionEnv(t, "memcached://nope")

	if _, err := openSession(&cobra.Command{}); err == nil {
		t.Fatal("expected invalid redis url to fail")
	}
}

func TestTaskFieldsUpdateModel(t *testing.T) {
	var fields taskFields
	cmd := &cobra.Command{Use: "update"}
	addTaskFieldFlagAliases(cmd)
	addTaskFieldFlags(cmd, &fields, true)

	for name, value := range map[string]string{
		"desc":     "-",
		"status":   "in_progress",
		"priority": "urgent",
		"deadline": " 2026-04-01 ",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	model, err := fields.updateModel(cmd, strings.NewReader("from stdin\n"))
	if err != nil {
		t.Fatalf("update model: %v", err)
	}
	if model.Title != nil || model.StartDate != nil {
		t.Fatalf("expected unset flags to stay nil, got %+v", model)
	}
	if model.Description == nil || *model.Description != "from stdin" {
		t.Fatalf("expected description from stdin, got %v", model.Description)
	}
	if model.Status == nil || *model.Status != api.TaskStatusInProgress {
		t.Fatalf("expected in-progress status, got %v", model.Status)
	}
	if model.Priority == nil || *model.Priority != api.TaskPriorityUrgent {
		t.Fatalf("expected urgent priority, got %v", model.Priority)
	}
	if model.Deadline == nil || *model.Deadline != "2026-04-01" {
		t.Fatalf("expected trimmed deadline, got %v", model.Deadline)
	}

	if err := cmd.Flags().Set("status", "someday"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, err := fields.updateModel(cmd, strings.NewReader("")); err == nil {
		t.Fatal("expected invalid status to fail")
	}
}

func TestTaskFieldsEmptyModel(t *testing.T) {
	var fields taskFields
	cmd := &cobra.Command{Use: "create"}
	addTaskFieldFlags(cmd, &fields, false)

	model, err := fields.updateModel(cmd, strings.NewReader(""))
	if err != nil {
		t.Fatalf("update model: %v", err)
	}
	if !model.IsEmpty() {
		t.Fatalf("expected empty model, got %+v", model)
	}
}
