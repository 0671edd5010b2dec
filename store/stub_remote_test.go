package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amonks/todosync/api"
)

type stubRemote struct {
	getTodolistsFn   func(ctx context.Context) ([]api.Todolist, error)
	createTodolistFn func(ctx context.Context, title string) (api.Response[api.ItemData[api.Todolist]], error)
	deleteTodolistFn func(ctx context.Context, todolistID string) (api.Response[api.Empty], error)
	updateTodolistFn func(ctx context.Context, todolistID, title string) (api.Response[api.Empty], error)
	getTasksFn       func(ctx context.Context, todolistID string) (api.GetTasksResponse, error)
	createTaskFn     func(ctx context.Context, todolistID, title string) (api.Response[api.ItemData[api.Task]], error)
	updateTaskFn     func(ctx context.Context, todolistID, taskID string, model api.UpdateTaskModel) (api.Response[api.ItemData[api.Task]], error)
	deleteTaskFn     func(ctx context.Context, todolistID, taskID string) (api.Response[api.Empty], error)

	mu    sync.Mutex
	calls []string
}

func (s *stubRemote) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *stubRemote) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubRemote) GetTodolists(ctx context.Context) ([]api.Todolist, error) {
	s.record("GetTodolists")
	if s.getTodolistsFn == nil {
		return nil, errors.New("unexpected GetTodolists call")
	}
	return s.getTodolistsFn(ctx)
}

func (s *stubRemote) CreateTodolist(ctx context.Context, title string) (api.Response[api.ItemData[api.Todolist]], error) {
	s.record("CreateTodolist")
	if s.createTodolistFn == nil {
		return api.Response[api.ItemData[api.Todolist]]{}, errors.New("unexpected CreateTodolist call")
	}
	return s.createTodolistFn(ctx, title)
}

func (s *stubRemote) DeleteTodolist(ctx context.Context, todolistID string) (api.Response[api.Empty], error) {
	s.record("DeleteTodolist")
	if s.deleteTodolistFn == nil {
		return api.Response[api.Empty]{}, errors.New("unexpected DeleteTodolist call")
	}
	return s.deleteTodolistFn(ctx, todolistID)
}

func (s *stubRemote) UpdateTodolist(ctx context.Context, todolistID, title string) (api.Response[api.Empty], error) {
	s.record("UpdateTodolist")
	if s.updateTodolistFn == nil {
		return api.Response[api.Empty]{}, errors.New("unexpected UpdateTodolist call")
	}
	return s.updateTodolistFn(ctx, todolistID, title)
}

func (s *stubRemote) GetTasks(ctx context.Context, todolistID string) (api.GetTasksResponse, error) {
	s.record("GetTasks")
	if s.getTasksFn == nil {
		return api.GetTasksResponse{}, errors.New("unexpected GetTasks call")
	}
	return s.getTasksFn(ctx, todolistID)
}

func (s *stubRemote) CreateTask(ctx context.Context, todolistID, title string) (api.Response[api.ItemData[api.Task]], error) {
	s.record("CreateTask")
	if s.createTaskFn == nil {
		return api.Response[api.ItemData[api.Task]]{}, errors.New("unexpected CreateTask call")
	}
	return s.createTaskFn(ctx, todolistID, title)
}

func (s *stubRemote) UpdateTask(ctx context.Context, todolistID, taskID string, model api.UpdateTaskModel) (api.Response[api.ItemData[api.Task]], error) {
	s.record("UpdateTask")
	if s.updateTaskFn == nil {
		return api.Response[api.ItemData[api.Task]]{}, errors.New("unexpected UpdateTask call")
	}
	return s.updateTaskFn(ctx, todolistID, taskID, model)
}

func (s *stubRemote) DeleteTask(ctx context.Context, todolistID, taskID string) (api.Response[api.Empty], error) {
	s.record("DeleteTask")
	if s.deleteTaskFn == nil {
		return api.Response[api.Empty]{}, errors.New("unexpected DeleteTask call")
	}
	return s.deleteTaskFn(ctx, todolistID, taskID)
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testTodolist(id, title string) api.Todolist {
	return api.Todolist{ID: id, Title: title, AddedDate: testTime}
}

func testTask(todolistID, id, title string) api.Task {
	return api.Task{
		ID:         id,
		TodoListID: todolistID,
		Title:      title,
		Status:     api.TaskStatusNew,
		Priority:   api.TaskPriorityLow,
		AddedDate:  testTime,
	}
}

func seededState(t interface{ Fatalf(string, ...any) }, todolists []api.Todolist, tasks ...api.Task) State {
	state, err := Reduce(NewState(), SetTodolists{Todolists: todolists})
	if err != nil {
		t.Fatalf("seed todolists: %v", err)
	}
	byList := map[string][]api.Task{}
	for _, task := range tasks {
		byList[task.TodoListID] = append(byList[task.TodoListID], task)
	}
	for id, list := range byList {
		state, err = Reduce(state, SetTasks{TodolistID: id, Tasks: list})
		if err != nil {
			t.Fatalf("seed tasks for %s: %v", id, err)
		}
	}
	return state
}

func accepted[D any](data D) api.Response[D] {
	return api.Response[D]{ResultCode: api.ResultCodeSuccess, Messages: []string{}, Data: data}
}

func rejected[D any](messages ...string) api.Response[D] {
	return api.Response[D]{ResultCode: api.ResultCodeError, Messages: messages}
}
