package store

import (
	"context"
	"fmt"

	"github.com/amonks/todosync/api"
	log "github.com/sirupsen/logrus"
)

// Tasks returns the tasks of a todolist, most recent first.
func (s *Store) Tasks(todolistID string) ([]api.Task, bool) {
	var (
		tasks []api.Task
		ok    bool
	)
	s.read(func(state State) {
		var list []api.Task
		list, ok = state.Tasks[todolistID]
		tasks = append([]api.Task(nil), list...)
	})
	return tasks, ok
}

// Task returns a single task.
func (s *Store) Task(todolistID, taskID string) (api.Task, bool) {
	var (
		task api.Task
		ok   bool
	)
	s.read(func(state State) { task, ok = state.Task(todolistID, taskID) })
	return task, ok
}

// VisibleTasks returns the tasks of a todolist that pass its filter.
func (s *Store) VisibleTasks(todolistID string) ([]api.Task, error) {
	var (
		tasks []api.Task
		err   error
	)
	s.read(func(state State) {
		todolist, ok := state.Todolist(todolistID)
		if !ok {
			err = fmt.Errorf("%w: %q", ErrTodolistNotFound, todolistID)
			return
		}
		tasks = FilterTasks(state.Tasks[todolistID], todolist.Filter)
	})
	return tasks, err
}

// FilterTasks returns the tasks matching filter. Active tasks are those
// not yet completed.
func FilterTasks(tasks []api.Task, filter FilterValue) []api.Task {
	filtered := make([]api.Task, 0, len(tasks))
	for _, task := range tasks {
		switch filter {
		case FilterActive:
			if task.Status == api.TaskStatusCompleted {
				continue
			}
		case FilterCompleted:
			if task.Status != api.TaskStatusCompleted {
				continue
			}
		}
		filtered = append(filtered, task)
	}
	return filtered
}

// FetchTasks replaces a todolist's tasks with the service's.
func (s *Store) FetchTasks(ctx context.Context, todolistID string) error {
	const op = "fetch tasks"
	s.setLoading()

	response, err := s.remote.GetTasks(ctx, todolistID)
	if err != nil {
		return s.handleServerNetworkError(op, err)
	}
	if response.Error != nil && *response.Error != "" {
		return s.handleServerAppError(op, api.ResultCodeError, []string{*response.Error})
	}
	if err := s.Dispatch(SetTasks{TodolistID: todolistID, Tasks: response.Items}, SetAppStatus{Status: StatusSucceeded}); err != nil {
		return s.handleClientStateError(op, err)
	}
	s.logger.WithFields(log.Fields{"op": op, "todolist_id": todolistID, "count": len(response.Items)}).Debug("tasks loaded")
	return nil
}

// CreateTask asks the service to create a task and inserts the server's
// entity at the head of its todolist once the service confirms it.
func (s *Store) CreateTask(ctx context.Context, todolistID, title string) (api.Task, error) {
	const op = "create task"
	s.setLoading()

	response, err := s.remote.CreateTask(ctx, todolistID, title)
	if err != nil {
		return api.Task{}, s.handleServerNetworkError(op, err)
	}
	if !response.OK() {
		return api.Task{}, s.handleServerAppError(op, response.ResultCode, response.Messages)
	}
	created := response.Data.Item
	// A fetch may have loaded the new task while the request was in flight.
	// The server's copy replaces it at the head.
	if err := s.Dispatch(
		RemoveTask{TodolistID: created.TodoListID, TaskID: created.ID},
		AddTask{Task: created},
		SetAppStatus{Status: StatusSucceeded},
	); err != nil {
		return api.Task{}, s.handleClientStateError(op, err)
	}
	s.logger.WithFields(log.Fields{"op": op, "todolist_id": created.TodoListID, "task_id": created.ID}).Debug("task created")
	return created, nil
}

// DeleteTask asks the service to delete a task and removes it locally once
// the service confirms.
func (s *Store) DeleteTask(ctx context.Context, todolistID, taskID string) error {
	const op = "delete task"

	response, err := s.remote.DeleteTask(ctx, todolistID, taskID)
	if err != nil {
		return s.handleServerNetworkError(op, err)
	}
	if !response.OK() {
		return s.handleServerAppError(op, response.ResultCode, response.Messages)
	}
	if err := s.Dispatch(RemoveTask{TodolistID: todolistID, TaskID: taskID}); err != nil {
		return s.handleClientStateError(op, err)
	}
	return nil
}

// UpdateTask sends the task's full field set, with model's fields replaced,
// to the service and applies model locally once the service confirms.
//
// The task must already be in the store. If it is not, no request is made
// and an error wrapping ErrTaskNotFound is returned.
func (s *Store) UpdateTask(ctx context.Context, todolistID, taskID string, model UpdateTaskModel) error {
	const op = "update task"
	fields := log.Fields{"op": op, "todolist_id": todolistID, "task_id": taskID}

	current, ok := s.Task(todolistID, taskID)
	if !ok {
		s.logger.WithFields(fields).Warn("task not found in the state")
		return fmt.Errorf("%s: %w: %q in todolist %q", op, ErrTaskNotFound, taskID, todolistID)
	}

	response, err := s.remote.UpdateTask(ctx, todolistID, taskID, model.FullModel(current))
	if err != nil {
		return s.handleServerNetworkError(op, err)
	}
	if !response.OK() {
		return s.handleServerAppError(op, response.ResultCode, response.Messages)
	}
	if err := s.Dispatch(UpdateTask{TodolistID: todolistID, TaskID: taskID, Model: model}); err != nil {
		return s.handleClientStateError(op, err)
	}
	s.logger.WithFields(fields).Debug("task updated")
	return nil
}
