package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"
)

// Todolists returns the todolists, most recent first.
func (s *Store) Todolists() []Todolist {
	var todolists []Todolist
	s.read(func(state State) { todolists = slices.Clone(state.Todolists) })
	return todolists
}

// Todolist returns a todolist by id.
func (s *Store) Todolist(id string) (Todolist, bool) {
	var (
		todolist Todolist
		ok       bool
	)
	s.read(func(state State) { todolist, ok = state.Todolist(id) })
	return todolist, ok
}

// FetchTodolists replaces the local todolists with the service's.
func (s *Store) FetchTodolists(ctx context.Context) error {
	const op = "fetch todolists"
	s.setLoading()

	todolists, err := s.remote.GetTodolists(ctx)
	if err != nil {
		return s.handleServerNetworkError(op, err)
	}
	if err := s.Dispatch(SetTodolists{Todolists: todolists}, SetAppStatus{Status: StatusSucceeded}); err != nil {
		return s.handleClientStateError(op, err)
	}
	s.logger.WithFields(log.Fields{"op": op, "count": len(todolists)}).Debug("todolists loaded")
	return nil
}

// FetchAll loads every todolist and then the tasks of each, and marks the
// store initialized. Task fetch failures are reported together.
func (s *Store) FetchAll(ctx context.Context) error {
	defer func() {
		if err := s.Dispatch(SetAppInitialized{Initialized: true}); err != nil {
			s.logger.WithError(err).Error("mark initialized")
		}
	}()

	if err := s.FetchTodolists(ctx); err != nil {
		return err
	}
	var errs []error
	for _, todolist := range s.Todolists() {
		if err := s.FetchTasks(ctx, todolist.ID); err != nil {
			errs = append(errs, fmt.Errorf("todolist %s: %w", todolist.ID, err))
		}
	}
	return errors.Join(errs...)
}

// CreateTodolist asks the service to create a todolist and inserts the
// server's entity once the service confirms it.
func (s *Store) CreateTodolist(ctx context.Context, title string) (Todolist, error) {
	const op = "create todolist"
	s.setLoading()

	response, err := s.remote.CreateTodolist(ctx, title)
	if err != nil {
		return Todolist{}, s.handleServerNetworkError(op, err)
	}
	if !response.OK() {
		return Todolist{}, s.handleServerAppError(op, response.ResultCode, response.Messages)
	}
	created := response.Data.Item
	err = s.Dispatch(AddTodolist{Todolist: created}, SetAppStatus{Status: StatusSucceeded})
	if errors.Is(err, ErrDuplicateTodolist) {
		// A fetch loaded it while the request was in flight. Keep its tasks
		// and filter, and take the server's title.
		err = s.Dispatch(ChangeTodolistTitle{ID: created.ID, Title: created.Title}, SetAppStatus{Status: StatusSucceeded})
		if err == nil {
			if existing, ok := s.Todolist(created.ID); ok {
				s.logger.WithFields(log.Fields{"op": op, "todolist_id": created.ID}).Debug("todolist already loaded")
				return existing, nil
			}
		}
	}
	if err != nil {
		return Todolist{}, s.handleClientStateError(op, err)
	}
	s.logger.WithFields(log.Fields{"op": op, "todolist_id": created.ID}).Debug("todolist created")
	return newTodolist(created), nil
}

// DeleteTodolist asks the service to delete a todolist and removes it, with
// its tasks, once the service confirms. While the request is in flight the
// todolist's entity status is loading.
func (s *Store) DeleteTodolist(ctx context.Context, id string) error {
	const op = "delete todolist"
	fields := log.Fields{"op": op, "todolist_id": id}

	if err := s.Dispatch(SetAppStatus{Status: StatusLoading}, ChangeTodolistEntityStatus{ID: id, Status: StatusLoading}); err != nil {
		return s.handleClientStateError(op, err)
	}

	response, err := s.remote.DeleteTodolist(ctx, id)
	if err == nil && response.OK() {
		if err := s.Dispatch(RemoveTodolist{ID: id}, SetAppStatus{Status: StatusSucceeded}); err != nil {
			return s.handleClientStateError(op, err)
		}
		s.logger.WithFields(fields).Debug("todolist deleted")
		return nil
	}

	s.resetEntityStatus(id)
	if err != nil {
		return s.handleServerNetworkError(op, err)
	}
	return s.handleServerAppError(op, response.ResultCode, response.Messages)
}

// RenameTodolist asks the service to rename a todolist and applies the new
// title once the service confirms.
func (s *Store) RenameTodolist(ctx context.Context, id, title string) error {
	const op = "rename todolist"

	response, err := s.remote.UpdateTodolist(ctx, id, title)
	if err != nil {
		return s.handleServerNetworkError(op, err)
	}
	if !response.OK() {
		return s.handleServerAppError(op, response.ResultCode, response.Messages)
	}
	if err := s.Dispatch(ChangeTodolistTitle{ID: id, Title: title}); err != nil {
		return s.handleClientStateError(op, err)
	}
	return nil
}

// ChangeFilter sets which tasks of a todolist are visible. The filter is
// client-only and never sent to the service.
func (s *Store) ChangeFilter(id string, filter FilterValue) error {
	return s.Dispatch(ChangeTodolistFilter{ID: id, Filter: filter})
}

// Clear drops all todolists and tasks, for example after signing out.
func (s *Store) Clear() error {
	return s.Dispatch(ClearData{}, SetAppInitialized{Initialized: false})
}

func (s *Store) resetEntityStatus(id string) {
	err := s.Dispatch(ChangeTodolistEntityStatus{ID: id, Status: StatusIdle})
	if err != nil && !errors.Is(err, ErrTodolistNotFound) {
		s.logger.WithField("todolist_id", id).WithError(err).Error("reset entity status")
	}
}
