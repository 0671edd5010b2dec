package store

import (
	"fmt"
	"slices"

	"github.com/amonks/todosync/api"
)

// Reduce applies mutations to state in order and returns the new state.
//
// Reduce never modifies its input: collections that change are copied and
// untouched collections are shared. If any mutation fails, the whole batch
// is discarded and the original state is returned with the error.
func Reduce(state State, mutations ...Mutation) (State, error) {
	next := state
	for _, m := range mutations {
		var err error
		next, err = reduceOne(next, m)
		if err != nil {
			return state, err
		}
	}
	return next, nil
}

func reduceOne(s State, m Mutation) (State, error) {
	switch m := m.(type) {
	case SetAppStatus:
		if !m.Status.IsValid() {
			return s, fmt.Errorf("%w: %q", ErrInvalidStatus, m.Status)
		}
		s.App.Status = m.Status
		return s, nil
	case SetAppError:
		s.App.Error = copyString(m.Error)
		return s, nil
	case SetAppInitialized:
		s.App.IsInitialized = m.Initialized
		return s, nil
	case AddTodolist:
		return addTodolist(s, m.Todolist)
	case RemoveTodolist:
		return removeTodolist(s, m.ID), nil
	case SetTodolists:
		return setTodolists(s, m.Todolists)
	case ChangeTodolistTitle:
		return changeTodolist(s, m.ID, func(t *Todolist) { t.Title = m.Title })
	case ChangeTodolistFilter:
		if !m.Filter.IsValid() {
			return s, fmt.Errorf("%w: %q", ErrInvalidFilter, m.Filter)
		}
		return changeTodolist(s, m.ID, func(t *Todolist) { t.Filter = m.Filter })
	case ChangeTodolistEntityStatus:
		if m.Status != StatusIdle && m.Status != StatusLoading {
			return s, fmt.Errorf("%w: entity status %q", ErrInvalidStatus, m.Status)
		}
		return changeTodolist(s, m.ID, func(t *Todolist) { t.EntityStatus = m.Status })
	case ClearData:
		s.Todolists = []Todolist{}
		s.Tasks = map[string][]api.Task{}
		return s, nil
	case SetTasks:
		return setTasks(s, m.TodolistID, m.Tasks)
	case AddTask:
		return addTask(s, m.Task)
	case RemoveTask:
		return removeTask(s, m.TodolistID, m.TaskID), nil
	case UpdateTask:
		return updateTask(s, m.TodolistID, m.TaskID, m.Model), nil
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownMutation, m)
	}
}

func newTodolist(remote api.Todolist) Todolist {
	return Todolist{Todolist: remote, Filter: FilterAll, EntityStatus: StatusIdle}
}

func addTodolist(s State, remote api.Todolist) (State, error) {
	if remote.ID == "" {
		return s, fmt.Errorf("%w: todolist", ErrMissingID)
	}
	if s.todolistIndex(remote.ID) >= 0 {
		return s, fmt.Errorf("%w: %q", ErrDuplicateTodolist, remote.ID)
	}

	todolists := make([]Todolist, 0, len(s.Todolists)+1)
	todolists = append(todolists, newTodolist(remote))
	s.Todolists = append(todolists, s.Todolists...)

	tasks := cloneTaskIndex(s.Tasks)
	tasks[remote.ID] = []api.Task{}
	s.Tasks = tasks
	return s, nil
}

func removeTodolist(s State, id string) State {
	index := s.todolistIndex(id)
	if index < 0 {
		return s
	}
	s.Todolists = slices.Delete(slices.Clone(s.Todolists), index, index+1)

	tasks := cloneTaskIndex(s.Tasks)
	delete(tasks, id)
	s.Tasks = tasks
	return s
}

func setTodolists(s State, remote []api.Todolist) (State, error) {
	todolists := make([]Todolist, 0, len(remote))
	tasks := make(map[string][]api.Task, len(remote))
	for _, item := range remote {
		if item.ID == "" {
			return s, fmt.Errorf("%w: todolist", ErrMissingID)
		}
		if _, dup := tasks[item.ID]; dup {
			return s, fmt.Errorf("%w: %q", ErrDuplicateTodolist, item.ID)
		}
		todolists = append(todolists, newTodolist(item))
		tasks[item.ID] = []api.Task{}
	}
	s.Todolists = todolists
	s.Tasks = tasks
	return s, nil
}

func changeTodolist(s State, id string, change func(*Todolist)) (State, error) {
	index := s.todolistIndex(id)
	if index < 0 {
		return s, fmt.Errorf("%w: %q", ErrTodolistNotFound, id)
	}
	todolists := slices.Clone(s.Todolists)
	change(&todolists[index])
	s.Todolists = todolists
	return s, nil
}

func setTasks(s State, todolistID string, items []api.Task) (State, error) {
	if _, ok := s.Tasks[todolistID]; !ok {
		return s, fmt.Errorf("%w: %q", ErrTodolistNotFound, todolistID)
	}
	for _, task := range items {
		if task.TodoListID != "" && task.TodoListID != todolistID {
			return s, fmt.Errorf("%w: task %q belongs to %q, not %q", ErrTaskTodolistMismatch, task.ID, task.TodoListID, todolistID)
		}
	}
	tasks := cloneTaskIndex(s.Tasks)
	tasks[todolistID] = append(make([]api.Task, 0, len(items)), items...)
	s.Tasks = tasks
	return s, nil
}

func addTask(s State, task api.Task) (State, error) {
	if task.ID == "" {
		return s, fmt.Errorf("%w: task", ErrMissingID)
	}
	existing, ok := s.Tasks[task.TodoListID]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrTodolistNotFound, task.TodoListID)
	}
	for _, other := range s.Tasks {
		if taskIndex(other, task.ID) >= 0 {
			return s, fmt.Errorf("%w: %q", ErrDuplicateTask, task.ID)
		}
	}

	list := make([]api.Task, 0, len(existing)+1)
	list = append(list, task)
	list = append(list, existing...)

	tasks := cloneTaskIndex(s.Tasks)
	tasks[task.TodoListID] = list
	s.Tasks = tasks
	return s, nil
}

func removeTask(s State, todolistID, taskID string) State {
	existing, ok := s.Tasks[todolistID]
	if !ok {
		return s
	}
	index := taskIndex(existing, taskID)
	if index < 0 {
		return s
	}
	tasks := cloneTaskIndex(s.Tasks)
	tasks[todolistID] = slices.Delete(slices.Clone(existing), index, index+1)
	s.Tasks = tasks
	return s
}

func updateTask(s State, todolistID, taskID string, model UpdateTaskModel) State {
	existing, ok := s.Tasks[todolistID]
	if !ok {
		return s
	}
	index := taskIndex(existing, taskID)
	if index < 0 {
		return s
	}
	list := slices.Clone(existing)
	list[index] = model.Apply(list[index])

	tasks := cloneTaskIndex(s.Tasks)
	tasks[todolistID] = list
	s.Tasks = tasks
	return s
}

// cloneTaskIndex copies the map only; task slices are replaced, never
// modified in place, so sharing them is safe.
func cloneTaskIndex(tasks map[string][]api.Task) map[string][]api.Task {
	cloned := make(map[string][]api.Task, len(tasks)+1)
	for id, list := range tasks {
		cloned[id] = list
	}
	return cloned
}
