package store

import "github.com/amonks/todosync/api"

// Mutation is a single state transition. The set of variants is closed:
// only the types in this file implement it.
type Mutation interface {
	mutation()
}

// SetAppStatus sets the global request status.
type SetAppStatus struct {
	Status RequestStatus
}

// SetAppError sets or clears (nil) the last user-facing error message.
type SetAppError struct {
	Error *string
}

// SetAppInitialized records whether the initial load has finished.
type SetAppInitialized struct {
	Initialized bool
}

// AddTodolist inserts a confirmed todolist at the head of the collection
// and creates its empty task entry.
type AddTodolist struct {
	Todolist api.Todolist
}

// RemoveTodolist deletes a todolist together with its tasks.
type RemoveTodolist struct {
	ID string
}

// SetTodolists replaces the whole todolist collection and resets the task
// collection to one empty entry per listed todolist.
type SetTodolists struct {
	Todolists []api.Todolist
}

// ChangeTodolistTitle renames a todolist.
type ChangeTodolistTitle struct {
	ID    string
	Title string
}

// ChangeTodolistFilter sets the client-only task filter of a todolist.
type ChangeTodolistFilter struct {
	ID     string
	Filter FilterValue
}

// ChangeTodolistEntityStatus sets the client-only status of a todolist.
type ChangeTodolistEntityStatus struct {
	ID     string
	Status RequestStatus
}

// ClearData drops every todolist and task.
type ClearData struct{}

// SetTasks replaces the tasks of one todolist.
type SetTasks struct {
	TodolistID string
	Tasks      []api.Task
}

// AddTask inserts a confirmed task at the head of its todolist's tasks.
type AddTask struct {
	Task api.Task
}

// RemoveTask deletes a task. Missing tasks are ignored.
type RemoveTask struct {
	TodolistID string
	TaskID     string
}

// UpdateTask merges a sparse model into a task. Missing tasks are ignored.
type UpdateTask struct {
	TodolistID string
	TaskID     string
	Model      UpdateTaskModel
}

func (SetAppStatus) mutation()               {}
func (SetAppError) mutation()                {}
func (SetAppInitialized) mutation()          {}
func (AddTodolist) mutation()                {}
func (RemoveTodolist) mutation()             {}
func (SetTodolists) mutation()               {}
func (ChangeTodolistTitle) mutation()        {}
func (ChangeTodolistFilter) mutation()       {}
func (ChangeTodolistEntityStatus) mutation() {}
func (ClearData) mutation()                  {}
func (SetTasks) mutation()                   {}
func (AddTask) mutation()                    {}
func (RemoveTask) mutation()                 {}
func (UpdateTask) mutation()                 {}
