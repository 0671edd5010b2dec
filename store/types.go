// Package store is the synchronized client-side state of todolists and tasks.
//
// All state lives in a single State value owned by a Store. State changes
// only through a closed set of Mutation variants applied by Reduce, one
// batch at a time, so the todolist collection and the per-todolist task
// collections are always updated in the same transition.
//
// The orchestration methods on Store (FetchTodolists, CreateTask,
// UpdateTask, ...) turn a caller's intent into a remote call and commit the
// corresponding mutation only after the service confirms it. Failures are
// classified and recorded on the global request-status tracker instead.
package store

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/amonks/todosync/api"
)

// RequestStatus is the lifecycle of a request: idle → loading →
// {succeeded | failed} → idle.
type RequestStatus string

const (
	StatusIdle      RequestStatus = "idle"
	StatusLoading   RequestStatus = "loading"
	StatusSucceeded RequestStatus = "succeeded"
	StatusFailed    RequestStatus = "failed"
)

// ValidRequestStatuses returns all valid request status values.
func ValidRequestStatuses() []RequestStatus {
	return []RequestStatus{StatusIdle, StatusLoading, StatusSucceeded, StatusFailed}
}

// IsValid returns true if the status is a known value.
func (s RequestStatus) IsValid() bool {
	for _, valid := range ValidRequestStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// FilterValue selects which tasks of a todolist are visible.
type FilterValue string

const (
	FilterAll       FilterValue = "all"
	FilterActive    FilterValue = "active"
	FilterCompleted FilterValue = "completed"
)

// ValidFilters returns all valid filter values.
func ValidFilters() []FilterValue {
	return []FilterValue{FilterAll, FilterActive, FilterCompleted}
}

// IsValid returns true if the filter is a known value.
func (f FilterValue) IsValid() bool {
	for _, valid := range ValidFilters() {
		if f == valid {
			return true
		}
	}
	return false
}

// Todolist is a remote todolist plus client-only UI state.
type Todolist struct {
	api.Todolist

	// Filter is never sent to the service.
	Filter FilterValue `json:"filter"`

	// EntityStatus is loading while a delete for this todolist is in flight.
	EntityStatus RequestStatus `json:"entityStatus"`
}

// App is the global request-status tracker.
type App struct {
	Status RequestStatus `json:"status"`

	// Error is the last user-facing failure message, nil when cleared.
	Error *string `json:"error"`

	// IsInitialized is set once the initial load has finished.
	IsInitialized bool `json:"isInitialized"`
}

// State is the full normalized client state.
type State struct {
	App App `json:"app"`

	// Todolists is ordered most-recent-first.
	Todolists []Todolist `json:"todolists"`

	// Tasks maps a todolist id to its tasks, most-recent-first. Its keys
	// always equal the ids in Todolists.
	Tasks map[string][]api.Task `json:"tasks"`
}

// NewState returns the empty initial state.
func NewState() State {
	return State{
		App:       App{Status: StatusIdle},
		Todolists: []Todolist{},
		Tasks:     map[string][]api.Task{},
	}
}

// Clone returns a deep copy that shares no memory with s.
func (s State) Clone() State {
	clone := State{
		App:       s.App,
		Todolists: slices.Clone(s.Todolists),
		Tasks:     make(map[string][]api.Task, len(s.Tasks)),
	}
	if clone.Todolists == nil {
		clone.Todolists = []Todolist{}
	}
	clone.App.Error = copyString(s.App.Error)
	for id, tasks := range s.Tasks {
		copied := make([]api.Task, len(tasks))
		for i, task := range tasks {
			task.StartDate = copyString(task.StartDate)
			task.Deadline = copyString(task.Deadline)
			copied[i] = task
		}
		clone.Tasks[id] = copied
	}
	return clone
}

// Todolist returns the todolist with the given id.
func (s State) Todolist(id string) (Todolist, bool) {
	index := s.todolistIndex(id)
	if index < 0 {
		return Todolist{}, false
	}
	return s.Todolists[index], true
}

// Task returns a task by todolist and task id.
func (s State) Task(todolistID, taskID string) (api.Task, bool) {
	tasks, ok := s.Tasks[todolistID]
	if !ok {
		return api.Task{}, false
	}
	index := taskIndex(tasks, taskID)
	if index < 0 {
		return api.Task{}, false
	}
	return tasks[index], true
}

// CheckConsistency reports a violation of the co-maintenance invariant:
// every todolist has a task entry and every task entry has a todolist.
func (s State) CheckConsistency() error {
	ids := make(map[string]struct{}, len(s.Todolists))
	for _, todolist := range s.Todolists {
		if _, dup := ids[todolist.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTodolist, todolist.ID)
		}
		ids[todolist.ID] = struct{}{}
		if _, ok := s.Tasks[todolist.ID]; !ok {
			return fmt.Errorf("%w: todolist %q has no task entry", ErrInconsistentState, todolist.ID)
		}
	}
	var orphans []string
	for id := range s.Tasks {
		if _, ok := ids[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		return fmt.Errorf("%w: task entries without todolist: %v", ErrInconsistentState, orphans)
	}
	return nil
}

func (s State) todolistIndex(id string) int {
	return slices.IndexFunc(s.Todolists, func(t Todolist) bool { return t.ID == id })
}

func taskIndex(tasks []api.Task, taskID string) int {
	return slices.IndexFunc(tasks, func(t api.Task) bool { return t.ID == taskID })
}

// UpdateTaskModel is a sparse task update. Nil fields are left unchanged.
// A blank StartDate or Deadline clears the date.
type UpdateTaskModel struct {
	Title       *string
	Description *string
	Status      *api.TaskStatus
	Priority    *api.TaskPriority
	StartDate   *string
	Deadline    *string
}

// IsEmpty reports whether the model changes nothing.
func (m UpdateTaskModel) IsEmpty() bool {
	return m.Title == nil && m.Description == nil && m.Status == nil &&
		m.Priority == nil && m.StartDate == nil && m.Deadline == nil
}

// Apply returns task with the supplied fields replaced. The task's id and
// owning todolist id are never touched.
func (m UpdateTaskModel) Apply(task api.Task) api.Task {
	if m.Title != nil {
		task.Title = *m.Title
	}
	if m.Description != nil {
		task.Description = *m.Description
	}
	if m.Status != nil {
		task.Status = *m.Status
	}
	if m.Priority != nil {
		task.Priority = *m.Priority
	}
	if m.StartDate != nil {
		task.StartDate = optionalDate(m.StartDate)
	}
	if m.Deadline != nil {
		task.Deadline = optionalDate(m.Deadline)
	}
	return task
}

// optionalDate maps a blank date to nil, which the service stores as null.
func optionalDate(value *string) *string {
	if strings.TrimSpace(*value) == "" {
		return nil
	}
	return copyString(value)
}

// FullModel merges the sparse update into the task's current fields,
// producing the complete payload the update endpoint requires.
func (m UpdateTaskModel) FullModel(task api.Task) api.UpdateTaskModel {
	return api.ModelFromTask(m.Apply(task))
}

// StringPtr returns a pointer to the provided string.
func StringPtr(value string) *string {
	return &value
}

// StatusPtr returns a pointer to the provided task status.
func StatusPtr(status api.TaskStatus) *api.TaskStatus {
	return &status
}

// PriorityPtr returns a pointer to the provided task priority.
func PriorityPtr(priority api.TaskPriority) *api.TaskPriority {
	return &priority
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
