// Package api is the client for the remote todolist service.
//
// Every mutating endpoint answers with a uniform envelope:
//
//	{"resultCode": 0, "messages": [], "data": {...}}
//
// A zero result code means the server accepted the request. Any other code
// is an application-level rejection whose human-readable explanation is in
// Messages. Transport failures (connection errors, non-2xx statuses,
// undecodable bodies) never produce an envelope; they are returned as Go
// errors instead.
package api

import (
	"fmt"
	"time"

	internalstrings "github.com/amonks/todosync/internal/strings"
)

// Result codes returned by the remote service.
const (
	ResultCodeSuccess = 0
	ResultCodeError   = 1
	ResultCodeCaptcha = 10
)

// Todolist is a named container of tasks as returned by the remote service.
type Todolist struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AddedDate time.Time `json:"addedDate"`
	Order     int       `json:"order"`
}

// TaskStatus is the ordinal-encoded state of a task.
type TaskStatus int

const (
	TaskStatusNew TaskStatus = iota
	TaskStatusInProgress
	TaskStatusCompleted
	TaskStatusDraft
)

// ValidTaskStatuses returns all valid status values.
func ValidTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDraft}
}

// IsValid returns true if the status is a known value.
func (s TaskStatus) IsValid() bool {
	return s >= TaskStatusNew && s <= TaskStatusDraft
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusNew:
		return "new"
	case TaskStatusInProgress:
		return "in-progress"
	case TaskStatusCompleted:
		return "completed"
	case TaskStatusDraft:
		return "draft"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseTaskStatus accepts a status name ("in-progress", "in_progress") or its ordinal.
func ParseTaskStatus(value string) (TaskStatus, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	for _, status := range ValidTaskStatuses() {
		if normalized == status.String() || normalized == fmt.Sprint(int(status)) {
			return status, nil
		}
	}
	if normalized == "in_progress" {
		return TaskStatusInProgress, nil
	}
	return 0, fmt.Errorf("invalid task status %q", value)
}

// TaskPriority is the ordinal-encoded importance of a task.
type TaskPriority int

const (
	TaskPriorityLow TaskPriority = iota
	TaskPriorityMiddle
	TaskPriorityHi
	TaskPriorityUrgent
	TaskPriorityLater
)

// ValidTaskPriorities returns all valid priority values.
func ValidTaskPriorities() []TaskPriority {
	return []TaskPriority{TaskPriorityLow, TaskPriorityMiddle, TaskPriorityHi, TaskPriorityUrgent, TaskPriorityLater}
}

// IsValid returns true if the priority is a known value.
func (p TaskPriority) IsValid() bool {
	return p >= TaskPriorityLow && p <= TaskPriorityLater
}

func (p TaskPriority) String() string {
	switch p {
	case TaskPriorityLow:
		return "low"
	case TaskPriorityMiddle:
		return "normal"
	case TaskPriorityHi:
		return "high"
	case TaskPriorityUrgent:
		return "urgent"
	case TaskPriorityLater:
		return "later"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParseTaskPriority accepts a priority name or its ordinal.
func ParseTaskPriority(value string) (TaskPriority, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	for _, priority := range ValidTaskPriorities() {
		if normalized == priority.String() || normalized == fmt.Sprint(int(priority)) {
			return priority, nil
		}
	}
	switch normalized {
	case "middle":
		return TaskPriorityMiddle, nil
	case "hi":
		return TaskPriorityHi, nil
	}
	return 0, fmt.Errorf("invalid task priority %q", value)
}

// Task is a single actionable item owned by exactly one todolist.
type Task struct {
	ID          string       `json:"id"`
	TodoListID  string       `json:"todoListId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   *string      `json:"startDate"`
	Deadline    *string      `json:"deadline"`
	Order       int          `json:"order"`
	AddedDate   time.Time    `json:"addedDate"`
}

// UpdateTaskModel is the full payload the update-task endpoint requires.
// The service replaces every field, so sparse patches must be merged with
// the current task before they are sent.
type UpdateTaskModel struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   *string      `json:"startDate"`
	Deadline    *string      `json:"deadline"`
}

// ModelFromTask returns the update payload that leaves the task unchanged.
func ModelFromTask(task Task) UpdateTaskModel {
	return UpdateTaskModel{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		StartDate:   task.StartDate,
		Deadline:    task.Deadline,
	}
}

// FieldError describes a validation failure for a single request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Response is the uniform result envelope.
type Response[D any] struct {
	ResultCode   int          `json:"resultCode"`
	Messages     []string     `json:"messages"`
	FieldsErrors []FieldError `json:"fieldsErrors,omitempty"`
	Data         D            `json:"data"`
}

// OK reports whether the server accepted the request.
func (r Response[D]) OK() bool {
	return r.ResultCode == ResultCodeSuccess
}

// ItemData is the data payload of create and update responses.
type ItemData[T any] struct {
	Item T `json:"item"`
}

// Empty is the data payload of responses that carry no entity.
type Empty struct{}

// GetTasksResponse is the body of the list-tasks endpoint.
type GetTasksResponse struct {
	Items      []Task  `json:"items"`
	TotalCount int     `json:"totalCount"`
	Error      *string `json:"error"`
}

type titleRequest struct {
	Title string `json:"title"`
}
