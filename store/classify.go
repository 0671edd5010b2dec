package store

import (
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FallbackErrorMessage is shown when a failure carries no message of its own.
const FallbackErrorMessage = "Some error occurred"

var (
	// ErrTodolistNotFound is returned when a todolist id is not in the store.
	ErrTodolistNotFound = errors.New("todolist not found")

	// ErrTaskNotFound is returned when a task id is not in the store.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateTodolist is returned when a todolist id is already present.
	ErrDuplicateTodolist = errors.New("todolist already exists")

	// ErrDuplicateTask is returned when a task id is already present.
	ErrDuplicateTask = errors.New("task already exists")

	// ErrMissingID is returned when an entity without a server-assigned id is committed.
	ErrMissingID = errors.New("entity has no id")

	// ErrTaskTodolistMismatch is returned when a task is filed under a todolist it does not belong to.
	ErrTaskTodolistMismatch = errors.New("task belongs to a different todolist")

	// ErrInvalidStatus is returned for an unknown request or entity status.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidFilter is returned for an unknown filter value.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrUnknownMutation is returned when Reduce is given a mutation it does not handle.
	ErrUnknownMutation = errors.New("unknown mutation")

	// ErrInconsistentState is returned when the todolist and task collections diverge.
	ErrInconsistentState = errors.New("todolists and tasks are out of sync")
)

// AppError is a request the service processed and rejected.
type AppError struct {
	ResultCode int
	Messages   []string
}

func (e *AppError) Error() string {
	return appErrorMessage(e.Messages)
}

// NetworkError is a request that never produced a valid service response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return networkErrorMessage(e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func appErrorMessage(messages []string) string {
	if len(messages) > 0 && strings.TrimSpace(messages[0]) != "" {
		return messages[0]
	}
	return FallbackErrorMessage
}

func networkErrorMessage(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return FallbackErrorMessage
	}
	return err.Error()
}

// handleServerAppError records a rejected envelope on the tracker.
func (s *Store) handleServerAppError(op string, resultCode int, messages []string) error {
	appErr := &AppError{ResultCode: resultCode, Messages: append([]string(nil), messages...)}
	s.logger.WithFields(log.Fields{
		"op":          op,
		"result_code": resultCode,
	}).Info(appErr.Error())
	s.fail(appErr.Error())
	return appErr
}

// handleServerNetworkError records a transport failure on the tracker.
func (s *Store) handleServerNetworkError(op string, err error) error {
	netErr := &NetworkError{Err: err}
	s.logger.WithField("op", op).WithError(err).Info("remote call failed")
	s.fail(netErr.Error())
	return netErr
}

// handleClientStateError records a confirmed remote change that could not
// be committed because the local state no longer has its target.
func (s *Store) handleClientStateError(op string, err error) error {
	s.logger.WithField("op", op).WithError(err).Error("client state is out of sync with the service")
	s.fail(err.Error())
	return err
}

func (s *Store) fail(message string) {
	// Message and status change in the same transition.
	if err := s.Dispatch(SetAppError{Error: &message}, SetAppStatus{Status: StatusFailed}); err != nil {
		s.logger.WithError(err).Error("record failure")
	}
}
