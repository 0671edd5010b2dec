package store

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/amonks/todosync/api"
	log "github.com/sirupsen/logrus"
)

// Remote is the part of the remote service the store talks to.
// *api.Client and *api.CachedClient both satisfy it.
type Remote interface {
	GetTodolists(ctx context.Context) ([]api.Todolist, error)
	CreateTodolist(ctx context.Context, title string) (api.Response[api.ItemData[api.Todolist]], error)
	DeleteTodolist(ctx context.Context, todolistID string) (api.Response[api.Empty], error)
	UpdateTodolist(ctx context.Context, todolistID, title string) (api.Response[api.Empty], error)
	GetTasks(ctx context.Context, todolistID string) (api.GetTasksResponse, error)
	CreateTask(ctx context.Context, todolistID, title string) (api.Response[api.ItemData[api.Task]], error)
	UpdateTask(ctx context.Context, todolistID, taskID string, model api.UpdateTaskModel) (api.Response[api.ItemData[api.Task]], error)
	DeleteTask(ctx context.Context, todolistID, taskID string) (api.Response[api.Empty], error)
}

// Options configures a Store.
type Options struct {
	// Logger receives diagnostics. If nil, output is discarded.
	Logger *log.Logger

	// Strict verifies the todolist/task invariant after every transition
	// and rejects any batch that would break it.
	Strict bool

	// Initial seeds the store. Defaults to NewState().
	Initial *State
}

// Store owns the client state. Mutations are applied one batch at a time;
// orchestration methods may be called concurrently and only suspend while
// waiting on the remote service.
type Store struct {
	remote Remote
	logger *log.Logger
	strict bool

	mu    sync.Mutex
	state State

	// notifyMu is taken before mu is released so listeners observe
	// transitions in commit order.
	notifyMu       sync.Mutex
	listenerMu     sync.Mutex
	nextListenerID int
	listeners      map[int]func(State)
}

// New creates a store backed by remote.
func New(remote Remote, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}
	state := NewState()
	if opts.Initial != nil {
		state = opts.Initial.Clone()
	}
	return &Store{
		remote:    remote,
		logger:    logger,
		strict:    opts.Strict,
		state:     state,
		listeners: make(map[int]func(State)),
	}
}

// Dispatch applies the mutations as one atomic transition.
// On error the state is left unchanged.
func (s *Store) Dispatch(mutations ...Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	s.mu.Lock()
	next, err := Reduce(s.state, mutations...)
	if err == nil && s.strict {
		if checkErr := next.CheckConsistency(); checkErr != nil {
			err = fmt.Errorf("reject transition: %w", checkErr)
		}
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next

	listeners := s.snapshotListeners()
	if len(listeners) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, listener := range listeners {
		listener(next.Clone())
	}
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive the state after every transition.
// Listeners run synchronously and must not call Dispatch.
// The returned function removes the listener.
func (s *Store) Subscribe(fn func(State)) func() {
	s.listenerMu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			delete(s.listeners, id)
			s.listenerMu.Unlock()
		})
	}
}

func (s *Store) snapshotListeners() []func(State) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	if len(s.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	// Registration order.
	slices.Sort(ids)
	listeners := make([]func(State), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	return listeners
}

func (s *Store) read(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}
