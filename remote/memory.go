package remote

import (
	"slices"
	"sync"
	"time"

	"github.com/amonks/todosync/api"
	internalstrings "github.com/amonks/todosync/internal/strings"
)

// MaxTitleLength is the longest todolist or task title the service accepts.
const MaxTitleLength = 100

// rejection is a request the service refuses with resultCode 1.
type rejection struct {
	message string
	field   string
}

func (r *rejection) Error() string {
	return r.message
}

var (
	errTitleRequired    = &rejection{message: "Title is required", field: "title"}
	errTitleTooLong     = &rejection{message: "The Title field has a maximum length of 100 characters.", field: "title"}
	errTodolistNotFound = &rejection{message: "Todolist not found"}
	errTaskNotFound     = &rejection{message: "Task not found"}
	errInvalidStatus    = &rejection{message: "Invalid task status", field: "status"}
	errInvalidPriority  = &rejection{message: "Invalid task priority", field: "priority"}
)

// memory holds the service's data. Lists are kept newest first.
type memory struct {
	mu    sync.Mutex
	now   func() time.Time
	newID func() string

	todolists []api.Todolist
	tasks     map[string][]api.Task
}

func newMemory(now func() time.Time, newID func() string) *memory {
	return &memory{
		now:   now,
		newID: newID,
		tasks: make(map[string][]api.Task),
	}
}

func validateTitle(title string) (string, error) {
	if internalstrings.IsBlank(title) {
		return "", errTitleRequired
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", errTitleTooLong
	}
	return title, nil
}

func (m *memory) listTodolists() []api.Todolist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.todolists)
}

func (m *memory) createTodolist(title string) (api.Todolist, error) {
	title, err := validateTitle(title)
	if err != nil {
		return api.Todolist{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	order := 0
	if len(m.todolists) > 0 {
		order = m.todolists[0].Order - 1
	}
	todolist := api.Todolist{
		ID:        m.newID(),
		Title:     title,
		AddedDate: m.now(),
		Order:     order,
	}
	m.todolists = slices.Insert(m.todolists, 0, todolist)
	m.tasks[todolist.ID] = nil
	return todolist, nil
}

func (m *memory) renameTodolist(id, title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	index := m.todolistIndex(id)
	if index < 0 {
		return errTodolistNotFound
	}
	m.todolists[index].Title = title
	return nil
}

func (m *memory) deleteTodolist(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := m.todolistIndex(id)
	if index < 0 {
		return errTodolistNotFound
	}
	m.todolists = slices.Delete(m.todolists, index, index+1)
	delete(m.tasks, id)
	return nil
}

// listTasks returns one page of tasks and the total count. A count of zero
// returns every task.
func (m *memory) listTasks(todolistID string, count, page int) ([]api.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.tasks[todolistID]
	if !ok {
		return nil, 0, errTodolistNotFound
	}
	total := len(tasks)
	if count <= 0 {
		return slices.Clone(tasks), total, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * count
	if start >= total {
		return []api.Task{}, total, nil
	}
	end := min(start+count, total)
	return slices.Clone(tasks[start:end]), total, nil
}

func (m *memory) createTask(todolistID, title string) (api.Task, error) {
	title, err := validateTitle(title)
	if err != nil {
		return api.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.tasks[todolistID]
	if !ok {
		return api.Task{}, errTodolistNotFound
	}
	order := 0
	if len(tasks) > 0 {
		order = tasks[0].Order - 1
	}
	task := api.Task{
		ID:         m.newID(),
		TodoListID: todolistID,
		Title:      title,
		Status:     api.TaskStatusNew,
		Priority:   api.TaskPriorityLow,
		Order:      order,
		AddedDate:  m.now(),
	}
	m.tasks[todolistID] = slices.Insert(tasks, 0, task)
	return task, nil
}

func (m *memory) updateTask(todolistID, taskID string, model api.UpdateTaskModel) (api.Task, error) {
	if _, err := validateTitle(model.Title); err != nil {
		return api.Task{}, err
	}
	if !model.Status.IsValid() {
		return api.Task{}, errInvalidStatus
	}
	if !model.Priority.IsValid() {
		return api.Task{}, errInvalidPriority
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.tasks[todolistID]
	if !ok {
		return api.Task{}, errTodolistNotFound
	}
	index := slices.IndexFunc(tasks, func(task api.Task) bool { return task.ID == taskID })
	if index < 0 {
		return api.Task{}, errTaskNotFound
	}
	task := tasks[index]
	task.Title = model.Title
	task.Description = model.Description
	task.Status = model.Status
	task.Priority = model.Priority
	task.StartDate = model.StartDate
	task.Deadline = model.Deadline
	tasks[index] = task
	return task, nil
}

func (m *memory) deleteTask(todolistID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.tasks[todolistID]
	if !ok {
		return errTodolistNotFound
	}
	index := slices.IndexFunc(tasks, func(task api.Task) bool { return task.ID == taskID })
	if index < 0 {
		return errTaskNotFound
	}
	m.tasks[todolistID] = slices.Delete(tasks, index, index+1)
	return nil
}

func (m *memory) todolistIndex(id string) int {
	return slices.IndexFunc(m.todolists, func(todolist api.Todolist) bool { return todolist.ID == id })
}
