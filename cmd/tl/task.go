package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/internal/ui"
	"github.com/amonks/todosync/internal/validation"
	"github.com/amonks/todosync/store"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Manage the tasks of a todolist",
}

// task list
var taskListCmd = &cobra.Command{
	Use:   "list <todolist-id>",
	Short: "List the tasks of a todolist",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskList,
}

var (
	taskListFilter string
	taskListJSON   bool
)

// task create
var taskCreateCmd = &cobra.Command{
	Use:   "create <todolist-id> <title>",
	Short: "Create a task",
	Long: `Create a task at the top of a todolist.

The service only accepts a title on creation. When other fields are
given they are applied with a follow-up update.`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskCreate,
}

// task update
var taskUpdateCmd = &cobra.Command{
	Use:   "update <todolist-id> <task-id>",
	Short: "Update a task",
	Long: `Update a task. Only the given fields change; the rest of the task is
sent to the service as it is.`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskUpdate,
}

// task delete
var taskDeleteCmd = &cobra.Command{
	Use:   "delete <todolist-id> <task-id>...",
	Short: "Delete tasks",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskDelete,
}

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <todolist-id> <task-id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskShow,
}

var taskShowJSON bool

// taskFields holds the field flags shared by create and update.
type taskFields struct {
	title       string
	description string
	status      string
	priority    string
	startDate   string
	deadline    string
}

var (
	taskCreateFields taskFields
	taskUpdateFields taskFields
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskCreateCmd, taskUpdateCmd, taskDeleteCmd, taskShowCmd)
	addTaskFieldFlagAliases(taskCreateCmd, taskUpdateCmd)

	taskListCmd.Flags().StringVar(&taskListFilter, "filter", "", "Show only all, active, or completed tasks")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output as JSON")

	addTaskFieldFlags(taskCreateCmd, &taskCreateFields, false)
	addTaskFieldFlags(taskUpdateCmd, &taskUpdateFields, true)

	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")
}

func addTaskFieldFlags(cmd *cobra.Command, fields *taskFields, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&fields.title, "title", "", "New title")
	}
	cmd.Flags().StringVarP(&fields.description, "description", "d", "", "Description (use '-' to read from stdin)")
	cmd.Flags().StringVar(&fields.status, "status", "", "Status (new, in-progress, completed, draft)")
	cmd.Flags().StringVarP(&fields.priority, "priority", "p", "", "Priority (low, normal, high, urgent, later)")
	cmd.Flags().StringVar(&fields.startDate, "start-date", "", "Start date (empty clears it)")
	cmd.Flags().StringVar(&fields.deadline, "deadline", "", "Deadline (empty clears it)")
}

// updateModel turns the flags the user set into a sparse update.
func (fields taskFields) updateModel(cmd *cobra.Command, stdin io.Reader) (store.UpdateTaskModel, error) {
	var model store.UpdateTaskModel
	flags := cmd.Flags()

	if flags.Changed("title") {
		model.Title = store.StringPtr(fields.title)
	}
	if flags.Changed("description") {
		description, err := resolveDescriptionFromStdin(fields.description, stdin)
		if err != nil {
			return model, err
		}
		model.Description = store.StringPtr(description)
	}
	if flags.Changed("status") {
		status, err := api.ParseTaskStatus(fields.status)
		if err != nil {
			return model, err
		}
		model.Status = store.StatusPtr(status)
	}
	if flags.Changed("priority") {
		priority, err := api.ParseTaskPriority(fields.priority)
		if err != nil {
			return model, err
		}
		model.Priority = store.PriorityPtr(priority)
	}
	if flags.Changed("start-date") {
		model.StartDate = store.StringPtr(strings.TrimSpace(fields.startDate))
	}
	if flags.Changed("deadline") {
		model.Deadline = store.StringPtr(strings.TrimSpace(fields.deadline))
	}
	return model, nil
}

func resolveDescriptionFromStdin(description string, reader io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}

	value := strings.TrimSuffix(string(input), "\n")
	value = strings.TrimSuffix(value, "\r")
	return value, nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	var filter store.FilterValue
	if cmd.Flags().Changed("filter") {
		parsed, err := validation.ParseValue(store.ErrInvalidFilter, taskListFilter, store.ValidFilters())
		if err != nil {
			return err
		}
		filter = parsed
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	todolistID, err := s.loadTodolist(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if filter != "" {
		if err := s.store.ChangeFilter(todolistID, filter); err != nil {
			return err
		}
	}
	tasks, err := s.store.VisibleTasks(todolistID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if taskListJSON {
		return encodeJSON(out, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(out, taskEmptyListMessage(filter))
		return nil
	}
	all, _ := s.store.Tasks(todolistID)
	fmt.Fprint(out, formatTaskTable(tasks, taskIDs(all), ui.HighlightID, time.Now()))
	return nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	model, err := taskCreateFields.updateModel(cmd, os.Stdin)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	todolistID, err := s.loadTodolist(ctx, args[0])
	if err != nil {
		return err
	}
	created, err := s.store.CreateTask(ctx, todolistID, args[1])
	if err != nil {
		return err
	}
	if !model.IsEmpty() {
		if err := s.store.UpdateTask(ctx, todolistID, created.ID, model); err != nil {
			return fmt.Errorf("created task %s but could not set its fields: %w", created.ID, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", created.ID, created.Title)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	model, err := taskUpdateFields.updateModel(cmd, os.Stdin)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	todolistID, err := s.loadTodolist(ctx, args[0])
	if err != nil {
		return err
	}
	taskID, err := s.resolveTask(todolistID, args[1])
	if err != nil {
		return err
	}
	if err := s.store.UpdateTask(ctx, todolistID, taskID, model); err != nil {
		return err
	}
	updated, _ := s.store.Task(todolistID, taskID)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", updated.ID, updated.Title)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	todolistID, err := s.loadTodolist(ctx, args[0])
	if err != nil {
		return err
	}
	targets := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		taskID, err := s.resolveTask(todolistID, arg)
		if err != nil {
			return err
		}
		targets = append(targets, taskID)
	}
	for _, taskID := range targets {
		if err := s.store.DeleteTask(ctx, todolistID, taskID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", taskID)
	}
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	todolistID, err := s.loadTodolist(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	items := make([]api.Task, 0, len(args)-1)
	for _, arg := range args[1:] {
		taskID, err := s.resolveTask(todolistID, arg)
		if err != nil {
			return err
		}
		task, _ := s.store.Task(todolistID, taskID)
		items = append(items, task)
	}

	out := cmd.OutOrStdout()
	if taskShowJSON {
		return encodeJSON(out, items)
	}
	all, _ := s.store.Tasks(todolistID)
	highlight := prefixHighlighter(taskIDs(all), ui.HighlightID)
	for i, task := range items {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, formatTaskDetail(task, highlight))
	}
	return nil
}

func taskIDs(tasks []api.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func taskEmptyListMessage(filter store.FilterValue) string {
	if filter == "" || filter == store.FilterAll {
		return "No tasks found."
	}
	return fmt.Sprintf("No %s tasks found.", filter)
}
