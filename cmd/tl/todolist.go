package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/internal/ui"
	"github.com/amonks/todosync/store"
)

var todolistCmd = &cobra.Command{
	Use:     "todolist",
	Aliases: []string{"lists"},
	Short:   "Manage todolists",
}

// todolist list
var todolistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todolists with their task counts",
	Args:  cobra.NoArgs,
	RunE:  runTodolistList,
}

var todolistListJSON bool

// todolist create
var todolistCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a todolist",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodolistCreate,
}

// todolist rename
var todolistRenameCmd = &cobra.Command{
	Use:   "rename <todolist-id> <title>",
	Short: "Rename a todolist",
	Args:  cobra.ExactArgs(2),
	RunE:  runTodolistRename,
}

// todolist delete
var todolistDeleteCmd = &cobra.Command{
	Use:   "delete <todolist-id>...",
	Short: "Delete todolists and all of their tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodolistDelete,
}

func init() {
	rootCmd.AddCommand(todolistCmd)
	todolistCmd.AddCommand(todolistListCmd, todolistCreateCmd, todolistRenameCmd, todolistDeleteCmd)

	todolistListCmd.Flags().BoolVar(&todolistListJSON, "json", false, "Output as JSON")
}

func runTodolistList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.FetchAll(cmd.Context()); err != nil {
		return err
	}
	state := s.store.Snapshot()

	out := cmd.OutOrStdout()
	if todolistListJSON {
		return encodeJSON(out, state.Todolists)
	}
	if len(state.Todolists) == 0 {
		fmt.Fprintln(out, "No todolists found.")
		return nil
	}
	fmt.Fprint(out, formatTodolistTable(state, ui.HighlightID, time.Now()))
	return nil
}

func runTodolistCreate(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	created, err := s.store.CreateTodolist(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created todolist %s: %s\n", created.ID, created.Title)
	return nil
}

func runTodolistRename(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.store.FetchTodolists(ctx); err != nil {
		return err
	}
	id, err := s.resolveTodolist(args[0])
	if err != nil {
		return err
	}
	if err := s.store.RenameTodolist(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed todolist %s: %s\n", id, args[1])
	return nil
}

func runTodolistDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.store.FetchTodolists(ctx); err != nil {
		return err
	}
	targets := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := s.resolveTodolist(arg)
		if err != nil {
			return err
		}
		targets = append(targets, id)
	}
	for _, id := range targets {
		if err := s.store.DeleteTodolist(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted todolist %s\n", id)
	}
	return nil
}

func formatTodolistTable(state store.State, highlight func(string, int) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "TITLE", "OPEN", "DONE", "AGE"}, len(state.Todolists))

	todolistIDs := make([]string, 0, len(state.Todolists))
	for _, todolist := range state.Todolists {
		todolistIDs = append(todolistIDs, todolist.ID)
	}
	highlightID := prefixHighlighter(todolistIDs, highlight)

	for _, todolist := range state.Todolists {
		open, done := 0, 0
		for _, task := range state.Tasks[todolist.ID] {
			if task.Status == api.TaskStatusCompleted {
				done++
			} else {
				open++
			}
		}
		builder.AddRow([]string{
			highlightID(todolist.ID),
			ui.TruncateTableCell(todolist.Title),
			fmt.Sprint(open),
			fmt.Sprint(done),
			ui.FormatTimeAgeShort(todolist.AddedDate, now),
		})
	}

	return builder.String()
}
