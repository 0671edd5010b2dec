package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/amonks/todosync/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Load everything from the service and report the request status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the app state as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	fetchErr := s.store.FetchAll(cmd.Context())
	state := s.store.Snapshot()

	out := cmd.OutOrStdout()
	if statusJSON {
		if err := encodeJSON(out, state.App); err != nil {
			return err
		}
		return fetchErr
	}
	writeStatus(out, s, state)
	return fetchErr
}

func writeStatus(out io.Writer, s *session, state store.State) {
	cache := "off"
	if s.cached {
		cache = fmt.Sprintf("redis (ttl %s)", s.cfg.Cache.TTL)
	}
	taskCount := 0
	for _, tasks := range state.Tasks {
		taskCount += len(tasks)
	}
	lastError := "-"
	if state.App.Error != nil {
		lastError = *state.App.Error
	}

	fmt.Fprintf(out, "Remote:      %s\n", s.client.BaseURL())
	fmt.Fprintf(out, "Cache:       %s\n", cache)
	fmt.Fprintf(out, "Status:      %s\n", state.App.Status)
	fmt.Fprintf(out, "Initialized: %t\n", state.App.IsInitialized)
	fmt.Fprintf(out, "Todolists:   %d\n", len(state.Todolists))
	fmt.Fprintf(out, "Tasks:       %d\n", taskCount)
	fmt.Fprintf(out, "Last error:  %s\n", lastError)
}
