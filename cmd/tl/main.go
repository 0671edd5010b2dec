// Package main implements the tl CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/amonks/todosync/internal/ui"
)

const errorLineWidth = 80

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorLine(err.Error(), errorLineWidth))
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tl",
	Short:         "Todolists and tasks kept in sync with a remote service",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var rootDebug bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Log requests and state changes to stderr")
}
