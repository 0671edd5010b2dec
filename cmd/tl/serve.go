package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amonks/todosync/internal/config"
	"github.com/amonks/todosync/remote"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory todolist service",
	Long: `Run an in-memory implementation of the todolist service.

Point tl at it with TL_ADDR or [remote] base-url. Data is lost when the
server stops.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr   string
	serveAPIKey string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address or port (default from [server] port)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Require this API key from clients")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr, err := config.ResolveListenAddr(cfg, serveAddr)
	if err != nil {
		return err
	}
	apiKey := cfg.Server.APIKey
	if cmd.Flags().Changed("api-key") {
		apiKey = serveAPIKey
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Debug || rootDebug)
	if logger.GetLevel() < log.InfoLevel {
		logger.SetLevel(log.InfoLevel)
	}
	server := remote.NewServer(remote.ServerOptions{APIKey: apiKey, Logger: logger})
	return server.Serve(addr)
}
