package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amonks/todosync/api"
	"github.com/amonks/todosync/internal/config"
	"github.com/amonks/todosync/internal/ids"
	"github.com/amonks/todosync/internal/paths"
	"github.com/amonks/todosync/internal/ui"
	"github.com/amonks/todosync/store"
)

// session is the per-invocation wiring: configuration, the remote client
// stack, and a store that starts empty and is filled from the service.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	client  *api.Client
	cached  bool
	store   *store.Store
	closers []func() error
}

func loadConfig() (*config.Config, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

func newLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(log.WarnLevel)
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), cfg.Debug || rootDebug),
		client: api.NewClient(api.ClientOptions{
			BaseURL: cfg.Remote.BaseURL,
			APIKey:  cfg.Remote.APIKey,
			Timeout: cfg.Remote.Timeout,
		}),
	}

	var remote store.Remote = s.client
	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		s.closers = append(s.closers, rdb.Close)
		remote = api.NewCachedClient(s.client, rdb, cfg.Cache.TTL, s.client.BaseURL(), cfg.Remote.APIKey)
		s.cached = true
	}

	s.store = store.New(remote, store.Options{Logger: s.logger, Strict: true})
	return s, nil
}

func (s *session) Close() error {
	var errs []error
	for _, closer := range s.closers {
		errs = append(errs, closer())
	}
	return errors.Join(errs...)
}

// loadTodolist fetches the todolists, resolves arg to one of them, and
// loads its tasks.
func (s *session) loadTodolist(ctx context.Context, arg string) (string, error) {
	if err := s.store.FetchTodolists(ctx); err != nil {
		return "", err
	}
	todolistID, err := s.resolveTodolist(arg)
	if err != nil {
		return "", err
	}
	if err := s.store.FetchTasks(ctx, todolistID); err != nil {
		return "", err
	}
	return todolistID, nil
}

func (s *session) resolveTodolist(arg string) (string, error) {
	todolists := s.store.Todolists()
	candidates := make([]string, 0, len(todolists))
	for _, todolist := range todolists {
		candidates = append(candidates, todolist.ID)
	}
	id, err := ids.Resolve(candidates, arg)
	if err != nil {
		return "", fmt.Errorf("todolist: %w", err)
	}
	return id, nil
}

func (s *session) resolveTask(todolistID, arg string) (string, error) {
	tasks, _ := s.store.Tasks(todolistID)
	candidates := make([]string, 0, len(tasks))
	for _, task := range tasks {
		candidates = append(candidates, task.ID)
	}
	id, err := ids.Resolve(candidates, arg)
	if err != nil {
		return "", fmt.Errorf("task: %w", err)
	}
	return id, nil
}

// prefixHighlighter highlights the shortest unique prefix of each id among all.
func prefixHighlighter(all []string, highlight func(string, int) string) func(string) string {
	prefixLengths := ids.UniquePrefixLengths(all)
	return func(id string) string {
		if id == "" {
			return id
		}
		return highlight(id, ui.PrefixLength(prefixLengths, id))
	}
}
