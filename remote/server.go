// Package remote is an in-memory implementation of the todolist service's
// REST contract. It backs `tl serve` and end-to-end tests.
package remote

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/amonks/todosync/api"
)

const (
	shutdownTimeout = 5 * time.Second
	maxRequestSize  = 64 * 1024
)

// ServerOptions configures a Server.
type ServerOptions struct {
	// APIKey, when non-empty, must be sent in the API-KEY header.
	APIKey string

	// Logger receives request logs. If nil, output is discarded.
	Logger *log.Logger

	// Now stamps addedDate. Defaults to time.Now in UTC.
	Now func() time.Time

	// NewID assigns entity ids. Defaults to random UUIDs.
	NewID func() string
}

// Server serves the todolist REST contract from memory.
type Server struct {
	apiKey string
	logger *log.Logger
	data   *memory
}

// NewServer creates an empty server.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Server{
		apiKey: opts.APIKey,
		logger: logger,
		data:   newMemory(now, newID),
	}
}

// Handler returns the HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	lists := e.Group("/todo-lists", s.requireAPIKey)
	lists.GET("", s.getTodolists)
	lists.POST("", s.createTodolist)
	lists.PUT("/:todolistId", s.updateTodolist)
	lists.DELETE("/:todolistId", s.deleteTodolist)
	lists.GET("/:todolistId/tasks", s.getTasks)
	lists.POST("/:todolistId/tasks", s.createTask)
	lists.PUT("/:todolistId/tasks/:taskId", s.updateTask)
	lists.DELETE("/:todolistId/tasks/:taskId", s.deleteTask)
	return e
}

// Serve runs the server on addr until it fails or the process is interrupted.
func (s *Server) Serve(addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logger.WithField("addr", addr).Info("serving")

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("server stopped")
			return err
		}
		return nil
	case <-interrupts:
		s.logger.Info("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.apiKey == "" {
			return next(c)
		}
		got := c.Request().Header.Get(api.APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
			return c.JSON(http.StatusUnauthorized, api.Response[api.Empty]{
				ResultCode: api.ResultCodeError,
				Messages:   []string{"API key is missing or invalid"},
			})
		}
		return next(c)
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			if v.Error != nil || v.Status >= http.StatusBadRequest {
				entry.Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		if text, ok := httpErr.Message.(string); ok {
			message = text
		} else {
			message = http.StatusText(status)
		}
	}
	_ = c.JSON(status, api.Response[api.Empty]{ResultCode: api.ResultCodeError, Messages: []string{message}})
}

func (s *Server) getTodolists(c echo.Context) error {
	todolists := s.data.listTodolists()
	if todolists == nil {
		todolists = []api.Todolist{}
	}
	return c.JSON(http.StatusOK, todolists)
}

func (s *Server) createTodolist(c echo.Context) error {
	var request struct {
		Title string `json:"title"`
	}
	if err := decodeBody(c, &request); err != nil {
		return err
	}
	todolist, err := s.data.createTodolist(request.Title)
	if err != nil {
		return reject[api.ItemData[api.Todolist]](c, err)
	}
	return c.JSON(http.StatusOK, success(api.ItemData[api.Todolist]{Item: todolist}))
}

func (s *Server) updateTodolist(c echo.Context) error {
	var request struct {
		Title string `json:"title"`
	}
	if err := decodeBody(c, &request); err != nil {
		return err
	}
	if err := s.data.renameTodolist(c.Param("todolistId"), request.Title); err != nil {
		return reject[api.Empty](c, err)
	}
	return c.JSON(http.StatusOK, success(api.Empty{}))
}

func (s *Server) deleteTodolist(c echo.Context) error {
	if err := s.data.deleteTodolist(c.Param("todolistId")); err != nil {
		return reject[api.Empty](c, err)
	}
	return c.JSON(http.StatusOK, success(api.Empty{}))
}

func (s *Server) getTasks(c echo.Context) error {
	count, err := queryInt(c, "count")
	if err != nil {
		return err
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	tasks, total, err := s.data.listTasks(c.Param("todolistId"), count, page)
	if err != nil {
		message := err.Error()
		return c.JSON(http.StatusOK, api.GetTasksResponse{Items: []api.Task{}, Error: &message})
	}
	if tasks == nil {
		tasks = []api.Task{}
	}
	return c.JSON(http.StatusOK, api.GetTasksResponse{Items: tasks, TotalCount: total})
}

func (s *Server) createTask(c echo.Context) error {
	var request struct {
		Title string `json:"title"`
	}
	if err := decodeBody(c, &request); err != nil {
		return err
	}
	task, err := s.data.createTask(c.Param("todolistId"), request.Title)
	if err != nil {
		return reject[api.ItemData[api.Task]](c, err)
	}
	return c.JSON(http.StatusOK, success(api.ItemData[api.Task]{Item: task}))
}

func (s *Server) updateTask(c echo.Context) error {
	var model api.UpdateTaskModel
	if err := decodeBody(c, &model); err != nil {
		return err
	}
	task, err := s.data.updateTask(c.Param("todolistId"), c.Param("taskId"), model)
	if err != nil {
		return reject[api.ItemData[api.Task]](c, err)
	}
	return c.JSON(http.StatusOK, success(api.ItemData[api.Task]{Item: task}))
}

func (s *Server) deleteTask(c echo.Context) error {
	if err := s.data.deleteTask(c.Param("todolistId"), c.Param("taskId")); err != nil {
		return reject[api.Empty](c, err)
	}
	return c.JSON(http.StatusOK, success(api.Empty{}))
}

func decodeBody(c echo.Context, dest any) error {
	decoder := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, maxRequestSize))
	if err := decoder.Decode(dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return value, nil
}

func success[D any](data D) api.Response[D] {
	return api.Response[D]{ResultCode: api.ResultCodeSuccess, Messages: []string{}, Data: data}
}

// reject writes a resultCode 1 envelope for a refused request. Errors that
// are not refusals are passed to the HTTP error handler.
func reject[D any](c echo.Context, err error) error {
	var refused *rejection
	if !errors.As(err, &refused) {
		return err
	}
	response := api.Response[D]{ResultCode: api.ResultCodeError, Messages: []string{refused.message}}
	if refused.field != "" {
		response.FieldsErrors = []api.FieldError{{Field: refused.field, Error: refused.message}}
	}
	return c.JSON(http.StatusOK, response)
}
