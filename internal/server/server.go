// Package server exposes a task store over the HTTP/JSON task API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/models"
)

// TaskStore is the part of the task store the handlers use.
type TaskStore interface {
	Get(id string) (models.Task, error)
	All() []models.Task
	Range(from, to models.Date) []models.Task
	Create(draft models.Task) (models.Task, error)
	Update(id string, patch models.Patch) (models.Task, error)
	Delete(id string) error
	DeleteAndFuture(id string) ([]string, error)
	AddSubtask(taskID, title string) (models.Subtask, error)
	SetSubtaskCompleted(taskID, subtaskID string, completed bool) (models.Subtask, error)
	DeleteSubtask(taskID, subtaskID string) error
	SetRecurrence(id string, rule *models.Recurrence) ([]models.Task, error)
	Move(id string, date models.Date, category models.Category, index int) ([]models.Task, error)
	Rollover() (int, error)
}

// Server is the task API server
type Server struct {
	store  TaskStore
	router *gin.Engine
}

// NewServer creates a server whose routes operate on store.
func NewServer(store TaskStore) *Server {
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		store:  store,
		router: router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/tasks")
	{
		api.GET("", s.handleList)
		api.POST("", s.handleCreate)
		api.POST("/move", s.handleMove)
		api.POST("/rollover", s.handleRollover)

		api.PATCH("/:id", s.handleUpdate)
		api.DELETE("/:id", s.handleDelete)
		api.DELETE("/:id/future", s.handleDeleteFuture)

		api.POST("/:id/subtasks", s.handleAddSubtask)
		api.PATCH("/:id/subtasks/:subtaskId", s.handleUpdateSubtask)
		api.DELETE("/:id/subtasks/:subtaskId", s.handleDeleteSubtask)

		api.PUT("/:id/recurrence", s.handleSetRecurrence)
		api.DELETE("/:id/recurrence", s.handleClearRecurrence)
	}

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}
