package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/remote"
	"github.com/julianstephens/tweeklike/internal/validation"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleList(c *gin.Context) {
	from, to := c.Query("date_from"), c.Query("date_to")
	if from == "" || to == "" {
		c.JSON(http.StatusOK, s.store.All())
		return
	}

	fromDate, err := validation.Date(from)
	if err != nil {
		writeError(c, err)
		return
	}
	toDate, err := validation.Date(to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Range(fromDate, toDate))
}

func (s *Server) handleCreate(c *gin.Context) {
	var req remote.CreateRequest
	if !bindStrict(c, &req) {
		return
	}
	if err := validation.Title(req.Title); err != nil {
		writeError(c, err)
		return
	}

	task, err := s.store.Create(models.Task{
		Title:    req.Title,
		Date:     req.Date,
		Category: req.Category,
		IsLabel:  req.IsLabel,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdate(c *gin.Context) {
	// Patch rejects unknown fields itself.
	var patch models.Patch
	if !bindStrict(c, &patch) {
		return
	}

	task, err := s.store.Update(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleDeleteFuture(c *gin.Context) {
	removed, err := s.store.DeleteAndFuture(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, remote.DeleteFutureResponse{Removed: removed})
}

func (s *Server) handleAddSubtask(c *gin.Context) {
	var req remote.SubtaskCreate
	if !bindStrict(c, &req) {
		return
	}

	st, err := s.store.AddSubtask(c.Param("id"), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) handleUpdateSubtask(c *gin.Context) {
	var req remote.SubtaskUpdate
	if !bindStrict(c, &req) {
		return
	}

	st, err := s.store.SetSubtaskCompleted(c.Param("id"), c.Param("subtaskId"), req.Completed)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleDeleteSubtask(c *gin.Context) {
	if err := s.store.DeleteSubtask(c.Param("id"), c.Param("subtaskId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleSetRecurrence responds with the template followed by the instances it
// generated.
func (s *Server) handleSetRecurrence(c *gin.Context) {
	var rule models.Recurrence
	if !bindStrict(c, &rule) {
		return
	}

	id := c.Param("id")
	created, err := s.store.SetRecurrence(id, &rule)
	if err != nil {
		writeError(c, err)
		return
	}
	template, err := s.store.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, append([]models.Task{template}, created...))
}

func (s *Server) handleClearRecurrence(c *gin.Context) {
	if _, err := s.store.SetRecurrence(c.Param("id"), nil); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleMove(c *gin.Context) {
	var req remote.MoveRequest
	if !bindStrict(c, &req) {
		return
	}
	if req.TaskID == "" {
		writeError(c, apperrors.Invalid("taskId is required"))
		return
	}

	bucket, err := s.store.Move(req.TaskID, req.NewDate, req.NewCategory, req.NewIndex)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bucket)
}

func (s *Server) handleRollover(c *gin.Context) {
	n, err := s.store.Rollover()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, remote.RolloverResponse{RolledOver: n})
}

// bindStrict binds a JSON body. Unknown fields are rejected by the decoder
// setting made in NewServer. It writes the 400 response itself and reports
// whether the handler should continue.
func bindStrict(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = apperrors.Invalid("request body is required")
		} else {
			err = apperrors.Invalid("invalid request body: %v", err)
		}
		writeError(c, err)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	}
	_ = c.Error(err)
	c.JSON(status, remote.ErrorResponse{Error: err.Error()})
}
