package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskquest/internal/service"
)

type taskRequest struct {
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description"`
	Category          string     `json:"category" binding:"required"`
	Priority          int        `json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern string     `json:"recurrence_pattern"`
}

type completeRequest struct {
	Quality *int   `json:"quality"`
	Notes   string `json:"notes"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "taskquest API"})
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), service.TaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Priority:          req.Priority,
		DueDate:           req.DueDate,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": task})
}

func (s *Server) handleGetTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		return
	}
	task, err := s.tasks.GetTask(c.Request.Context(), taskID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		return
	}
	var update service.TaskUpdate
	if err := c.BindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	task, err := s.tasks.UpdateTask(c.Request.Context(), taskID, update)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.tasks.DeleteTask(c.Request.Context(), taskID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		return
	}

	var req completeRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}
	if req.Quality != nil && (*req.Quality < 1 || *req.Quality > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "quality must be between 1 and 5"})
		return
	}

	result, err := s.points.CompleteTask(c.Request.Context(), taskID, req.Quality, req.Notes, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (s *Server) handleListCompletions(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		return
	}
	completions, err := s.points.ListCompletions(c.Request.Context(), taskID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    completions,
		"count":   len(completions),
	})
}

func (s *Server) handleUpdateCompletion(c *gin.Context) {
	completionID, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	completion, err := s.points.UpdateCompletionNotes(c.Request.Context(), completionID, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": completion})
}

func (s *Server) handleSkillTree(c *gin.Context) {
	tree, err := s.skills.Build(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tree})
}

func (s *Server) handlePoints(c *gin.Context) {
	led, err := s.store.Load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": led})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

// fail maps service errors onto status codes: missing rows are the client's
// problem, validation is a bad request, everything else is on us.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
