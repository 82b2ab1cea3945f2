package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskquest/internal/ledger"
	"taskquest/internal/service"
)

// Server is the HTTP API over tasks, completions and the skill tree.
type Server struct {
	tasks  *service.TaskService
	points *service.PointsService
	skills *service.SkillTreeService
	store  ledger.Store
	router *gin.Engine
}

func New(tasks *service.TaskService, points *service.PointsService, skills *service.SkillTreeService, store ledger.Store) *Server {
	router := gin.Default()

	s := &Server{
		tasks:  tasks,
		points: points,
		skills: skills,
		store:  store,
		router: router,
	}

	router.GET("/", s.handleRoot)

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/complete", s.handleCompleteTask)
		api.GET("/tasks/:id/completions", s.handleListCompletions)
		api.PATCH("/completions/:id", s.handleUpdateCompletion)
		api.GET("/skill-tree", s.handleSkillTree)
		api.GET("/points", s.handlePoints)
	}

	return s
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
