// Package httpapi exposes tasks, name resolution and the confirmation
// dialogue over a JSON REST API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/application"
)

const apiPrefix = "/api/v1"

type Deps struct {
	Assistant *application.AssistantService
	Tasks     *application.TaskService
	Confirm   *application.ConfirmationService
	Sessions  *application.SessionService
	Meetings  *application.MeetingService
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

type Server struct {
	deps   Deps
	logger *zap.Logger
	router *gin.Engine
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), processTime(), requestLogger(logger))

	s := &Server{deps: deps, logger: logger, router: router}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := router.Group(apiPrefix)
	{
		api.GET("/health", s.handleHealth)
		api.POST("/chat", s.handleChat)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.POST("/tasks/bulk", s.handleBulk)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)

		api.GET("/team-members", s.handleTeamMembers)
		api.POST("/resolve", s.handleResolve)

		api.GET("/sessions", s.handleListSessions)
		api.POST("/sessions/cleanup", s.handleCleanup)
		api.GET("/sessions/:id", s.handleGetSession)
		api.DELETE("/sessions/:id", s.handleDeleteSession)
		api.POST("/sessions/:id/reply", s.handleReply)

		api.POST("/meeting/analyze", s.handleAnalyzeMeeting)
		api.POST("/meeting/create-tasks", s.handleCreateSuggested)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
