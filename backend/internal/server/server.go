package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"faqgraph/backend/internal/chat"
	"faqgraph/backend/internal/graph"
	"faqgraph/backend/internal/ingest"
	"faqgraph/backend/internal/rag"
	"faqgraph/backend/pkg/config"
	"faqgraph/backend/pkg/logger"
)

// Server carries the wired application components behind the HTTP surface
type Server struct {
	repo         *graph.Repository
	orchestrator *chat.Orchestrator
	pipeline     *ingest.Pipeline
	dispatcher   *rag.Dispatcher
	cfg          *config.Config
	logger       *zap.Logger
}

// New creates the HTTP server facade
func New(repo *graph.Repository, orchestrator *chat.Orchestrator, pipeline *ingest.Pipeline, dispatcher *rag.Dispatcher, cfg *config.Config) *Server {
	return &Server{
		repo:         repo,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		dispatcher:   dispatcher,
		cfg:          cfg,
		logger:       logger.Named("http"),
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestLogger(s.logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	user := router.Group("/user")
	{
		user.POST("", s.handleCreateUser)
		user.POST("/token", s.handleLogin)
		user.GET("/me", s.requireAuth(), s.handleCurrentUser)
		user.DELETE("", s.requireAuth(), s.handleDeleteUser)
	}

	files := router.Group("/files", s.requireAuth())
	{
		files.POST("", s.handleUploadFile)
		files.DELETE("/:subject", s.handleDeleteFilesBySubject)
	}

	llm := router.Group("/llm", s.requireAuth())
	{
		llm.POST("", s.handleChat)
		llm.GET("/sessions", s.handleListSessions)
		llm.DELETE("/sessions", s.handleDeleteSession)
		llm.PUT("/strategy", s.handleSetStrategy)
	}

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

// ownerEntity builds the identity entity for the authenticated request
func ownerEntity(email string) graph.Entity {
	return graph.NewEntity(graph.UserSchema, map[string]any{"email": email})
}
