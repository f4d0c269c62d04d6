package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"faqgraph/backend/internal/chat"
	"faqgraph/backend/internal/rag"
)

type chatRequest struct {
	Text      string `json:"text" binding:"required"`
	SessionID string `json:"session_id"`
	UseRAG    bool   `json:"use_rag"`
	Template  string `json:"template"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := s.orchestrator.Respond(
		c.Request.Context(),
		ownerEntity(currentEmail(c)),
		req.SessionID,
		req.Text,
		chat.Options{UseRAG: req.UseRAG, Template: req.Template},
	)
	if err != nil {
		s.logger.Error("Chat turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.repo.SessionsForOwner(c.Request.Context(), ownerEntity(currentEmail(c)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// handleDeleteSession hard-fails on ownership mismatch: browsing or deleting
// someone else's session is indistinguishable from it not existing
func (s *Server) handleDeleteSession(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session_id"})
		return
	}

	ctx := c.Request.Context()
	owner := ownerEntity(currentEmail(c))

	owns, err := s.repo.OwnsSession(ctx, owner, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return
	}
	if !owns {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := s.repo.ClearSession(ctx, sessionID, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": []string{sessionID}})
}

type strategyRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (s *Server) handleSetStrategy(c *gin.Context) {
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.dispatcher.SetStrategy(rag.StrategyKind(req.Kind)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": req.Kind})
}
