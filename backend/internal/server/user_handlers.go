package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"faqgraph/backend/internal/graph"
	apperrors "faqgraph/backend/pkg/errors"
)

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required,min=8"`
}

type userResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

func userResponseFromProps(props map[string]any) userResponse {
	str := func(key string) string {
		if v, ok := props[key].(string); ok {
			return v
		}
		return ""
	}
	return userResponse{
		Email:    str("email"),
		Username: str("username"),
		FullName: str("full_name"),
	}
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.repo.FindEntity(ctx, ownerEntity(req.Email)); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	} else if !apperrors.IsNotFound(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	entity := graph.NewEntity(graph.UserSchema, map[string]any{
		"email":     req.Email,
		"username":  req.Username,
		"full_name": req.FullName,
		"password":  hash,
	})
	props, err := s.repo.SaveEntity(ctx, entity)
	if err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, userResponseFromProps(props))
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	props, err := s.repo.FindEntity(c.Request.Context(), ownerEntity(req.Username))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	storedHash, _ := props["password"].(string)
	if !verifyPassword(req.Password, storedHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	token, err := s.createAccessToken(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer"})
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	props, err := s.repo.FindEntity(c.Request.Context(), ownerEntity(currentEmail(c)))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, userResponseFromProps(props))
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	email := currentEmail(c)
	if _, err := s.repo.DeleteEntity(c.Request.Context(), ownerEntity(email)); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}
