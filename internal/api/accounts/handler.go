// Package accounts implements signup and signin for the user catalog.
// The presence server itself never calls these; clients obtain a token
// here and present it inside the join frame.
package accounts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/auth"
	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

type Handler struct {
	Users  storage.UserStore
	Tokens *auth.TokenService
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Type     string `json:"type"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	role := domain.RoleUser
	if req.Type == "admin" {
		role = domain.RoleAdmin
	}
	user, err := domain.NewUser(req.Username, hashed, role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	if err := h.Users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
		log.Error().Err(err).Str("module", "api.accounts").Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": user.ID})
}

type signinRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Validation failed"})
		return
	}

	user, err := h.Users.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "User not found"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid password"})
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		log.Error().Err(err).Str("module", "api.accounts").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": user.ID, "token": token})
}
