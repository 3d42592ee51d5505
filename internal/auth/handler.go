package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"passage/internal/users"
)

// UserContextKey is the Gin context key under which the request gate
// attaches the sanitized user.
const UserContextKey = "user"

// Handler handles the authentication HTTP endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new authentication handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /api/auth/register.
// 201 with {user, token}; 400 on validation failure; 409 on duplicate email.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": vErr.Message,
				"field": vErr.Field,
			})
		case errors.Is(err, users.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			slog.Error("Registration failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: result.User, Token: result.Token})
}

// Login handles POST /api/auth/login.
// 200 with {user, token}; 401 on invalid credentials. The 401 body is the
// same for unknown email and wrong password.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		slog.Error("Login failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: result.User, Token: result.Token})
}

// Profile handles GET /api/auth/profile. The request gate has already
// verified the token and attached the sanitized user.
func (h *Handler) Profile(c *gin.Context) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, ok := value.(*users.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid request identity"})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{User: user})
}
