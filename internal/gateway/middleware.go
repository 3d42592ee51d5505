// Package gateway implements the request gate and the cross-cutting HTTP
// middleware. The bearer-token gate is the sole authorization checkpoint:
// it must run before any protected handler.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"passage/internal/auth"
	"passage/internal/users"
)

const bearerPrefix = "Bearer "

// TokenVerifier verifies a session token and returns the embedded user ID.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// UserLoader resolves a verified user ID to a sanitized user record.
type UserLoader interface {
	GetProfile(ctx context.Context, userID string) (*users.User, error)
}

// BearerAuthMiddleware extracts and verifies the bearer token, loads the
// user and attaches the sanitized record to the request context.
//
// A missing or malformed Authorization header is rejected before any
// token or store access. Verification and lookup failures share one
// generic 401 body so a caller cannot tell which check failed.
func BearerAuthMiddleware(verifier TokenVerifier, loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: missing bearer token",
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: missing bearer token",
			})
			return
		}

		userID, err := verifier.Verify(raw)
		if err != nil {
			slog.Warn("Token verification failed",
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: invalid token",
			})
			return
		}

		user, err := loader.GetProfile(c.Request.Context(), userID)
		if err != nil {
			slog.Warn("Token user no longer exists",
				"user_id", userID,
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: invalid token",
			})
			return
		}

		// Request identity lives for this request only.
		c.Set(auth.UserContextKey, user)
		c.Set("user_id", user.ID)

		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs all requests with structured attributes.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(latency.Milliseconds()),
			"client_ip", c.ClientIP(),
			"response_size", rw.Size(),
		}

		if userID, exists := c.Get("user_id"); exists {
			attrs = append(attrs, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}
