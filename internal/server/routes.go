package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"passage/internal/config"
	"passage/internal/gateway"
)

// RegisterRoutes builds the Gin engine with the public auth endpoints and
// the token-gated profile endpoint.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gateway.RequestIDMiddleware())
	r.Use(gateway.LoggingMiddleware())

	origins := strings.Split(config.GetEnvOrDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173"), ",")
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", s.healthHandler)

	api := r.Group("/api/auth")
	{
		api.POST("/register", s.authHandler.Register)
		api.POST("/login", s.authHandler.Login)

		protected := api.Group("")
		protected.Use(gateway.BearerAuthMiddleware(s.tokens, s.authService))
		{
			protected.GET("/profile", s.authHandler.Profile)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	response := make(map[string]interface{})
	response["status"] = "up"

	if s.db != nil {
		response["database"] = s.db.Health(c.Request.Context())
	} else {
		response["database"] = map[string]string{"status": "in-memory"}
	}

	c.JSON(http.StatusOK, response)
}
