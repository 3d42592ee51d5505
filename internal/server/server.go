// Package server wires the authentication service into an HTTP server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"passage/internal/auth"
	"passage/internal/cache"
	"passage/internal/config"
	"passage/internal/database"
	"passage/internal/token"
	"passage/internal/users"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	port int

	db          database.Service
	tokens      *token.Service
	authService auth.Service
	authHandler *auth.Handler
}

// Config holds server configuration
type Config struct {
	Port         int
	TokenTTL     time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(config.GetEnvOrDefault("PORT", "8080"))

	return &Config{
		Port:         port,
		TokenTTL:     config.GetEnvDuration("TOKEN_TTL", 24*time.Hour),
		ReadTimeout:  config.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  config.GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// NewServer creates and configures a new HTTP server. The credential
// store and the profile cache fall back to in-memory implementations when
// DATABASE_URL or REDIS_ADDR is not configured.
func NewServer() (*http.Server, error) {
	cfg := LoadConfigFromEnv()

	secret, err := config.TokenSecret()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var db database.Service
	var repo users.Repository
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err = database.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repo = users.NewPostgresRepository(db)
		log.Printf("[Server] Database service initialized")
	} else {
		repo = users.NewMemoryRepository()
		log.Printf("[Server] Warning: DATABASE_URL not set, using in-memory credential store")
	}

	var cacheStore cache.Store
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cacheStore = cache.NewRedisStore(redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
		log.Printf("[Server] Redis profile cache initialized: %s", redisAddr)
	} else {
		cacheStore = cache.NewMemoryStore()
		log.Printf("[Server] REDIS_ADDR not set, using in-memory profile cache")
	}

	tokens := token.NewService(token.Config{Secret: secret, TTL: cfg.TokenTTL})
	authService := auth.NewService(repo, tokens, cacheStore)

	appServer := &Server{
		port:        cfg.Port,
		db:          db,
		tokens:      tokens,
		authService: authService,
		authHandler: auth.NewHandler(authService),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           appServer.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	log.Printf("[Server] HTTP server configured on port %d", cfg.Port)
	return server, nil
}
