// Package auth implements the registration, login and profile flows. It
// hashes passwords with bcrypt, persists records through the credential
// store and issues session tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"passage/internal/cache"
	"passage/internal/token"
	"passage/internal/users"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
	// MinNameLength is the minimum accepted display name length.
	MinNameLength = 2
	// ProfileCacheTTL bounds how long a sanitized profile may be served
	// from cache.
	ProfileCacheTTL = 5 * time.Minute
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password. Login must not reveal which of the two failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError reports a user-correctable problem with a single input
// field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result bundles the sanitized user and the issued token returned by
// Register and Login.
type Result struct {
	User  *users.User
	Token string
}

// Service defines the authentication operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Result, error)
	Login(ctx context.Context, email, password string) (*Result, error)
	GetProfile(ctx context.Context, userID string) (*users.User, error)
}

type service struct {
	repo   users.Repository
	tokens *token.Service
	cache  cache.Store
}

// NewService creates an authentication service over the given credential
// store, token service and profile cache.
func NewService(repo users.Repository, tokens *token.Service, cacheStore cache.Store) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
		cache:  cacheStore,
	}
}

// Register validates the input, hashes the password and creates the user
// record, then issues a session token.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	dob, err := validateRegister(req)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &users.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		DateOfBirth:  dob,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailExists) {
			return nil, users.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)

	return &Result{User: user.Sanitized(), Token: signed}, nil
}

// Login verifies the password for the given email and issues a session
// token. Unknown email and wrong password both yield
// ErrInvalidCredentials with no distinguishing detail.
func (s *service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Result{User: user.Sanitized(), Token: signed}, nil
}

// GetProfile returns the sanitized record for an already-verified user ID.
// Hot reads are served from the profile cache; misses fall through to the
// credential store and refill the cache.
func (s *service) GetProfile(ctx context.Context, userID string) (*users.User, error) {
	key := cacheKey(userID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var user users.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
		// Unreadable entry; drop it and reload from the store.
		_ = s.cache.Delete(ctx, key)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	sanitized := user.Sanitized()

	if data, err := json.Marshal(sanitized); err == nil {
		if err := s.cache.Set(ctx, key, string(data), ProfileCacheTTL); err != nil {
			slog.Warn("Failed to cache profile", "user_id", userID, "error", err.Error())
		}
	}

	return sanitized, nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegister applies the field format checks and returns the parsed
// date of birth.
func validateRegister(req RegisterRequest) (users.Date, error) {
	if len(strings.TrimSpace(req.Name)) < MinNameLength {
		return users.Date{}, &ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if !emailPattern.MatchString(normalizeEmail(req.Email)) {
		return users.Date{}, &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if len(req.Password) < MinPasswordLength {
		return users.Date{}, &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}

	dob, err := users.ParseDate(req.DateOfBirth)
	if err != nil {
		return users.Date{}, &ValidationError{Field: "dob", Message: "date of birth must be in YYYY-MM-DD format"}
	}
	if !dob.Before(time.Now()) {
		return users.Date{}, &ValidationError{Field: "dob", Message: "date of birth must be in the past"}
	}

	return dob, nil
}
