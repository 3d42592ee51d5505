// Package token issues and verifies the signed session tokens carried by
// API clients. Tokens are stateless: the server keeps no record of issued
// tokens and accepts any correctly signed, unexpired token.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification,
// whether malformed, expired, or signed with a different secret. Callers
// must not be able to tell the cases apart.
var ErrInvalidToken = errors.New("invalid or expired token")

// Config holds the signing parameters for a token service. The secret is
// injected at construction and never read from ambient process state.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Claims embeds the registered JWT claims plus the user ID the token was
// issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Service signs and verifies session tokens with a fixed secret and TTL.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service from the given configuration.
func NewService(cfg Config) *Service {
	return &Service{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Issue produces a signed token embedding the user ID, the issue time and
// the expiry. It has no side effects beyond signing.
func (s *Service) Issue(userID string) (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token and returns the
// embedded user ID. A token expiring exactly now is already invalid.
// All failure modes collapse into ErrInvalidToken.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	if claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
