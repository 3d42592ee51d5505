// Package config provides environment configuration validation
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// MinSecretLength is the minimum accepted length of the token signing
// secret.
const MinSecretLength = 32

// ValidateEnv validates that all required environment variables are set
func ValidateEnv(requiredVars []string) error {
	var missing []string

	for _, varName := range requiredVars {
		value := os.Getenv(varName)
		if value == "" {
			missing = append(missing, varName)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// TokenSecret returns the token signing secret after checking it meets
// the minimum security requirements.
func TokenSecret() ([]byte, error) {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		return nil, errors.New("TOKEN_SECRET is required")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least %d bytes", MinSecretLength)
	}

	return []byte(secret), nil
}

// GetEnvOrDefault retrieves an environment variable or returns a default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvDuration retrieves a duration environment variable or returns a
// default value
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
