// Package users persists user credential records and supports lookup by
// id and email.
package users

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when a create collides with an existing email.
	ErrEmailExists = errors.New("email already registered")
)

// Repository defines the credential store operations used by the auth
// service and the request gate.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
