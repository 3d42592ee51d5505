package auth

import "passage/internal/users"

// RegisterRequest is the request payload for creating an account.
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DateOfBirth string `json:"dob" binding:"required"`
}

// LoginRequest is the request payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response after successful authentication. The user
// is always sanitized; the token is the bearer credential for subsequent
// requests.
type AuthResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// ProfileResponse wraps the sanitized user for the profile endpoint.
type ProfileResponse struct {
	User *users.User `json:"user"`
}
