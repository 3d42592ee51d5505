// Package client holds the client-side session: an API client over the
// auth endpoints, durable token storage, and a single-writer session
// state machine.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"passage/internal/users"
)

// RegisterRequest mirrors the registration payload of the server API.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dob"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthPayload is the server response to register and login.
type AuthPayload struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

type profilePayload struct {
	User *users.User `json:"user"`
}

// APIError is a non-2xx response decoded from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// API talks to the passage auth endpoints. Authentication state is passed
// into each request explicitly; the client holds no default headers.
type API struct {
	baseURL string
	httpc   *http.Client
}

// NewAPI creates an API client for the given base URL.
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Register creates an account and returns the user plus token.
func (a *API) Register(ctx context.Context, req RegisterRequest) (*AuthPayload, error) {
	var payload AuthPayload
	if err := a.do(ctx, http.MethodPost, "/api/auth/register", "", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Login signs in and returns the user plus token.
func (a *API) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	body := loginRequest{Email: email, Password: password}
	if err := a.do(ctx, http.MethodPost, "/api/auth/login", "", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Profile fetches the profile for the given token.
func (a *API) Profile(ctx context.Context, token string) (*users.User, error) {
	var payload profilePayload
	if err := a.do(ctx, http.MethodGet, "/api/auth/profile", token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.User, nil
}

// newRequest builds a request from the current auth state. The token is a
// parameter, never shared client configuration.
func (a *API) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	req, err := a.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
