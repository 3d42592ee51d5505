package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"passage/internal/users"
)

// State enumerates the client session states.
type State int

const (
	// StateAnonymous means no valid token is held.
	StateAnonymous State = iota
	// StateLoading means an authentication operation is in flight.
	StateLoading
	// StateAuthenticated means a token is held and the user is resolved.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	State State
	User  *users.User
	Token string
	Err   string
}

// authAPI is the subset of the API client the session uses.
type authAPI interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthPayload, error)
	Login(ctx context.Context, email, password string) (*AuthPayload, error)
	Profile(ctx context.Context, token string) (*users.User, error)
}

// Session messages. All state transitions flow through the run loop, so
// there is exactly one writer.
type (
	msgLoad struct{ ctx context.Context }
	msgLogin struct {
		ctx             context.Context
		email, password string
	}
	msgRegister struct {
		ctx context.Context
		req RegisterRequest
	}
	msgLogout     struct{}
	msgClearError struct{}
	msgResult     struct {
		epoch    uint64
		user     *users.User
		token    string
		err      error
		fallback string
	}
)

// Session is the client session state machine. Operations are
// asynchronous; their results are applied by a single goroutine. Results
// from operations issued before the last logout carry a stale epoch and
// are dropped without effect.
type Session struct {
	api   authAPI
	store *TokenStore

	msgs chan any
	quit chan struct{}
	done chan struct{}

	notify chan struct{}

	mu   sync.RWMutex
	snap Snapshot

	// epoch is touched only by the run loop.
	epoch uint64
}

// NewSession creates a session over the given API client and token store
// and starts its run loop.
func NewSession(api authAPI, store *TokenStore) *Session {
	s := &Session{
		api:    api,
		store:  store,
		msgs:   make(chan any, 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		notify: make(chan struct{}, 1),
		snap:   Snapshot{State: StateAnonymous},
	}
	go s.run()
	return s
}

// Start loads a previously stored token and verifies it against the
// server. With no stored token the session settles as anonymous.
func (s *Session) Start(ctx context.Context) {
	s.send(msgLoad{ctx: ctx})
}

// Login asynchronously signs in. A later login or a logout supersedes the
// in-flight attempt.
func (s *Session) Login(ctx context.Context, email, password string) {
	s.send(msgLogin{ctx: ctx, email: email, password: password})
}

// Register asynchronously creates an account and signs in.
func (s *Session) Register(ctx context.Context, req RegisterRequest) {
	s.send(msgRegister{ctx: ctx, req: req})
}

// Logout clears the token and returns to anonymous. Results of operations
// still in flight are silently discarded.
func (s *Session) Logout() {
	s.send(msgLogout{})
}

// ClearError dismisses the current error banner, if any.
func (s *Session) ClearError() {
	s.send(msgClearError{})
}

// Current returns the latest session snapshot.
func (s *Session) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Await blocks until the session leaves the loading state and returns the
// settled snapshot.
func (s *Session) Await(ctx context.Context) (Snapshot, error) {
	for {
		snap := s.Current()
		if snap.State != StateLoading {
			return snap, nil
		}
		select {
		case <-s.notify:
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-s.done:
			return snap, errors.New("session closed")
		}
	}
}

// Close stops the run loop.
func (s *Session) Close() {
	close(s.quit)
	<-s.done
}

func (s *Session) send(m any) {
	select {
	case s.msgs <- m:
	case <-s.quit:
	}
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case m := <-s.msgs:
			s.apply(m)
		case <-s.quit:
			return
		}
	}
}

// apply performs one state transition. It runs only on the loop goroutine.
func (s *Session) apply(m any) {
	switch msg := m.(type) {
	case msgLoad:
		token, err := s.store.Load()
		if err != nil {
			slog.Warn("Failed to load stored token", "error", err.Error())
			token = ""
		}
		if token == "" {
			s.setSnapshot(Snapshot{State: StateAnonymous})
			return
		}
		s.setSnapshot(Snapshot{State: StateLoading})
		s.spawnVerify(msg.ctx, token)

	case msgLogin:
		s.setSnapshot(Snapshot{State: StateLoading})
		epoch := s.epoch
		go func() {
			payload, err := s.api.Login(msg.ctx, msg.email, msg.password)
			s.deliver(resultFrom(epoch, payload, err, "login failed"))
		}()

	case msgRegister:
		s.setSnapshot(Snapshot{State: StateLoading})
		epoch := s.epoch
		go func() {
			payload, err := s.api.Register(msg.ctx, msg.req)
			s.deliver(resultFrom(epoch, payload, err, "registration failed"))
		}()

	case msgLogout:
		s.epoch++
		if err := s.store.Clear(); err != nil {
			slog.Warn("Failed to clear stored token", "error", err.Error())
		}
		s.setSnapshot(Snapshot{State: StateAnonymous})

	case msgClearError:
		snap := s.Current()
		snap.Err = ""
		s.setSnapshot(snap)

	case msgResult:
		if msg.epoch != s.epoch {
			// Superseded by a logout; ignore the stale resolution.
			return
		}
		if msg.err != nil {
			if err := s.store.Clear(); err != nil {
				slog.Warn("Failed to clear stored token", "error", err.Error())
			}
			s.setSnapshot(Snapshot{State: StateAnonymous, Err: errMessage(msg.err, msg.fallback)})
			return
		}
		if err := s.store.Save(msg.token); err != nil {
			slog.Warn("Failed to persist token", "error", err.Error())
		}
		s.setSnapshot(Snapshot{
			State: StateAuthenticated,
			User:  msg.user,
			Token: msg.token,
		})
	}
}

// spawnVerify resolves a stored token to a user in the background.
func (s *Session) spawnVerify(ctx context.Context, token string) {
	epoch := s.epoch
	go func() {
		user, err := s.api.Profile(ctx, token)
		s.deliver(msgResult{
			epoch:    epoch,
			user:     user,
			token:    token,
			err:      err,
			fallback: "authentication failed",
		})
	}()
}

func (s *Session) deliver(m msgResult) {
	select {
	case s.msgs <- m:
	case <-s.quit:
	}
}

func (s *Session) setSnapshot(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func resultFrom(epoch uint64, payload *AuthPayload, err error, fallback string) msgResult {
	m := msgResult{epoch: epoch, err: err, fallback: fallback}
	if payload != nil {
		m.user = payload.User
		m.token = payload.Token
	}
	return m
}

// errMessage extracts the server-provided message when present.
func errMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
