package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"passage/internal/cache"
	"passage/internal/token"
	"passage/internal/users"
)

func newTestService() (Service, *users.MemoryRepository, *token.Service) {
	repo := users.NewMemoryRepository()
	tokens := token.NewService(token.Config{Secret: []byte("test-secret-key"), TTL: time.Hour})
	return NewService(repo, tokens, cache.NewMemoryStore()), repo, tokens
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Name:        "Ann Lee",
		Email:       "ann@example.com",
		Password:    "secret1",
		DateOfBirth: "1990-01-01",
	}
}

func TestRegisterThenLogin_SameUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if registered.Token == "" {
		t.Error("Expected a token from Register")
	}
	if registered.User.PasswordHash != "" {
		t.Error("Expected sanitized user from Register")
	}

	loggedIn, err := svc.Login(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("Expected same user ID, got %s and %s", registered.User.ID, loggedIn.User.ID)
	}
}

func TestRegister_TokenMatchesUser(t *testing.T) {
	svc, _, tokens := newTestService()

	result, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	userID, err := tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("Token decodes to %s, expected %s", userID, result.User.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// Same email must conflict regardless of the other fields.
	second := RegisterRequest{
		Name:        "Another Person",
		Email:       "ann@example.com",
		Password:    "different-password",
		DateOfBirth: "1985-06-15",
	}
	_, err := svc.Register(ctx, second)
	if !errors.Is(err, users.ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	futureDOB := time.Now().AddDate(1, 0, 0).Format("2006-01-02")

	cases := []struct {
		name    string
		mutate  func(*RegisterRequest)
		field   string
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }, "name"},
		{"blank name", func(r *RegisterRequest) { r.Name = "   " }, "name"},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *RegisterRequest) { r.Password = "abc12" }, "password"},
		{"future dob", func(r *RegisterRequest) { r.DateOfBirth = futureDOB }, "dob"},
		{"malformed dob", func(r *RegisterRequest) { r.DateOfBirth = "01/01/1990" }, "dob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(&req)

			_, err := svc.Register(ctx, req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, vErr.Field)
			}
		})
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "ann@example.com", "not-the-password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "secret1")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("Expected identical errors, got %q and %q", wrongPassword, unknownEmail)
	}
}

func TestLogin_EmailNormalization(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := svc.Login(ctx, "  ANN@Example.COM ", "secret1"); err != nil {
		t.Errorf("Expected case-insensitive email login, got %v", err)
	}
}

func TestGetProfile_CacheReadThrough(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	userID := registered.User.ID

	first, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if first.PasswordHash != "" {
		t.Error("Expected sanitized profile")
	}

	// The first read filled the cache, so a deleted user is still served
	// until the entry expires.
	if err := repo.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.GetProfile(ctx, userID); err != nil {
		t.Errorf("Expected cached profile after delete, got %v", err)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetProfile(context.Background(), "no-such-user")
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
