package users

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testUser(email string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New().String(),
		Name:         "Ann Lee",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		DateOfBirth:  NewDate(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user := testUser("ann@example.com")
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("Expected ID %s, got %s", user.ID, byEmail.ID)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Expected email %s, got %s", user.Email, byID.Email)
	}
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testUser("ann@example.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	err := repo.Create(ctx, testUser("ann@example.com"))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got %v", err)
	}
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, uuid.New().String()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user := testUser("ann@example.com")
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.GetByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestUser_JSONNeverContainsHash(t *testing.T) {
	user := testUser("ann@example.com")

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	body := string(data)
	if strings.Contains(body, "password") || strings.Contains(body, user.PasswordHash) {
		t.Errorf("Serialized user leaks the password hash: %s", body)
	}
	if !strings.Contains(body, `"dob":"1990-01-01"`) {
		t.Errorf("Expected dob in YYYY-MM-DD form, got %s", body)
	}
}

func TestDate_RoundTrip(t *testing.T) {
	parsed, err := ParseDate("1990-01-01")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}

	data, err := json.Marshal(parsed)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `"1990-01-01"` {
		t.Errorf("Expected \"1990-01-01\", got %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !back.Equal(parsed.Time) {
		t.Errorf("Round trip mismatch: %v vs %v", back, parsed)
	}

	if _, err := ParseDate("01/01/1990"); err == nil {
		t.Error("Expected error for wrong date format")
	}
}
