package client

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "nested", "token"))

	if err := store.Save("token-abc"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if token != "token-abc" {
		t.Errorf("Expected token-abc, got %q", token)
	}
}

func TestTokenStore_AbsentMeansAnonymous(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token"))

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token, got %q", token)
	}
}

func TestTokenStore_ClearIdempotent(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token"))

	if err := store.Clear(); err != nil {
		t.Errorf("Clear of absent token should not error, got %v", err)
	}

	if err := store.Save("token-abc"); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token after clear, got %q", token)
	}
}

func TestTokenStore_FileIsPrivate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "token")
	store := NewTokenStore(path)

	if err := store.Save("token-abc"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}
}
