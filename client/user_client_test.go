package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"teampulse/apperrors"
)

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/users/me/profile" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id": 7, "email": "m@example.com", "position": "dev"}`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, nil)
	identity, err := c.GetProfile(context.Background(), "Bearer tok")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if identity.UserID != 7 || identity.Email != "m@example.com" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestGetProfileUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, nil)
	_, err := c.GetProfile(context.Background(), "tok")
	if err == nil {
		t.Fatalf("expected error")
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperrors.Error, got %T", err)
	}
	if appErr.Status != http.StatusUnauthorized {
		t.Fatalf("Status = %d, want 401", appErr.Status)
	}
}

func TestUserExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/users/9/exists" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`true`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, StrictExists)
	exists, err := c.UserExists(context.Background(), 9, "tok")
	if err != nil {
		t.Fatalf("UserExists: %v", err)
	}
	if !exists {
		t.Fatalf("exists = false, want true")
	}
}

func TestUserExistsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`false`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, StrictExists)
	exists, err := c.UserExists(context.Background(), 9, "tok")
	if err != nil {
		t.Fatalf("UserExists: %v", err)
	}
	if exists {
		t.Fatalf("exists = true, want false")
	}
}

// A failing remote existence check is answered by the configured fallback:
// AssumeExists reports the user present, StrictExists surfaces the failure.
func TestUserExistsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assume := NewUserClient(srv.URL, AssumeExists)
	exists, err := assume.UserExists(context.Background(), 9, "tok")
	if err != nil {
		t.Fatalf("AssumeExists should swallow the failure, got %v", err)
	}
	if !exists {
		t.Fatalf("AssumeExists should report the user as existing")
	}

	strict := NewUserClient(srv.URL, StrictExists)
	exists, err = strict.UserExists(context.Background(), 9, "tok")
	if err == nil {
		t.Fatalf("StrictExists should propagate the failure")
	}
	if exists {
		t.Fatalf("StrictExists must not report the user as existing")
	}
}

func TestUserExistsFallbackOnConnectionError(t *testing.T) {
	// A server that is immediately closed yields connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewUserClient(srv.URL, StrictExists)
	if _, err := c.UserExists(context.Background(), 9, "tok"); err == nil {
		t.Fatalf("expected error for unreachable auth service")
	}

	c = NewUserClient(srv.URL, AssumeExists)
	exists, err := c.UserExists(context.Background(), 9, "tok")
	if err != nil || !exists {
		t.Fatalf("AssumeExists on unreachable service: exists=%v err=%v", exists, err)
	}
}
