package utils

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"teampulse/models"
)

const testSecret = "unit-test-secret"

func testUser() *models.User {
	return &models.User{
		Model: gorm.Model{ID: 42},
		Email: "dev@example.com",
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	access, refresh, err := GenerateJWTToken(testUser(), testSecret, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected both tokens, got access=%q refresh=%q", access, refresh)
	}

	claims, err := ParseJWTToken(access, testSecret)
	if err != nil {
		t.Fatalf("ParseJWTToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "dev@example.com" {
		t.Fatalf("Email = %q", claims.Email)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	access, _, err := GenerateJWTToken(testUser(), testSecret, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	if _, err := ParseJWTToken(access, "a-different-secret"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	access, _, err := GenerateJWTToken(testUser(), testSecret, -1*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	if _, err := ParseJWTToken(access, testSecret); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

// ValidateToken absorbs every failure mode into false; callers treat the local
// check as advisory, so it must never panic or error regardless of input.
func TestValidateToken(t *testing.T) {
	access, _, err := GenerateJWTToken(testUser(), testSecret, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	expired, _, err := GenerateJWTToken(testUser(), testSecret, -1*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid token", access, true},
		{"valid token with bearer prefix", "Bearer " + access, true},
		{"expired token", expired, false},
		{"malformed token", "not.a.jwt", false},
		{"empty string", "", false},
		{"bare bearer prefix", "Bearer ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateToken(tc.token, testSecret); got != tc.want {
				t.Fatalf("ValidateToken(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestStripBearer(t *testing.T) {
	if got := StripBearer("Bearer abc"); got != "abc" {
		t.Fatalf("StripBearer = %q", got)
	}
	if got := StripBearer("abc"); got != "abc" {
		t.Fatalf("StripBearer = %q", got)
	}
	if got := StripBearer("Bearer  abc "); got != "abc" {
		t.Fatalf("StripBearer = %q", got)
	}
}

func TestGenerateActivationCode(t *testing.T) {
	code, err := GenerateActivationCode()
	if err != nil {
		t.Fatalf("GenerateActivationCode: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code length = %d, want 6", len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit", code)
		}
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken()
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	b, err := GenerateSecureToken()
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("token length = %d, want 64", len(a))
	}
	if a == b {
		t.Fatalf("two generated tokens must differ")
	}
}
