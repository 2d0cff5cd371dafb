package utils

import (
	"strings"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
		Confirm  string `validate:"required,eqfield=Password"`
	}

	cases := []struct {
		name string
		in   form
		want string
	}{
		{"valid", form{Email: "a@b.com", Password: "longenough", Confirm: "longenough"}, ""},
		{"missing email", form{Password: "longenough", Confirm: "longenough"}, "email is required"},
		{"bad email", form{Email: "nope", Password: "longenough", Confirm: "longenough"}, "email must be a valid email"},
		{"short password", form{Email: "a@b.com", Password: "short", Confirm: "short"}, "password must be at least 8 characters"},
		{"mismatched confirm", form{Email: "a@b.com", Password: "longenough", Confirm: "different1"}, "confirm must match password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.in)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("ValidateStruct: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidateStructJoinsAllFailures(t *testing.T) {
	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	err := ValidateStruct(form{})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "email is required") || !strings.Contains(msg, "password is required") {
		t.Fatalf("error %q should mention every failing field", msg)
	}
}
