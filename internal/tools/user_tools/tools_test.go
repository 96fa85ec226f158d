package user_tools

import (
	"testing"

	"projectpulse/internal/asana"
)

func TestUserSummary(t *testing.T) {
	s := userSummary(asana.User{ID: "42", Name: "Jane Doe", Email: "jane@example.com"})

	if s["id"] != "42" || s["name"] != "Jane Doe" || s["email"] != "jane@example.com" {
		t.Errorf("unexpected summary: %v", s)
	}
}

func TestUserSummary_OmitsEmptyEmail(t *testing.T) {
	s := userSummary(asana.User{ID: "42", Name: "Service Bot"})

	if _, ok := s["email"]; ok {
		t.Error("expected email to be omitted when empty")
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1); got != "user" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(5); got != "users" {
		t.Errorf("plural(5) = %q", got)
	}
}
