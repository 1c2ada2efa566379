package middleware

import (
	"context"
	"testing"
)

func TestWithIdentity_SetsAllValues(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: 4, Username: "ada", Email: "ada@example.com"})

	id, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("IdentityFromContext should return true")
	}
	if id.UserID != 4 || id.Username != "ada" || id.Email != "ada@example.com" {
		t.Errorf("identity = %+v", id)
	}
	userID, ok := UserID(ctx)
	if !ok || userID != 4 {
		t.Errorf("UserID = %d, %v; want 4, true", userID, ok)
	}
}

func TestUserID_ReturnsFalseWhenNotSet(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Error("UserID should return false when not set")
	}
	if _, ok := UserID(WithIdentity(context.Background(), Identity{})); ok {
		t.Error("UserID should return false for a zero id")
	}
}

func TestClientIP(t *testing.T) {
	if got := ClientIP(context.Background()); got != "unknown" {
		t.Errorf("ClientIP = %q, want %q", got, "unknown")
	}
	if got := ClientIP(WithClientIP(context.Background(), "10.1.1.1")); got != "10.1.1.1" {
		t.Errorf("ClientIP = %q, want %q", got, "10.1.1.1")
	}
}
