package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := m.Issue(42, "alice")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	id, err := m.Verify(context.Background(), token)
	if err != nil || id != "42" {
		t.Fatalf("expected identity 42, got %q (%v)", id, err)
	}
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other", time.Hour)
	forged, _ := other.Issue(1, "mallory")

	expiring := NewJWTManager("secret", time.Minute)
	expiring.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := expiring.Issue(1, "bob")

	anonymous, _ := m.Issue(0, "nobody")

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"forged":    forged,
		"expired":   expired,
		"no userId": anonymous,
	} {
		if _, err := m.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
