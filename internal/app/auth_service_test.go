package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"docintake/internal/identity"
	"docintake/internal/pkg/jwtutil"
)

func TestLoginOpensSessionAndIssuesToken(t *testing.T) {
	sessions := newFakeSessions()
	chat := newChatService(sessions, &fakeCompletion{})
	auth := NewAuthService(identity.NewDirectResolver(), chat, "secret", "docintake", time.Minute)

	res, err := auth.Login(context.Background(), identity.Input{
		Organization: "Acme Inc.",
		Department:   "finance",
		Role:         "Doc_Owner",
		UserID:       "alice",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Profile.Department != "Finance" || res.Model != "m1" {
		t.Fatalf("unexpected result %+v", res)
	}

	claims, err := jwtutil.ParseToken("secret", res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SessionID != res.Profile.SessionID || claims.UserID != "alice" {
		t.Fatalf("claims = %+v", claims)
	}

	current, err := auth.Current(context.Background(), claims.SessionID)
	if err != nil || current.Profile.UserID != "alice" {
		t.Fatalf("Current = %+v, %v", current, err)
	}

	if err := auth.Logout(context.Background(), claims.SessionID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := auth.Current(context.Background(), claims.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestLoginFailureCreatesNoSession(t *testing.T) {
	sessions := newFakeSessions()
	auth := NewAuthService(identity.NewDirectResolver(), newChatService(sessions, &fakeCompletion{}), "secret", "docintake", time.Minute)

	_, err := auth.Login(context.Background(), identity.Input{Organization: "Acme", Department: "Finance", Role: "root", UserID: "alice"})
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("expected no session, got %d", len(sessions.sessions))
	}
}
