package app

import (
	"context"
	"time"

	"docintake/internal/identity"
	"docintake/internal/pkg/jwtutil"
	"docintake/internal/session"
)

type AuthService struct {
	resolver      identity.Resolver
	chat          *ChatService
	jwtSecret     string
	jwtIssuer     string
	jwtExpiration time.Duration
}

type AuthResult struct {
	Token   string           `json:"token"`
	Profile identity.Profile `json:"profile"`
	Model   string           `json:"model"`
}

func NewAuthService(resolver identity.Resolver, chat *ChatService, jwtSecret, jwtIssuer string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		resolver:      resolver,
		chat:          chat,
		jwtSecret:     jwtSecret,
		jwtIssuer:     jwtIssuer,
		jwtExpiration: jwtExpiration,
	}
}

// Login resolves the profile, opens a fresh session and issues a token bound to it.
func (s *AuthService) Login(ctx context.Context, input identity.Input) (*AuthResult, error) {
	profile, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	sess, err := s.chat.StartSession(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtIssuer, s.jwtExpiration, sess.ID, profile.UserID)
	if err != nil {
		_ = s.chat.EndSession(ctx, sess.ID)
		return nil, err
	}
	return &AuthResult{Token: token, Profile: *profile, Model: sess.Model}, nil
}

// Logout discards the session; the token stops working because its session is gone.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.chat.EndSession(ctx, sessionID)
}

func (s *AuthService) Current(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.chat.Session(ctx, sessionID)
}
