// Package session holds the per-login chat context: the resolved profile, the selected
// model and the ordered message log.
package session

import (
	"errors"
	"time"

	"docintake/internal/identity"
)

var ErrNotFound = errors.New("session not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Session struct {
	ID        string           `json:"id"`
	Profile   identity.Profile `json:"profile"`
	Model     string           `json:"model"`
	Messages  []Message        `json:"messages"`
	CreatedAt time.Time        `json:"created_at"`
}

// New starts an empty session for profile. The session id is the profile's session id.
func New(profile identity.Profile, model string, now time.Time) *Session {
	return &Session{
		ID:        profile.SessionID,
		Profile:   profile,
		Model:     model,
		CreatedAt: now,
	}
}

// SelectModel switches the model and reports whether it changed. Changing models clears the log.
func (s *Session) SelectModel(model string) bool {
	if s.Model == model {
		return false
	}
	s.Model = model
	s.Messages = nil
	return true
}

func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// History returns a copy of the log.
func (s *Session) History() []Message {
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}
