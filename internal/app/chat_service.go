package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"docintake/internal/ai"
	"docintake/internal/identity"
	"docintake/internal/metrics"
	"docintake/internal/session"
)

type CompletionClient interface {
	StreamComplete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, onChunk func(chunk string) error) (string, error)
}

type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Developer string `json:"developer"`
	MaxTokens int    `json:"max_tokens"`
}

type ChatOptions struct {
	BaseURL      string
	APIKey       string
	SystemPrompt string
	DefaultModel string
	MinTokens    int
	Models       []ModelInfo
}

type ChatService struct {
	sessions session.Store
	client   CompletionClient
	opts     ChatOptions
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      Clock

	// Serializes read-modify-write cycles on one session. An entry lives only while
	// some caller holds or waits for it.
	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type StreamInput struct {
	SessionID string
	Content   string
	// MaxTokens of zero means the model's limit.
	MaxTokens int
}

func NewChatService(
	sessions session.Store,
	client CompletionClient,
	opts ChatOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
	now Clock,
) *ChatService {
	if opts.MinTokens <= 0 {
		opts.MinTokens = 512
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ChatService{
		sessions: sessions,
		client:   client,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		now:      now,
		locks:    make(map[string]*sessionLock),
	}
}

func (s *ChatService) Models() []ModelInfo {
	out := make([]ModelInfo, len(s.opts.Models))
	copy(out, s.opts.Models)
	return out
}

func (s *ChatService) model(id string) (ModelInfo, bool) {
	for _, m := range s.opts.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// StartSession creates the chat context for a freshly resolved profile.
func (s *ChatService) StartSession(ctx context.Context, profile *identity.Profile) (*session.Session, error) {
	if profile == nil || !profile.Authenticated() {
		return nil, ErrProfileIncomplete
	}
	sess := session.New(*profile, s.opts.DefaultModel, s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *ChatService) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

func (s *ChatService) History(ctx context.Context, sessionID string) ([]session.Message, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

// SelectModel switches the session to modelID, clearing the log when the model changes.
func (s *ChatService) SelectModel(ctx context.Context, sessionID, modelID string) (*session.Session, error) {
	if _, ok := s.model(modelID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotAllowed, modelID)
	}

	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.SelectModel(modelID) {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		s.logger.Info("model switched; history cleared", "session_id", sessionID, "model", modelID)
	}
	return sess, nil
}

// AppendUploadNotice records a stored upload in the session log as a user message.
func (s *ChatService) AppendUploadNotice(ctx context.Context, sessionID, filename string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Append(session.RoleUser, UploadNotice(filename, sess.Profile.Organization, sess.Profile.Department))
	return s.sessions.Save(ctx, sess)
}

func UploadNotice(filename, organization, department string) string {
	return fmt.Sprintf("📎 Uploaded file: %s (%s/%s)", filename, organization, department)
}

// Stream appends the user message, streams the completion through onChunk and appends the
// assistant reply. When the completion fails the user message stays and no reply is added.
func (s *ChatService) Stream(ctx context.Context, in StreamInput, onChunk func(chunk string) error) (string, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return "", fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}

	unlock := s.lock(in.SessionID)
	defer unlock()

	sess, err := s.Session(ctx, in.SessionID)
	if err != nil {
		return "", err
	}
	modelInfo, ok := s.model(sess.Model)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrModelNotAllowed, sess.Model)
	}

	sess.Append(session.RoleUser, content)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", err
	}

	cfg := ai.ChatConfig{
		BaseURL:   s.opts.BaseURL,
		APIKey:    s.opts.APIKey,
		Model:     modelInfo.ID,
		MaxTokens: ClampTokens(in.MaxTokens, s.opts.MinTokens, modelInfo.MaxTokens),
	}
	full, err := s.client.StreamComplete(ctx, cfg, s.promptMessages(sess), onChunk)
	if err != nil {
		s.metrics.ObserveCompletion(modelInfo.ID, false)
		s.logger.Error("completion failed", "session_id", sess.ID, "model", modelInfo.ID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrCompletionRequestFailed, err)
	}
	s.metrics.ObserveCompletion(modelInfo.ID, true)

	sess.Append(session.RoleAssistant, full)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", err
	}
	return full, nil
}

func (s *ChatService) promptMessages(sess *session.Session) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(sess.Messages)+1)
	if s.opts.SystemPrompt != "" {
		messages = append(messages, ai.ChatMessage{Role: "system", Content: s.opts.SystemPrompt})
	}
	for _, m := range sess.Messages {
		messages = append(messages, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return messages
}

// ClampTokens bounds requested to [minimum, limit]. Zero or less selects limit.
func ClampTokens(requested, minimum, limit int) int {
	if limit <= 0 {
		return requested
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	if requested < minimum {
		if minimum > limit {
			return limit
		}
		return minimum
	}
	return requested
}

func (s *ChatService) lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.locksMu.Unlock()
	}
}
