package app

import (
	"context"
	"sync"

	"docintake/internal/ai"
	"docintake/internal/model"
	"docintake/internal/objectstore"
	"docintake/internal/session"
)

type fakeStore struct {
	mu   sync.Mutex
	puts []objectstore.PutInput
	// fail returns the error for a key; nil means the write succeeds.
	fail func(key string) error
}

func (f *fakeStore) Put(_ context.Context, in objectstore.PutInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	if f.fail != nil {
		return f.fail(in.Key)
	}
	return nil
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.puts))
	for _, p := range f.puts {
		out = append(out, p.Key)
	}
	return out
}

type fakePublisher struct {
	mu        sync.Mutex
	published []model.UploadRecord
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, record model.UploadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, record)
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	saveErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*session.Session{}}
}

// Sessions are stored as copies so tests observe only what was saved.
func (f *fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *s
	cp.Messages = s.History()
	return &cp, nil
}

func (f *fakeSessions) Save(_ context.Context, s *session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *s
	cp.Messages = s.History()
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

type fakeCompletion struct {
	chunks   []string
	err      error
	cfg      ai.ChatConfig
	messages []ai.ChatMessage
}

func (f *fakeCompletion) StreamComplete(_ context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	f.cfg = cfg
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	full := ""
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return "", err
		}
		full += c
	}
	return full, nil
}

type fakeRecords struct {
	mu        sync.Mutex
	records   []model.UploadRecord
	completed []string
	listErr   error
}

func (f *fakeRecords) ListByStatus(_ context.Context, status string, _ int) ([]model.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.UploadRecord
	for _, r := range f.records {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) GetByObjectKey(_ context.Context, objectKey string) (*model.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ObjectKey == objectKey {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeRecords) MarkComplete(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, objectKey)
	return nil
}
