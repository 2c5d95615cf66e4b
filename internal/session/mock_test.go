package session

import (
	"context"
	"sync"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// mockTransport records calls and hands out a buffered event channel.
type mockTransport struct {
	StartFunc func(ctx context.Context, target string, vars map[string]string) (<-chan domain.CallEvent, error)
	StopFunc  func() error

	mu         sync.Mutex
	events     chan domain.CallEvent
	target     string
	vars       map[string]string
	startCalls int
	stopCalls  int
}

func newMockTransport() *mockTransport {
	return &mockTransport{events: make(chan domain.CallEvent, 32)}
}

func (t *mockTransport) Start(ctx context.Context, target string, vars map[string]string) (<-chan domain.CallEvent, error) {
	t.mu.Lock()
	t.startCalls++
	t.target = target
	t.vars = vars
	t.mu.Unlock()
	if t.StartFunc != nil {
		return t.StartFunc(ctx, target, vars)
	}
	return t.events, nil
}

func (t *mockTransport) Stop() error {
	t.mu.Lock()
	t.stopCalls++
	t.mu.Unlock()
	if t.StopFunc != nil {
		return t.StopFunc()
	}
	return nil
}

func (t *mockTransport) stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopCalls
}

// MockFeedbackGenerator counts submissions.
type MockFeedbackGenerator struct {
	SubmitFunc func(ctx context.Context, req ports.FeedbackRequest) (ports.FeedbackResult, error)

	mu    sync.Mutex
	calls []ports.FeedbackRequest
}

func (g *MockFeedbackGenerator) Submit(ctx context.Context, req ports.FeedbackRequest) (ports.FeedbackResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	if g.SubmitFunc != nil {
		return g.SubmitFunc(ctx, req)
	}
	return ports.FeedbackResult{Success: true, FeedbackID: "fb-default"}, nil
}

func (g *MockFeedbackGenerator) Calls() []ports.FeedbackRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ports.FeedbackRequest, len(g.calls))
	copy(out, g.calls)
	return out
}

// MockSessionRepository keeps records in memory.
type MockSessionRepository struct {
	CreateFunc func(ctx context.Context, rec *domain.SessionRecord) error

	mu      sync.Mutex
	records map[string]domain.SessionRecord
	updates int
}

func newMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{records: make(map[string]domain.SessionRecord)}
}

func (r *MockSessionRepository) Create(ctx context.Context, rec *domain.SessionRecord) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, rec); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	return nil
}

func (r *MockSessionRepository) Update(ctx context.Context, rec *domain.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	r.updates++
	return nil
}

func (r *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *MockSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SessionRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			rec := rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

// MockTranscriptStorage keeps transcripts in memory.
type MockTranscriptStorage struct {
	mu    sync.Mutex
	store map[string][]domain.TranscriptEntry
}

func newMockTranscriptStorage() *MockTranscriptStorage {
	return &MockTranscriptStorage{store: make(map[string][]domain.TranscriptEntry)}
}

func (s *MockTranscriptStorage) Store(ctx context.Context, id string, entries []domain.TranscriptEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[id] = entries
	return nil
}

func (s *MockTranscriptStorage) Get(ctx context.Context, id string) ([]domain.TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store[id], nil
}

func (s *MockTranscriptStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, id)
	return nil
}

func (s *MockTranscriptStorage) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store[id]
	return ok, nil
}

func finalMessage(role, text string) domain.CallEvent {
	return domain.CallEvent{
		Type: domain.CallMessage,
		Message: &domain.CallMessagePayload{
			Type:           domain.MessageTypeTranscript,
			Role:           role,
			TranscriptType: domain.TranscriptFinal,
			Transcript:     text,
		},
	}
}

func partialMessage(role, text string) domain.CallEvent {
	ev := finalMessage(role, text)
	ev.Message.TranscriptType = domain.TranscriptPartial
	return ev
}
