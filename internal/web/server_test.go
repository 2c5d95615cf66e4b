package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/nexa/internal/adapters/turso"
	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/feedback"
	"github.com/emiliopalmerini/nexa/internal/interview"
	"github.com/emiliopalmerini/nexa/internal/migrate"
	"github.com/emiliopalmerini/nexa/internal/ports"
	"github.com/emiliopalmerini/nexa/internal/session"
	"github.com/emiliopalmerini/nexa/internal/shared/middleware"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := migrate.RunAll(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// fakeTransport hands the test a channel to drive the call with.
type fakeTransport struct {
	events   chan domain.CallEvent
	startErr error

	mu     sync.Mutex
	target string
	vars   map[string]string
}

func (f *fakeTransport) Start(ctx context.Context, target string, vars map[string]string) (<-chan domain.CallEvent, error) {
	f.mu.Lock()
	f.target = target
	f.vars = vars
	f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.events, nil
}

func (f *fakeTransport) Stop() error { return nil }

type MockScorer struct {
	ScoreFunc func(ctx context.Context, transcript string, categories []string) (*domain.Assessment, error)
}

func (m *MockScorer) Score(ctx context.Context, transcript string, categories []string) (*domain.Assessment, error) {
	return m.ScoreFunc(ctx, transcript, categories)
}

type MockQuestionGenerator struct {
	GenerateFunc func(ctx context.Context, req ports.QuestionRequest) ([]string, error)
}

func (m *MockQuestionGenerator) Generate(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
	return m.GenerateFunc(ctx, req)
}

type fixture struct {
	handler http.Handler
	repos   *turso.Repositories
	manager *session.Manager

	scorer    *MockScorer
	questions *MockQuestionGenerator

	mu        sync.Mutex
	startErr  error
	transport *fakeTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	repos := turso.NewRepositories(testDB(t))
	f := &fixture{
		repos: repos,
		scorer: &MockScorer{ScoreFunc: func(ctx context.Context, transcript string, categories []string) (*domain.Assessment, error) {
			return &domain.Assessment{
				TotalScore:      82,
				CategoryScores:  []domain.CategoryScore{{Name: "Clarity", Score: 72, Comment: "Good"}},
				Strengths:       []string{"Concise answers"},
				FinalAssessment: "Strong candidate",
			}, nil
		}},
		questions: &MockQuestionGenerator{GenerateFunc: func(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
			out := make([]string, req.Amount)
			for i := range out {
				out[i] = "Question about " + req.Role
			}
			return out, nil
		}},
	}

	generator := feedback.NewService(f.scorer, repos.Feedback, feedback.WithLogger(logger))
	f.manager = session.NewManager(session.ManagerDeps{
		Targets:      session.Targets{WorkflowID: "wf-1", AssistantID: "asst-1"},
		NewTransport: f.newTransport,
		Dispatcher:   session.NewDispatcher(generator, logger),
		Records:      repos.Sessions,
		Transcripts:  repos.Transcripts,
		Logger:       logger,
	})
	t.Cleanup(func() { _ = f.manager.Shutdown(context.Background()) })

	server := NewServer(Deps{
		Users:      repos.Users,
		Interviews: repos.Interviews,
		Feedback:   repos.Feedback,
		Sessions:   f.manager,
		Generator:  interview.NewService(f.questions, repos.Interviews, logger),
		Logger:     logger,
	})
	f.handler = server.Handler()
	return f
}

func (f *fixture) newTransport() ports.CallTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transport = &fakeTransport{events: make(chan domain.CallEvent, 16), startErr: f.startErr}
	return f.transport
}

func (f *fixture) lastTransport() *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transport
}

func (f *fixture) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "user-1")
	req.Header.Set(middleware.HeaderUserName, "Ada")
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedInterview(t *testing.T, id, userID string) *domain.Interview {
	t.Helper()
	iv := &domain.Interview{
		ID:         id,
		UserID:     userID,
		Role:       "Backend",
		Level:      "Senior",
		Type:       "mixed",
		Techstack:  []string{"Go"},
		Questions:  []string{"What is a goroutine?", "What is a channel?"},
		Finalized:  true,
		CoverImage: "/static/covers/fjord.svg",
		CreatedAt:  time.Date(2025, time.January, 2, 10, 0, 0, 0, time.UTC),
	}
	if err := f.repos.Interviews.Create(context.Background(), iv); err != nil {
		t.Fatalf("failed to seed interview: %v", err)
	}
	return iv
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	return snap
}

func waitForMessage(t *testing.T, f *fixture, id, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := f.manager.Snapshot(context.Background(), id)
		if err == nil && snap.LastMessage == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s never saw message %q", id, want)
}

func finalMessage(role, text string) domain.CallEvent {
	return domain.CallEvent{Type: domain.CallMessage, Message: &domain.CallMessagePayload{
		Type:           domain.MessageTypeTranscript,
		Role:           role,
		TranscriptType: domain.TranscriptFinal,
		Transcript:     text,
	}}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", map[string]string{middleware.HeaderUserID: ""})
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedInterview(t, "own-1", "user-1")
	f.seedInterview(t, "other-1", "user-2")

	err := f.repos.Feedback.Save(ctx, &domain.FeedbackReport{
		ID: "fb-1", InterviewID: "own-1", UserID: "user-1", TotalScore: 77, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed feedback: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`id="interview-own-1"`,
		`id="interview-other-1"`,
		"77/100",
		"---",
		"Mixed",
		"Jan 2, 2025",
		`href="/interview/own-1/feedback"`,
		`href="/interview/other-1"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	user, err := f.repos.Users.GetByID(ctx, "user-1")
	if err != nil || user == nil || user.Name != "Ada" {
		t.Errorf("user was not upserted: %+v, %v", user, err)
	}
}

func TestDashboard_RequiresUser(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/", "", map[string]string{middleware.HeaderUserID: ""})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != middleware.SignInRoute {
		t.Errorf("GET / without user = %d, Location %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestInterviewPage(t *testing.T) {
	f := newFixture(t)
	f.seedInterview(t, "intv-1", "user-2")

	rec := f.do(t, http.MethodGet, "/interview/intv-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /interview/intv-1 = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Backend Interview") || !strings.Contains(body, `value="intv-1"`) {
		t.Errorf("interview page body = %s", body)
	}

	rec = f.do(t, http.MethodGet, "/interview/missing", "", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("unknown interview = %d, Location %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = f.do(t, http.MethodGet, "/interview", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="generate"`) {
		t.Errorf("GET /interview = %d", rec.Code)
	}
}

func TestFeedbackPage(t *testing.T) {
	f := newFixture(t)
	f.seedInterview(t, "intv-1", "user-1")

	rec := f.do(t, http.MethodGet, "/interview/intv-1/feedback", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No feedback has been recorded") {
		t.Errorf("empty feedback page = %d", rec.Code)
	}

	err := f.repos.Feedback.Save(context.Background(), &domain.FeedbackReport{
		ID:              "fb-1",
		InterviewID:     "intv-1",
		UserID:          "user-1",
		TotalScore:      91,
		CategoryScores:  []domain.CategoryScore{{Name: "Clarity", Score: 72, Comment: "Good"}},
		FinalAssessment: "Hire",
		CreatedAt:       time.Date(2025, time.March, 4, 15, 4, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to seed feedback: %v", err)
	}

	rec = f.do(t, http.MethodGet, "/interview/intv-1/feedback", "", nil)
	body := rec.Body.String()
	for _, want := range []string{"band-good", "91</span>/100", "Mar 4, 2025 3:04 PM", "1. Clarity (72/100)", "Hire"} {
		if !strings.Contains(body, want) {
			t.Errorf("feedback page missing %q", want)
		}
	}

	rec = f.do(t, http.MethodGet, "/interview/missing/feedback", "", nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("unknown interview feedback = %d, want redirect", rec.Code)
	}
}

func TestAssessSessionFlow(t *testing.T) {
	f := newFixture(t)
	f.seedInterview(t, "intv-1", "user-2")

	rec := f.do(t, http.MethodPost, "/api/sessions", `{"kind":"assess","interview_id":"intv-1"}`, jsonHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start = %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.State != domain.SessionConnecting || snap.InterviewID != "intv-1" {
		t.Errorf("start snapshot = %+v", snap)
	}

	tr := f.lastTransport()
	tr.mu.Lock()
	target, questions := tr.target, tr.vars["questions"]
	tr.mu.Unlock()
	if target != "asst-1" || questions != "- What is a goroutine?\n- What is a channel?" {
		t.Errorf("transport got target %q questions %q", target, questions)
	}

	tr.events <- domain.CallEvent{Type: domain.CallStarted}
	tr.events <- finalMessage("assistant", "What is a goroutine?")
	tr.events <- finalMessage("user", "A lightweight thread")
	waitForMessage(t, f, snap.ID, "A lightweight thread")

	rec = f.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "", nil)
	if got := decodeSnapshot(t, rec); got.State != domain.SessionActive || len(got.Transcript) != 2 {
		t.Errorf("live snapshot = %+v", got)
	}

	rec = f.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/stop", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop = %d: %s", rec.Code, rec.Body.String())
	}
	var nav navigationResponse
	if err := json.NewDecoder(rec.Body).Decode(&nav); err != nil {
		t.Fatalf("failed to decode navigation: %v", err)
	}
	if nav.Redirect != "/interview/intv-1/feedback" || nav.FeedbackID == "" || nav.Error != "" {
		t.Errorf("navigation = %+v", nav)
	}

	fb, err := f.repos.Feedback.GetByInterview(context.Background(), "intv-1", "user-1")
	if err != nil || fb == nil || fb.TotalScore != 82 || fb.ID != nav.FeedbackID {
		t.Errorf("stored feedback = %+v, %v", fb, err)
	}

	rec = f.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "", nil)
	got := decodeSnapshot(t, rec)
	if got.State != domain.SessionFinished || got.Redirect != nav.Redirect || len(got.Transcript) != 2 {
		t.Errorf("finished snapshot = %+v", got)
	}
}

func TestAssessSession_ReusesFeedbackID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedInterview(t, "intv-1", "user-2")
	if err := f.repos.Feedback.Save(ctx, &domain.FeedbackReport{
		ID: "fb-old", InterviewID: "intv-1", UserID: "user-1", TotalScore: 40, CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("failed to seed feedback: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/api/sessions", `{"kind":"assess","interview_id":"intv-1"}`, jsonHeaders)
	snap := decodeSnapshot(t, rec)
	tr := f.lastTransport()
	tr.events <- finalMessage("user", "Hello")
	waitForMessage(t, f, snap.ID, "Hello")

	rec = f.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/stop", "", nil)
	var nav navigationResponse
	_ = json.NewDecoder(rec.Body).Decode(&nav)
	if nav.FeedbackID != "fb-old" {
		t.Errorf("FeedbackID = %q, want fb-old", nav.FeedbackID)
	}

	fb, _ := f.repos.Feedback.GetByID(ctx, "fb-old")
	if fb == nil || fb.TotalScore != 82 {
		t.Errorf("re-scored feedback = %+v", fb)
	}
}

func TestAssessSession_EmptyTranscriptGoesHome(t *testing.T) {
	f := newFixture(t)
	f.seedInterview(t, "intv-1", "user-2")

	rec := f.do(t, http.MethodPost, "/api/sessions", `{"kind":"assess","interview_id":"intv-1"}`, jsonHeaders)
	snap := decodeSnapshot(t, rec)

	rec = f.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/stop", "", nil)
	var nav navigationResponse
	_ = json.NewDecoder(rec.Body).Decode(&nav)
	if nav.Redirect != "/" || nav.Error == "" {
		t.Errorf("navigation = %+v, want home with error", nav)
	}
}

func TestGenerateSession_RemoteEndGoesHome(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/sessions", `{"kind":"generate"}`, jsonHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start = %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)

	tr := f.lastTransport()
	tr.mu.Lock()
	target, vars := tr.target, tr.vars
	tr.mu.Unlock()
	if target != "wf-1" || vars["username"] != "Ada" || vars["userid"] != "user-1" {
		t.Errorf("transport got target %q vars %v", target, vars)
	}

	tr.events <- domain.CallEvent{Type: domain.CallStarted}
	tr.events <- domain.CallEvent{Type: domain.CallEnded}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = f.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "", map[string]string{"HX-Request": "true"})
		if rec.Header().Get("HX-Redirect") == "/" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never redirected home, last body %s", rec.Body.String())
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = f.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/stop", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("stop after end = %d, want 404", rec.Code)
	}
}

func TestStartSession_HTMXForm(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"kind": {"generate"}}.Encode()

	rec := f.do(t, http.MethodPost, "/api/sessions", form, map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"HX-Request":   "true",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Connecting...") || !strings.Contains(body, "/stop") {
		t.Errorf("panel = %s", body)
	}
}

func TestStartSession_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		body       string
		startErr   error
		wantStatus int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"unknown kind", `{"kind":"quiz"}`, nil, http.StatusBadRequest},
		{"assess without interview", `{"kind":"assess"}`, nil, http.StatusBadRequest},
		{"unknown interview", `{"kind":"assess","interview_id":"missing"}`, nil, http.StatusNotFound},
		{"transport rejects", `{"kind":"generate"}`, errors.New("gateway unavailable"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.mu.Lock()
			f.startErr = tt.startErr
			f.mu.Unlock()

			rec := f.do(t, http.MethodPost, "/api/sessions", tt.body, jsonHeaders)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
	if n := f.manager.Active(); n != 0 {
		t.Errorf("Active() = %d after failed starts, want 0", n)
	}
}

func TestSessionAPI_OtherUser(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/sessions", `{"kind":"generate"}`, jsonHeaders)
	snap := decodeSnapshot(t, rec)

	other := map[string]string{middleware.HeaderUserID: "user-2"}
	if rec := f.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "", other); rec.Code != http.StatusNotFound {
		t.Errorf("get as other user = %d, want 404", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/stop", "", other); rec.Code != http.StatusNotFound {
		t.Errorf("stop as other user = %d, want 404", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/sessions/unknown", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get unknown = %d, want 404", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "", map[string]string{middleware.HeaderUserID: ""}); rec.Code != http.StatusUnauthorized {
		t.Errorf("get without user = %d, want 401", rec.Code)
	}
}

func TestGenerateCallback(t *testing.T) {
	f := newFixture(t)

	body := `{"type":"Technical","role":"Frontend","level":"Junior","techstack":"React, TypeScript","amount":3,"userid":"user-9"}`
	rec := f.do(t, http.MethodPost, "/api/vapi/generate", body, map[string]string{middleware.HeaderUserID: ""})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("generate = %d: %s", rec.Code, rec.Body.String())
	}

	list, err := f.repos.Interviews.ListByUser(context.Background(), "user-9")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser() = %v, %v", list, err)
	}
	iv := list[0]
	if !iv.Finalized || len(iv.Questions) != 3 || len(iv.Techstack) != 2 || iv.Techstack[1] != "TypeScript" {
		t.Errorf("stored interview = %+v", iv)
	}
}

func TestGenerateCallback_Errors(t *testing.T) {
	f := newFixture(t)
	f.questions.GenerateFunc = func(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
		return nil, errors.New("model unavailable")
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing userid", `{"role":"Backend","amount":3}`, http.StatusBadRequest},
		{"generator fails", `{"role":"Backend","amount":3,"userid":"user-9"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/vapi/generate", tt.body, nil)
			if rec.Code != tt.wantStatus || !strings.Contains(rec.Body.String(), `"success":false`) {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestStaticCovers(t *testing.T) {
	f := newFixture(t)
	for _, cover := range domain.InterviewCovers {
		rec := f.do(t, http.MethodGet, cover, "", map[string]string{middleware.HeaderUserID: ""})
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", cover, rec.Code)
		}
	}
}
