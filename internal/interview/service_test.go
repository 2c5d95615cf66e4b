package interview

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

type MockQuestionGenerator struct {
	GenerateFunc func(ctx context.Context, req ports.QuestionRequest) ([]string, error)

	last ports.QuestionRequest
}

func (m *MockQuestionGenerator) Generate(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
	m.last = req
	return m.GenerateFunc(ctx, req)
}

type MockInterviewRepository struct {
	CreateFunc func(ctx context.Context, iv *domain.Interview) error

	created []*domain.Interview
}

func (m *MockInterviewRepository) Create(ctx context.Context, iv *domain.Interview) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, iv); err != nil {
			return err
		}
	}
	m.created = append(m.created, iv)
	return nil
}

func (m *MockInterviewRepository) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	for _, iv := range m.created {
		if iv.ID == id {
			return iv, nil
		}
	}
	return nil, nil
}

func (m *MockInterviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Interview, error) {
	return nil, nil
}

func (m *MockInterviewRepository) ListLatest(ctx context.Context, opts ports.ListLatestOptions) ([]*domain.Interview, error) {
	return nil, nil
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		Type:      "Mixed",
		Role:      "Frontend Developer",
		Level:     "Junior",
		Techstack: "React, TypeScript ,,Next.js",
		Amount:    2,
		UserID:    "user-1",
	}
}

func TestGenerate_StoresFinalizedInterview(t *testing.T) {
	gen := &MockQuestionGenerator{GenerateFunc: func(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
		return []string{"What is JSX?", "Explain hooks."}, nil
	}}
	repo := &MockInterviewRepository{}
	svc := NewService(gen, repo, nil)

	iv, err := svc.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if iv.ID == "" || !iv.Finalized || iv.UserID != "user-1" {
		t.Errorf("interview = %+v", iv)
	}
	if want := []string{"React", "TypeScript", "Next.js"}; !slices.Equal(iv.Techstack, want) {
		t.Errorf("Techstack = %v, want %v", iv.Techstack, want)
	}
	if !slices.Contains(domain.InterviewCovers, iv.CoverImage) {
		t.Errorf("CoverImage = %q, not a known cover", iv.CoverImage)
	}
	if len(iv.Questions) != 2 {
		t.Errorf("Questions = %v", iv.Questions)
	}
	if gen.last.Amount != 2 || gen.last.Role != "Frontend Developer" || len(gen.last.Techstack) != 3 {
		t.Errorf("question request = %+v", gen.last)
	}

	got, err := svc.Get(context.Background(), iv.ID)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	okGen := func(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
		return []string{"q"}, nil
	}

	tests := []struct {
		name      string
		mutate    func(r *GenerateRequest)
		generate  func(ctx context.Context, req ports.QuestionRequest) ([]string, error)
		createErr error
	}{
		{"missing user", func(r *GenerateRequest) { r.UserID = "" }, okGen, nil},
		{"missing role", func(r *GenerateRequest) { r.Role = " " }, okGen, nil},
		{"zero amount", func(r *GenerateRequest) { r.Amount = 0 }, okGen, nil},
		{"too many", func(r *GenerateRequest) { r.Amount = maxQuestions + 1 }, okGen, nil},
		{"generator error", nil, func(ctx context.Context, req ports.QuestionRequest) ([]string, error) {
			return nil, errors.New("model unavailable")
		}, nil},
		{"repository error", nil, okGen, errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			repo := &MockInterviewRepository{}
			if tt.createErr != nil {
				repo.CreateFunc = func(ctx context.Context, iv *domain.Interview) error { return tt.createErr }
			}
			svc := NewService(&MockQuestionGenerator{GenerateFunc: tt.generate}, repo, nil)

			if _, err := svc.Generate(context.Background(), req); err == nil {
				t.Error("Generate() expected error")
			}
			if len(repo.created) != 0 {
				t.Errorf("created = %d, want 0", len(repo.created))
			}
		})
	}
}
