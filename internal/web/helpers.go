package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/session"
	"github.com/emiliopalmerini/nexa/internal/web/templates"
)

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// buildCards attaches the viewer's feedback score to each interview.
func (s *Server) buildCards(ctx context.Context, interviews []*domain.Interview, userID string) []templates.InterviewCard {
	cards := make([]templates.InterviewCard, 0, len(interviews))
	for _, iv := range interviews {
		card := templates.InterviewCard{
			ID:         iv.ID,
			Role:       iv.Role,
			Type:       iv.DisplayType(),
			Techstack:  iv.Techstack,
			CoverImage: iv.CoverImage,
			CreatedAt:  iv.CreatedAt,
		}
		fb, err := s.feedback.GetByInterview(ctx, iv.ID, userID)
		if err != nil {
			s.logger.Warn("failed to load feedback", "interview_id", iv.ID, "error", err)
		} else if fb != nil {
			score := fb.TotalScore
			card.Score = &score
		}
		cards = append(cards, card)
	}
	return cards
}

func panelFrom(snap session.Snapshot) templates.SessionPanel {
	return templates.SessionPanel{
		ID:          snap.ID,
		State:       snap.State,
		Speaking:    snap.Speaking,
		LastMessage: snap.LastMessage,
		Error:       snap.Error,
	}
}

func feedbackPage(iv *domain.Interview, fb *domain.FeedbackReport) templates.FeedbackPage {
	page := templates.FeedbackPage{InterviewID: iv.ID, Role: iv.Role}
	if fb == nil {
		return page
	}
	page.HasFeedback = true
	page.TotalScore = fb.TotalScore
	page.Band = domain.BandFor(fb.TotalScore)
	page.Strengths = fb.Strengths
	page.Areas = fb.AreasForImprovement
	page.FinalAssessment = fb.FinalAssessment
	page.CreatedAt = fb.CreatedAt
	for _, c := range fb.CategoryScores {
		page.Categories = append(page.Categories, templates.CategoryView{Name: c.Name, Score: c.Score, Comment: c.Comment})
	}
	return page
}
