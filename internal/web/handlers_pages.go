package web

import (
	"net/http"

	"github.com/emiliopalmerini/nexa/internal/ports"
	"github.com/emiliopalmerini/nexa/internal/session"
	"github.com/emiliopalmerini/nexa/internal/shared/middleware"
	"github.com/emiliopalmerini/nexa/internal/web/templates"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)

	own, err := s.interviews.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to list interviews", "user_id", user.ID, "error", err)
		http.Error(w, "failed to load interviews", http.StatusInternalServerError)
		return
	}
	latest, err := s.interviews.ListLatest(ctx, ports.ListLatestOptions{
		ExcludeUserID: user.ID,
		Limit:         s.latestLimit,
	})
	if err != nil {
		s.logger.Error("failed to list latest interviews", "error", err)
		http.Error(w, "failed to load interviews", http.StatusInternalServerError)
		return
	}

	s.render(w, r, templates.DashboardPage(templates.Dashboard{
		UserName: user.Name,
		Own:      s.buildCards(ctx, own, user.ID),
		Latest:   s.buildCards(ctx, latest, user.ID),
	}))
}

func (s *Server) handleGeneratePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	s.render(w, r, templates.CallPage(templates.SessionPage{UserName: user.Name}))
}

func (s *Server) handleInterviewPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)

	iv, err := s.interviews.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to load interview", "interview_id", r.PathValue("id"), "error", err)
		http.Error(w, "failed to load interview", http.StatusInternalServerError)
		return
	}
	if iv == nil {
		middleware.Redirect(w, r, session.HomeRoute)
		return
	}

	s.render(w, r, templates.CallPage(templates.SessionPage{
		UserName:    user.Name,
		InterviewID: iv.ID,
		Role:        iv.Role,
		Type:        iv.DisplayType(),
		Techstack:   iv.Techstack,
		Questions:   len(iv.Questions),
	}))
}

func (s *Server) handleFeedbackPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	id := r.PathValue("id")

	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load interview", "interview_id", id, "error", err)
		http.Error(w, "failed to load interview", http.StatusInternalServerError)
		return
	}
	if iv == nil {
		middleware.Redirect(w, r, session.HomeRoute)
		return
	}

	fb, err := s.feedback.GetByInterview(ctx, id, user.ID)
	if err != nil {
		s.logger.Error("failed to load feedback", "interview_id", id, "error", err)
		http.Error(w, "failed to load feedback", http.StatusInternalServerError)
		return
	}

	s.render(w, r, templates.FeedbackView(feedbackPage(iv, fb)))
}
