package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/interview"
	"github.com/emiliopalmerini/nexa/internal/session"
	"github.com/emiliopalmerini/nexa/internal/shared/middleware"
	"github.com/emiliopalmerini/nexa/internal/web/templates"
)

type startSessionRequest struct {
	Kind        string `json:"kind"`
	InterviewID string `json:"interview_id"`
}

// decodeStartRequest accepts JSON bodies and htmx form posts.
func decodeStartRequest(r *http.Request) (startSessionRequest, error) {
	var req startSessionRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Kind = r.PostFormValue("kind")
	req.InterviewID = r.PostFormValue("interview_id")
	return req, nil
}

type navigationResponse struct {
	Redirect   string `json:"redirect"`
	FeedbackID string `json:"feedback_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) handleAPIStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)

	req, err := decodeStartRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := domain.ParseSessionKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc := domain.SessionContext{Kind: kind, UserID: user.ID, UserName: user.Name}
	if kind == domain.SessionAssess {
		if req.InterviewID == "" {
			writeError(w, http.StatusBadRequest, "interview_id is required")
			return
		}
		iv, err := s.interviews.GetByID(ctx, req.InterviewID)
		if err != nil {
			s.logger.Error("failed to load interview", "interview_id", req.InterviewID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load interview")
			return
		}
		if iv == nil {
			writeError(w, http.StatusNotFound, "interview not found")
			return
		}
		sc.InterviewID = iv.ID
		sc.Questions = iv.Questions

		// Re-taking an interview overwrites the previous report.
		fb, err := s.feedback.GetByInterview(ctx, iv.ID, user.ID)
		if err != nil {
			s.logger.Warn("failed to load previous feedback", "interview_id", iv.ID, "error", err)
		} else if fb != nil {
			sc.FeedbackID = fb.ID
		}
	}
	if err := sc.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	machine, err := s.sessions.Start(ctx, sc)
	if err != nil {
		s.logger.Error("failed to start session", "user_id", user.ID, "kind", string(kind), "error", err)
		writeError(w, http.StatusBadGateway, "failed to start call")
		return
	}

	snap := machine.Snapshot()
	if middleware.IsHTMX(r) {
		s.render(w, r, templates.CallPanel(panelFrom(snap)))
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleAPIGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)

	snap, err := s.sessions.Snapshot(ctx, r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) || (err == nil && snap.UserID != user.ID) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load session", "session_id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	if middleware.IsHTMX(r) {
		if snap.State.IsTerminal() && snap.Redirect != "" {
			middleware.Redirect(w, r, snap.Redirect)
			return
		}
		s.render(w, r, templates.CallPanel(panelFrom(snap)))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAPIStopSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	id := r.PathValue("id")

	machine, err := s.sessions.Get(id)
	if err != nil || machine.Context().UserID != user.ID {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	nav, err := s.sessions.Stop(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, session.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to stop session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to stop session")
		return
	}

	if middleware.IsHTMX(r) {
		middleware.Redirect(w, r, nav.Route)
		return
	}
	resp := navigationResponse{Redirect: nav.Route, FeedbackID: nav.FeedbackID}
	if nav.Err != nil {
		resp.Error = nav.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAPIGenerate is called by the question-generation workflow once it has
// collected the candidate's answers.
func (s *Server) handleAPIGenerate(w http.ResponseWriter, r *http.Request) {
	var req interview.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	if _, err := s.generator.Generate(r.Context(), req); err != nil {
		s.logger.Error("failed to generate interview", "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
