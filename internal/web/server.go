package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/emiliopalmerini/nexa/internal/interview"
	"github.com/emiliopalmerini/nexa/internal/ports"
	"github.com/emiliopalmerini/nexa/internal/session"
	"github.com/emiliopalmerini/nexa/internal/shared/middleware"
)

const defaultLatestLimit = 20

//go:embed static/*
var staticFiles embed.FS

// Deps wires a Server.
type Deps struct {
	Users      ports.UserRepository
	Interviews ports.InterviewRepository
	Feedback   ports.FeedbackRepository
	Sessions   *session.Manager
	Generator  *interview.Service

	Port        int
	LatestLimit int
	Logger      *slog.Logger
}

type Server struct {
	router *http.ServeMux
	port   int
	logger *slog.Logger

	users       ports.UserRepository
	interviews  ports.InterviewRepository
	feedback    ports.FeedbackRepository
	sessions    *session.Manager
	generator   *interview.Service
	latestLimit int
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := deps.LatestLimit
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	s := &Server{
		router:      http.NewServeMux(),
		port:        deps.Port,
		logger:      logger,
		users:       deps.Users,
		interviews:  deps.Interviews,
		feedback:    deps.Feedback,
		sessions:    deps.Sessions,
		generator:   deps.Generator,
		latestLimit: limit,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	authed := middleware.Identity(s.users, s.logger)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	s.router.Handle("GET /{$}", authed(http.HandlerFunc(s.handleDashboard)))
	s.router.Handle("GET /interview", authed(http.HandlerFunc(s.handleGeneratePage)))
	s.router.Handle("GET /interview/{id}", authed(http.HandlerFunc(s.handleInterviewPage)))
	s.router.Handle("GET /interview/{id}/feedback", authed(http.HandlerFunc(s.handleFeedbackPage)))

	// Session API (JSON, or fragments for htmx)
	s.router.Handle("POST /api/sessions", authed(http.HandlerFunc(s.handleAPIStartSession)))
	s.router.Handle("GET /api/sessions/{id}", authed(http.HandlerFunc(s.handleAPIGetSession)))
	s.router.Handle("POST /api/sessions/{id}/stop", authed(http.HandlerFunc(s.handleAPIStopSession)))

	// Voice workflow callback, identified by the userid in the body
	s.router.HandleFunc("POST /api/vapi/generate", s.handleAPIGenerate)
}

// Handler returns the router with the request middleware applied.
func (s *Server) Handler() http.Handler {
	return middleware.AccessLog(s.logger)(middleware.HTMX(s.router))
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // stop waits for feedback scoring
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Graceful shutdown
	}
	return err
}
