package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/emiliopalmerini/nexa/internal/adapters/turso"
	"github.com/emiliopalmerini/nexa/internal/config"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// testDBOverride replaces the configured database in tests.
var testDBOverride *sql.DB

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	DB     *sql.DB
	Config *config.Config
	Logger *slog.Logger

	Users       ports.UserRepository
	Interviews  ports.InterviewRepository
	Feedback    ports.FeedbackRepository
	Sessions    ports.SessionRepository
	Transcripts ports.TranscriptStorage

	ownsDB bool
}

// NewAppContext loads the configuration and connects to the database.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}

	db, owns, err := openDB(ctx)
	if err != nil {
		return nil, err
	}

	app := newAppContext(db, cfg, slog.Default())
	app.ownsDB = owns
	return app, nil
}

func openDB(ctx context.Context) (*sql.DB, bool, error) {
	if testDBOverride != nil {
		return testDBOverride, false, nil
	}
	dbCfg, err := turso.LoadDBConfig()
	if err != nil {
		return nil, false, err
	}
	db, err := turso.NewDB(ctx, dbCfg)
	if err != nil {
		return nil, false, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, true, nil
}

func newAppContext(db *sql.DB, cfg *config.Config, logger *slog.Logger) *AppContext {
	repos := turso.NewRepositories(db)
	return &AppContext{
		DB:          db,
		Config:      cfg,
		Logger:      logger,
		Users:       repos.Users,
		Interviews:  repos.Interviews,
		Feedback:    repos.Feedback,
		Sessions:    repos.Sessions,
		Transcripts: repos.Transcripts,
	}
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	if a.DB != nil && a.ownsDB {
		return a.DB.Close()
	}
	return nil
}
