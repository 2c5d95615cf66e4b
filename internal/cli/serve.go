package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/nexa/internal/adapters/gemini"
	"github.com/emiliopalmerini/nexa/internal/adapters/otel"
	"github.com/emiliopalmerini/nexa/internal/adapters/storage"
	"github.com/emiliopalmerini/nexa/internal/adapters/vapi"
	"github.com/emiliopalmerini/nexa/internal/feedback"
	"github.com/emiliopalmerini/nexa/internal/interview"
	"github.com/emiliopalmerini/nexa/internal/migrate"
	"github.com/emiliopalmerini/nexa/internal/ports"
	"github.com/emiliopalmerini/nexa/internal/session"
	"github.com/emiliopalmerini/nexa/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview web server",
	Long: `Start the web server that hosts the dashboard, the interview call
pages and the session API.

Examples:
  nexa serve                        # Port from config, default 8080
  nexa serve --port 3000            # Start on port 3000
  nexa serve --transcripts file     # Archive transcripts on disk`,
	RunE: runServe,
}

var (
	servePort        int
	serveMigrate     bool
	serveTranscripts string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply pending migrations before serving")
	serveCmd.Flags().StringVar(&serveTranscripts, "transcripts", "db", "Where finished transcripts are archived: db or file")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	logger := app.Logger
	cfg := app.Config

	if serveMigrate {
		runner, err := migrate.NewRunner(app.DB, logger)
		if err != nil {
			return err
		}
		if _, err := runner.Up(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	transcripts, err := transcriptStore(app)
	if err != nil {
		return err
	}

	metrics, err := otel.NewFromEnv(ctx)
	if err != nil {
		logger.Warn("metrics exporter unavailable, continuing without metrics", "error", err)
		metrics = otel.NewNoOpExporter()
	}

	geminiCfg := gemini.LoadConfig()
	geminiCfg.Model = cfg.Gemini.Model
	model, err := gemini.New(ctx, geminiCfg, logger)
	if err != nil {
		return err
	}

	generator := feedback.NewService(model, app.Feedback,
		feedback.WithCategories(cfg.Feedback.Categories),
		feedback.WithMetrics(metrics),
		feedback.WithLogger(logger),
	)

	gateway := vapi.Config{URL: cfg.Interviewer.GatewayURL, PublicKey: cfg.Interviewer.PublicKey}
	manager := session.NewManager(session.ManagerDeps{
		Targets: session.Targets{
			WorkflowID:  cfg.Interviewer.WorkflowID,
			AssistantID: cfg.Interviewer.AssistantID,
		},
		NewTransport: gateway.Factory(logger),
		Dispatcher:   session.NewDispatcher(generator, logger),
		Records:      app.Sessions,
		Transcripts:  transcripts,
		Metrics:      metrics,
		Logger:       logger,
	})

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	server := web.NewServer(web.Deps{
		Users:       app.Users,
		Interviews:  app.Interviews,
		Feedback:    app.Feedback,
		Sessions:    manager,
		Generator:   interview.NewService(model, app.Interviews, logger),
		Port:        port,
		LatestLimit: cfg.Server.LatestLimit,
		Logger:      logger,
	})

	serveErr := server.Start(ctx)
	logger.Info("shutting down", "active_sessions", manager.Active())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Warn("sessions did not stop in time", "error", err)
	}
	if err := metrics.Close(shutdownCtx); err != nil {
		logger.Warn("failed to flush metrics", "error", err)
	}
	return serveErr
}

func transcriptStore(app *AppContext) (ports.TranscriptStorage, error) {
	switch serveTranscripts {
	case "db", "":
		return app.Transcripts, nil
	case "file":
		store, err := storage.NewTranscriptStorage()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize transcript storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown transcript store %q, want db or file", serveTranscripts)
	}
}
