package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

// ManagerDeps wires a Manager. Records, Transcripts and Metrics are optional.
type ManagerDeps struct {
	Targets      Targets
	NewTransport ports.TransportFactory
	Dispatcher   *Dispatcher
	Records      ports.SessionRepository
	Transcripts  ports.TranscriptStorage
	Metrics      ports.MetricsExporter
	Logger       *slog.Logger
}

// Manager owns the live machines, one transport each.
type Manager struct {
	deps   ManagerDeps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	machines map[string]*Machine
}

func NewManager(deps ManagerDeps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		deps:     deps,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		machines: make(map[string]*Machine),
	}
}

// Start creates a new session and opens its call.
func (m *Manager) Start(ctx context.Context, sc domain.SessionContext) (*Machine, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if m.deps.NewTransport == nil {
		return nil, fmt.Errorf("no call transport configured")
	}

	id := uuid.NewString()
	machine := NewMachine(id, sc, m.deps.Targets, m.deps.NewTransport(), m.deps.Dispatcher,
		WithLogger(m.logger),
		WithFinishHook(m.finished),
	)

	if err := machine.Start(ctx); err != nil {
		return nil, err
	}

	// The record must exist before the machine is reachable through Stop.
	if m.deps.Records != nil {
		if err := m.deps.Records.Create(ctx, recordFor(machine, nil)); err != nil {
			m.logger.Warn("failed to record session start", "session_id", id, "error", err)
		}
	}

	m.mu.Lock()
	m.machines[id] = machine
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		machine.Run(m.ctx)
	}()

	return machine, nil
}

// Get returns a live machine.
func (m *Manager) Get(id string) (*Machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	machine, ok := m.machines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return machine, nil
}

// Stop ends a live session and returns its navigation decision.
func (m *Manager) Stop(ctx context.Context, id string) (Navigation, error) {
	machine, err := m.Get(id)
	if err != nil {
		return Navigation{}, err
	}
	if err := machine.Stop(ctx); err != nil {
		return Navigation{}, err
	}
	select {
	case <-machine.Done():
	case <-ctx.Done():
		return Navigation{}, ctx.Err()
	}
	nav, _ := machine.Navigation()
	return nav, nil
}

// Snapshot returns the live view of a session, falling back to the stored
// record once the machine has been released.
func (m *Manager) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	if machine, err := m.Get(id); err == nil {
		return machine.Snapshot(), nil
	}
	if m.deps.Records == nil {
		return Snapshot{}, ErrNotFound
	}

	rec, err := m.deps.Records.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load session: %w", err)
	}
	if rec == nil {
		return Snapshot{}, ErrNotFound
	}

	s := Snapshot{
		ID:     rec.ID,
		UserID: rec.UserID,
		Kind:   rec.Kind,
		State:  rec.State,
	}
	if rec.InterviewID != nil {
		s.InterviewID = *rec.InterviewID
	}
	if rec.Redirect != nil {
		s.Redirect = *rec.Redirect
	}
	if rec.Error != nil {
		s.Error = *rec.Error
	}
	if m.deps.Transcripts != nil {
		if entries, err := m.deps.Transcripts.Get(ctx, id); err == nil {
			s.Transcript = entries
			if n := len(entries); n > 0 {
				s.LastMessage = entries[n-1].Content
			}
		}
	}
	return s, nil
}

// Active counts the sessions that have not finished yet.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.machines)
}

// Shutdown ends every live session, then stops consuming transport events
// and waits for the loops to exit.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	live := make([]*Machine, 0, len(m.machines))
	for _, machine := range m.machines {
		live = append(live, machine)
	}
	m.mu.Unlock()

	for _, machine := range live {
		if err := machine.Stop(ctx); err != nil && !errors.Is(err, ErrInvalidTransition) {
			m.logger.Warn("failed to stop session on shutdown", "session_id", machine.ID(), "error", err)
		}
	}

	m.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) finished(machine *Machine, nav Navigation) {
	m.mu.Lock()
	if m.machines[machine.ID()] == machine {
		delete(m.machines, machine.ID())
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries := machine.Transcript()
	if m.deps.Transcripts != nil {
		if err := m.deps.Transcripts.Store(ctx, machine.ID(), entries); err != nil {
			m.logger.Warn("failed to archive transcript", "session_id", machine.ID(), "error", err)
		}
	}
	if m.deps.Records != nil {
		if err := m.deps.Records.Update(ctx, recordFor(machine, &nav)); err != nil {
			m.logger.Warn("failed to record session end", "session_id", machine.ID(), "error", err)
		}
	}
	if m.deps.Metrics != nil {
		err := m.deps.Metrics.ExportSessionMetrics(ctx, &ports.SessionMetrics{
			SessionID:    machine.ID(),
			Kind:         string(machine.Context().Kind),
			Outcome:      nav.Outcome(),
			EntryCount:   int64(len(entries)),
			DispatchFail: nav.Err != nil,
			StartedAt:    machine.StartedAt(),
			EndedAt:      machine.EndedAt(),
		})
		if err != nil {
			m.logger.Warn("failed to export session metrics", "session_id", machine.ID(), "error", err)
		}
	}
}

func recordFor(machine *Machine, nav *Navigation) *domain.SessionRecord {
	sc := machine.Context()
	rec := &domain.SessionRecord{
		ID:         machine.ID(),
		UserID:     sc.UserID,
		Kind:       sc.Kind,
		State:      machine.State(),
		EntryCount: int64(len(machine.Transcript())),
		StartedAt:  machine.StartedAt(),
	}
	if sc.InterviewID != "" {
		rec.InterviewID = &sc.InterviewID
	}
	if sc.FeedbackID != "" {
		rec.FeedbackID = &sc.FeedbackID
	}
	if ended := machine.EndedAt(); !ended.IsZero() {
		rec.EndedAt = &ended
	}
	if nav != nil {
		rec.Redirect = &nav.Route
		if nav.FeedbackID != "" {
			rec.FeedbackID = &nav.FeedbackID
		}
		if nav.Err != nil {
			msg := nav.Err.Error()
			rec.Error = &msg
		}
	}
	return rec
}
