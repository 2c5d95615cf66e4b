// Package session drives one interview call from start request to the
// post-call navigation decision.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNotFound          = errors.New("session not found")
)

// Targets names what the transport dials for each session kind.
type Targets struct {
	WorkflowID  string
	AssistantID string
}

// Machine is the lifecycle of a single call: Inactive, Connecting, Active,
// Finished. A finished machine is never reused.
type Machine struct {
	id         string
	sc         domain.SessionContext
	targets    Targets
	transport  ports.CallTransport
	dispatcher *Dispatcher
	logger     *slog.Logger
	onFinish   func(*Machine, Navigation)

	mu         sync.Mutex
	state      domain.SessionState
	speaking   bool
	transcript Transcript
	events     <-chan domain.CallEvent
	startedAt  time.Time
	endedAt    time.Time
	nav        *Navigation

	finished     chan struct{}
	done         chan struct{}
	dispatchOnce sync.Once
}

// MachineOption customises a Machine.
type MachineOption func(*Machine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithFinishHook runs fn once the navigation decision is made.
func WithFinishHook(fn func(*Machine, Navigation)) MachineOption {
	return func(m *Machine) {
		m.onFinish = fn
	}
}

func NewMachine(id string, sc domain.SessionContext, targets Targets, transport ports.CallTransport, dispatcher *Dispatcher, opts ...MachineOption) *Machine {
	m := &Machine{
		id:         id,
		sc:         sc,
		targets:    targets,
		transport:  transport,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		state:      domain.SessionInactive,
		finished:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("session_id", id, "kind", string(sc.Kind))
	return m
}

func (m *Machine) ID() string                     { return m.id }
func (m *Machine) Context() domain.SessionContext { return m.sc }

func (m *Machine) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done is closed once the session finished and its completion ran.
func (m *Machine) Done() <-chan struct{} {
	return m.done
}

// Navigation returns the completion decision once Done is closed.
func (m *Machine) Navigation() (Navigation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nav == nil {
		return Navigation{}, false
	}
	return *m.nav, true
}

// Transcript returns a copy of the finalized utterances so far.
func (m *Machine) Transcript() []domain.TranscriptEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.Entries()
}

// StartedAt and EndedAt bound the call; EndedAt is zero until finished.
func (m *Machine) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedAt
}

func (m *Machine) EndedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endedAt
}

// Start asks the transport to open the call. On rejection the machine falls
// back to Inactive and the error is returned; nothing is retried.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != domain.SessionInactive {
		st := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, st)
	}
	m.state = domain.SessionConnecting
	m.startedAt = time.Now().UTC()
	m.mu.Unlock()

	target, vars := m.callParams()
	events, err := m.transport.Start(ctx, target, vars)
	if err != nil {
		m.mu.Lock()
		if m.state == domain.SessionConnecting {
			m.state = domain.SessionInactive
		}
		m.mu.Unlock()
		m.logger.Warn("call transport rejected start", "error", err)
		return fmt.Errorf("start call: %w", err)
	}

	m.mu.Lock()
	m.events = events
	m.mu.Unlock()
	m.logger.Info("call connecting", "target", target)
	return nil
}

func (m *Machine) callParams() (string, map[string]string) {
	if m.sc.Kind == domain.SessionGenerate {
		return m.targets.WorkflowID, map[string]string{
			"username": m.sc.UserName,
			"userid":   m.sc.UserID,
		}
	}
	return m.targets.AssistantID, map[string]string{
		"questions": m.sc.FormattedQuestions(),
	}
}

// Stop ends the call from the local side. It is valid while Connecting or Active.
func (m *Machine) Stop(ctx context.Context) error {
	m.mu.Lock()
	st := m.state
	m.mu.Unlock()
	if st != domain.SessionConnecting && st != domain.SessionActive {
		return fmt.Errorf("%w: stop from %s", ErrInvalidTransition, st)
	}

	if !m.markFinished() {
		return fmt.Errorf("%w: already finished", ErrInvalidTransition)
	}
	if err := m.transport.Stop(); err != nil {
		m.logger.Warn("call transport stop failed", "error", err)
	}
	m.complete(context.WithoutCancel(ctx))
	return nil
}

// Run consumes transport events until the session finishes, the transport
// closes its channel or ctx is cancelled.
func (m *Machine) Run(ctx context.Context) {
	m.mu.Lock()
	events := m.events
	m.mu.Unlock()
	if events == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.finished:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent applies a single transport event.
func (m *Machine) HandleEvent(ctx context.Context, ev domain.CallEvent) {
	switch ev.Type {
	case domain.CallStarted:
		m.mu.Lock()
		if m.state == domain.SessionConnecting {
			m.state = domain.SessionActive
		}
		m.mu.Unlock()
	case domain.CallEnded:
		if m.markFinished() {
			m.complete(ctx)
		}
	case domain.CallMessage:
		m.mu.Lock()
		if !m.state.IsTerminal() {
			m.transcript.Observe(ev)
		}
		m.mu.Unlock()
	case domain.SpeechStarted, domain.SpeechEnded:
		m.mu.Lock()
		if !m.state.IsTerminal() {
			m.speaking = ev.Type == domain.SpeechStarted
		}
		m.mu.Unlock()
	case domain.CallError:
		m.logger.Error("call transport error", "error", ev.Err)
	default:
		m.logger.Debug("ignoring call event", "type", string(ev.Type))
	}
}

func (m *Machine) markFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.IsTerminal() {
		return false
	}
	m.state = domain.SessionFinished
	m.speaking = false
	m.endedAt = time.Now().UTC()
	close(m.finished)
	return true
}

func (m *Machine) complete(ctx context.Context) {
	m.dispatchOnce.Do(func() {
		entries := m.Transcript()
		nav := m.dispatcher.Dispatch(ctx, m.sc, entries)

		m.mu.Lock()
		m.nav = &nav
		m.mu.Unlock()

		m.logger.Info("session finished", "route", nav.Route, "entries", len(entries), "outcome", nav.Outcome())
		if m.onFinish != nil {
			m.onFinish(m, nav)
		}
		close(m.done)
	})
}

// Snapshot is a point-in-time view for status endpoints.
type Snapshot struct {
	ID          string                   `json:"id"`
	UserID      string                   `json:"-"`
	Kind        domain.SessionKind       `json:"kind"`
	InterviewID string                   `json:"interview_id,omitempty"`
	State       domain.SessionState      `json:"state"`
	Speaking    bool                     `json:"speaking"`
	LastMessage string                   `json:"last_message,omitempty"`
	Transcript  []domain.TranscriptEntry `json:"transcript"`
	Redirect    string                   `json:"redirect,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		ID:          m.id,
		UserID:      m.sc.UserID,
		Kind:        m.sc.Kind,
		InterviewID: m.sc.InterviewID,
		State:       m.state,
		Speaking:    m.speaking,
		Transcript:  m.transcript.Entries(),
	}
	if last, ok := m.transcript.Last(); ok {
		s.LastMessage = last.Content
	}
	if m.nav != nil {
		s.Redirect = m.nav.Route
		if m.nav.Err != nil {
			s.Error = m.nav.Err.Error()
		}
	}
	return s
}
