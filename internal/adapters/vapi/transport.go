// Package vapi is a websocket client for the voice agent gateway that runs
// interview calls.
package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
)

const (
	defaultConnectTimeout = 10 * time.Second
	eventBuffer           = 64
)

var ErrNotConfigured = errors.New("voice gateway is not configured")

// Config addresses the gateway.
type Config struct {
	URL            string
	PublicKey      string
	ConnectTimeout time.Duration
}

// Factory returns a TransportFactory producing one Transport per session.
func (c Config) Factory(logger *slog.Logger) ports.TransportFactory {
	return func() ports.CallTransport {
		return NewTransport(c, logger)
	}
}

type startFrame struct {
	Type           string            `json:"type"`
	Target         string            `json:"target"`
	VariableValues map[string]string `json:"variableValues,omitempty"`
}

type controlFrame struct {
	Type string `json:"type"`
}

type wireEvent struct {
	Type    string       `json:"type"`
	Message *wireMessage `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type wireMessage struct {
	Type           string `json:"type"`
	Role           string `json:"role"`
	TranscriptType string `json:"transcriptType"`
	Transcript     string `json:"transcript"`
}

// Transport runs a single call over one websocket connection.
type Transport struct {
	cfg    Config
	logger *slog.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	conn    *websocket.Conn
	events  chan domain.CallEvent

	stopping bool
	stopped  chan struct{}
	stopOnce sync.Once
	readDone chan struct{}
}

func NewTransport(cfg Config, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	return &Transport{
		cfg:     cfg,
		logger:  logger.With("component", "vapi"),
		stopped: make(chan struct{}),
	}
}

// Start dials the gateway and asks it to begin a call against target.
func (t *Transport) Start(ctx context.Context, target string, vars map[string]string) (<-chan domain.CallEvent, error) {
	if strings.TrimSpace(t.cfg.URL) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("call target is required")
	}

	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("call already started")
	}
	t.mu.Unlock()

	headers := make(http.Header)
	if t.cfg.PublicKey != "" {
		headers.Set("Authorization", "Bearer "+t.cfg.PublicKey)
	}

	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, t.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, t.cfg.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	if err := conn.WriteJSON(startFrame{Type: "start", Target: target, VariableValues: vars}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send start frame: %w", err)
	}

	events := make(chan domain.CallEvent, eventBuffer)
	t.mu.Lock()
	t.conn = conn
	t.events = events
	t.readDone = make(chan struct{})
	t.mu.Unlock()

	go t.readLoop(conn, events)
	return events, nil
}

// Stop asks the gateway to end the call and closes the connection. It is
// safe to call more than once and before Start.
func (t *Transport) Stop() error {
	t.mu.Lock()
	conn := t.conn
	readDone := t.readDone
	t.stopping = true
	t.mu.Unlock()

	t.stopOnce.Do(func() { close(t.stopped) })
	if conn == nil {
		return nil
	}

	t.writeMu.Lock()
	err := conn.WriteJSON(controlFrame{Type: "stop"})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(2*time.Second))
	t.writeMu.Unlock()
	_ = conn.Close()

	if readDone != nil {
		<-readDone
	}
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("send stop frame: %w", err)
	}
	return nil
}

func (t *Transport) isStopping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopping
}

// readLoop forwards gateway frames until the call ends. A connection lost
// without a call-end frame is reported as an error followed by call-end so
// the session still completes.
func (t *Transport) readLoop(conn *websocket.Conn, events chan domain.CallEvent) {
	defer close(t.readDone)
	defer close(events)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if t.isStopping() {
				return
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.logger.Warn("call connection lost", "error", err)
				t.emit(events, domain.CallEvent{Type: domain.CallError, Err: err})
			}
			t.emit(events, domain.CallEvent{Type: domain.CallEnded})
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		ev, ok, err := decodeFrame(data)
		if err != nil {
			t.logger.Debug("dropping malformed frame", "error", err)
			continue
		}
		if !ok {
			continue
		}
		if !t.emit(events, ev) {
			return
		}
		if ev.Type == domain.CallEnded {
			_ = conn.Close()
			return
		}
	}
}

// emit blocks until the consumer takes the event or Stop is called.
func (t *Transport) emit(events chan<- domain.CallEvent, ev domain.CallEvent) bool {
	select {
	case events <- ev:
		return true
	case <-t.stopped:
		return false
	}
}

func decodeFrame(data []byte) (domain.CallEvent, bool, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.CallEvent{}, false, fmt.Errorf("decode frame: %w", err)
	}

	switch domain.CallEventType(w.Type) {
	case domain.CallStarted, domain.CallEnded, domain.SpeechStarted, domain.SpeechEnded:
		return domain.CallEvent{Type: domain.CallEventType(w.Type)}, true, nil
	case domain.CallMessage:
		if w.Message == nil {
			return domain.CallEvent{}, false, nil
		}
		return domain.CallEvent{
			Type: domain.CallMessage,
			Message: &domain.CallMessagePayload{
				Type:           w.Message.Type,
				Role:           w.Message.Role,
				TranscriptType: w.Message.TranscriptType,
				Transcript:     w.Message.Transcript,
			},
		}, true, nil
	case domain.CallError:
		msg := strings.TrimSpace(w.Error)
		if msg == "" {
			msg = "unknown gateway error"
		}
		return domain.CallEvent{Type: domain.CallError, Err: errors.New(msg)}, true, nil
	default:
		return domain.CallEvent{}, false, nil
	}
}
