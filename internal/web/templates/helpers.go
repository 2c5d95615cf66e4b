package templates

import (
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatScore(score *int) string {
	if score == nil {
		return "---"
	}
	return fmt.Sprintf("%d/100", *score)
}

func stateLabel(state domain.SessionState) string {
	switch state {
	case domain.SessionConnecting:
		return "Connecting..."
	case domain.SessionActive:
		return "Live"
	case domain.SessionFinished:
		return "Finished"
	default:
		return "Ready"
	}
}

// writer collects the first write error so components can be written as a
// flat sequence of calls.
type writer struct {
	w   io.Writer
	err error
}

func (b *writer) raw(s string) {
	if b.err == nil {
		_, b.err = io.WriteString(b.w, s)
	}
}

func (b *writer) text(s string) {
	b.raw(templ.EscapeString(s))
}

func (b *writer) rawf(format string, args ...any) {
	b.raw(fmt.Sprintf(format, args...))
}

func (b *writer) attr(name, value string) {
	b.rawf(` %s="%s"`, name, templ.EscapeString(value))
}
