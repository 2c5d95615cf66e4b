package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

// CallPage shows the interviewer and the call button.
func CallPage(p SessionPage) templ.Component {
	title := "Interview generation"
	if p.InterviewID != "" {
		title = p.Role + " Interview"
	}
	return Layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.raw(`<h2>`)
		b.text(title)
		b.raw(`</h2>`)
		if p.InterviewID != "" {
			b.raw(`<p class="tech">`)
			b.text(p.Type)
			if len(p.Techstack) > 0 {
				b.text(" · " + strings.Join(p.Techstack, ", "))
			}
			b.rawf(` · %d questions</p>`, p.Questions)
		}
		b.raw(`<div class="panel"><strong>AI Interviewer</strong> &amp; <strong>`)
		b.text(p.UserName)
		b.raw(`</strong></div>`)

		kind := string(domain.SessionGenerate)
		if p.InterviewID != "" {
			kind = string(domain.SessionAssess)
		}
		b.raw(`<div id="call"><form hx-post="/api/sessions" hx-target="#call" hx-swap="innerHTML">`)
		b.raw(`<input type="hidden" name="kind"`)
		b.attr("value", kind)
		b.raw(`>`)
		if p.InterviewID != "" {
			b.raw(`<input type="hidden" name="interview_id"`)
			b.attr("value", p.InterviewID)
			b.raw(`>`)
		}
		b.raw(`<button class="btn" type="submit">Call</button></form></div>`)
		return b.err
	}))
}

// CallPanel is the fragment htmx polls while a call runs.
func CallPanel(p SessionPanel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.raw(`<div class="panel"`)
		b.attr("id", "session-"+p.ID)
		if !p.State.IsTerminal() {
			b.attr("hx-get", "/api/sessions/"+p.ID)
			b.raw(` hx-trigger="every 1s" hx-swap="outerHTML"`)
		}
		b.raw(`><span class="state">`)
		b.text(stateLabel(p.State))
		b.raw(`</span>`)
		if p.Speaking {
			b.raw(` <span class="speaking">speaking</span>`)
		}
		if p.LastMessage != "" {
			b.raw(`<p class="transcript">`)
			b.text(p.LastMessage)
			b.raw(`</p>`)
		}
		if p.Error != "" {
			b.raw(`<p class="band-poor">`)
			b.text(p.Error)
			b.raw(`</p>`)
		}
		if !p.State.IsTerminal() {
			b.raw(`<button class="btn disconnect"`)
			b.attr("hx-post", "/api/sessions/"+p.ID+"/stop")
			b.raw(`>End</button>`)
		}
		b.raw(`</div>`)
		return b.err
	})
}
