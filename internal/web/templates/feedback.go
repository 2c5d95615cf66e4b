package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func FeedbackView(p FeedbackPage) templ.Component {
	return Layout("Feedback", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.raw(`<section class="feedback"><h1>Feedback on the Interview - `)
		b.text(p.Role)
		b.raw(` Interview</h1>`)

		if !p.HasFeedback {
			b.raw(`<p class="empty">No feedback has been recorded for this interview yet.</p>`)
		} else {
			b.raw(`<p>Overall Impression: <span class="total`)
			b.text(" band-" + string(p.Band))
			b.rawf(`">%d</span>/100 &middot; <span class="date">`, p.TotalScore)
			b.text(formatDateTime(p.CreatedAt))
			b.raw(`</span></p><p class="assessment">`)
			b.text(p.FinalAssessment)
			b.raw(`</p><h2>Breakdown of the Interview:</h2>`)
			for i, c := range p.Categories {
				b.rawf(`<div class="category"><p><strong>%d. `, i+1)
				b.text(c.Name)
				b.rawf(` (%d/100)</strong></p><p>`, c.Score)
				b.text(c.Comment)
				b.raw(`</p></div>`)
			}
			writeList(b, "Strengths", p.Strengths)
			writeList(b, "Areas for Improvement", p.Areas)
		}

		b.raw(`<p><a class="btn secondary" href="/">Back to dashboard</a> `)
		b.raw(`<a class="btn"`)
		b.attr("href", "/interview/"+p.InterviewID)
		b.raw(`>Retake Interview</a></p></section>`)
		return b.err
	}))
}

func writeList(b *writer, title string, items []string) {
	b.raw(`<h3>`)
	b.text(title)
	b.raw(`</h3><ul>`)
	for _, item := range items {
		b.raw(`<li>`)
		b.text(item)
		b.raw(`</li>`)
	}
	b.raw(`</ul>`)
}
