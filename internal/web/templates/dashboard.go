package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DashboardPage lists the user's own interviews and the latest ones from
// other users.
func DashboardPage(d Dashboard) templ.Component {
	return Layout("Nexa", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.raw(`<section class="cta"><h2>Get interview-ready with AI-powered practice and feedback</h2>`)
		b.raw(`<p>Practice real interview questions and get instant feedback.</p>`)
		b.raw(`<a class="btn" href="/interview">Start an interview</a></section>`)

		b.raw(`<section><h2>Your interviews</h2>`)
		writeCards(b, d.Own, "You haven't taken any interviews yet")
		b.raw(`</section><section><h2>Take an interview</h2>`)
		writeCards(b, d.Latest, "There are no interviews available")
		b.raw(`</section>`)
		return b.err
	}))
}

func writeCards(b *writer, cards []InterviewCard, empty string) {
	if len(cards) == 0 {
		b.raw(`<p class="empty">`)
		b.text(empty)
		b.raw(`</p>`)
		return
	}
	b.raw(`<div class="cards">`)
	for _, c := range cards {
		writeCard(b, c)
	}
	b.raw(`</div>`)
}

func writeCard(b *writer, c InterviewCard) {
	b.raw(`<article class="card"`)
	b.attr("id", "interview-"+c.ID)
	b.raw(`><span class="badge">`)
	b.text(c.Type)
	b.raw(`</span>`)
	if c.CoverImage != "" {
		b.raw(`<img alt="cover"`)
		b.attr("src", c.CoverImage)
		b.raw(`>`)
	}
	b.raw(`<h3>`)
	b.text(c.Role + " Interview")
	b.raw(`</h3><p><span class="date">`)
	b.text(formatDate(c.CreatedAt))
	b.raw(`</span> &middot; <span class="score">`)
	b.text(formatScore(c.Score))
	b.raw(`</span></p>`)
	if len(c.Techstack) > 0 {
		b.raw(`<p class="tech">`)
		b.text(strings.Join(c.Techstack, ", "))
		b.raw(`</p>`)
	}

	href, label := "/interview/"+c.ID, "View interview"
	if c.Score != nil {
		href, label = "/interview/"+c.ID+"/feedback", "Check feedback"
	}
	b.raw(`<a class="btn"`)
	b.attr("href", href)
	b.raw(`>`)
	b.text(label)
	b.raw(`</a></article>`)
}
