package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#08090d;color:#d6e0ff}
nav{padding:1rem 2rem;border-bottom:1px solid #27282f}
nav a{color:#cac5fe;font-weight:600;text-decoration:none}
main{max-width:72rem;margin:0 auto;padding:2rem}
.btn{display:inline-block;padding:.5rem 1.25rem;border-radius:999px;background:#cac5fe;color:#020408;font-weight:600;border:0;cursor:pointer;text-decoration:none}
.btn.secondary{background:#27282f;color:#cac5fe}
.btn.disconnect{background:#f75353;color:#fff}
.cards{display:flex;flex-wrap:wrap;gap:1.5rem}
.card{width:20rem;padding:1.5rem;border-radius:1rem;background:#1a1c20}
.card img{width:64px;height:64px;border-radius:50%}
.badge{float:right;padding:.25rem .75rem;border-radius:0 1rem 0 1rem;background:#4b4d4f;font-size:.85rem}
.tech{font-size:.85rem;color:#9aa}
.band-good{color:#49de50}.band-fair{color:#e5a000}.band-poor{color:#f75353}
.panel{margin-top:1.5rem;padding:1.5rem;border-radius:1rem;background:#1a1c20}
.speaking{color:#49de50}
.empty{color:#9aa}
`

// Layout wraps body in the shared page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.raw(`<title>`)
		b.text(title)
		b.raw(`</title><script src="https://unpkg.com/htmx.org@2.0.4"></script><style>`)
		b.raw(styles)
		b.raw(`</style></head><body><nav><a href="/">Nexa</a></nav><main>`)
		if b.err != nil {
			return b.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		b.raw(`</main></body></html>`)
		return b.err
	})
}
