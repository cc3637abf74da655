package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer writes markup and keeps the first error, so pages can be written
// as a flat sequence of calls.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *writer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// text writes s escaped for element content and attribute values.
func (p *writer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// url writes s as a sanitized, escaped URL attribute value.
func (p *writer) url(s string) {
	p.raw(templ.EscapeString(string(templ.URL(s))))
}

func (p *writer) render(c templ.Component) {
	if p.err == nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

// component turns a write sequence into a templ component.
func component(fn func(p *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := &writer{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}

// layout wraps body in the html document shared by all pages.
func layout(title string, body templ.Component) templ.Component {
	return component(func(p *writer) {
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.text(title)
		p.raw(`</title><link rel="stylesheet" href="/static/bankdesk.css"></head><body>`)
		p.render(body)
		p.raw(`</body></html>`)
	})
}
