package components

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// PostButton renders a single-button form that posts to action.
// class and title are optional.
func PostButton(action, label, class, title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString(`<form method="post" action="`)
		b.WriteString(templ.EscapeString(string(templ.URL(action))))
		b.WriteString(`"><button type="submit"`)
		if class != "" {
			b.WriteString(` class="`)
			b.WriteString(templ.EscapeString(class))
			b.WriteString(`"`)
		}
		if title != "" {
			b.WriteString(` title="`)
			b.WriteString(templ.EscapeString(title))
			b.WriteString(`"`)
		}
		b.WriteString(`>`)
		b.WriteString(templ.EscapeString(label))
		b.WriteString(`</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AddForm renders the form that appends count records by posting to action.
func AddForm(action, label string, count int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString(`<form method="post" action="`)
		b.WriteString(templ.EscapeString(string(templ.URL(action))))
		b.WriteString(`"><input type="hidden" name="count" value="`)
		b.WriteString(strconv.Itoa(count))
		b.WriteString(`"><button type="submit">`)
		b.WriteString(templ.EscapeString(label))
		b.WriteString(`</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Notice renders the banner for a pending notice. Empty messages render nothing.
func Notice(level, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if message == "" {
			return nil
		}
		_, err := io.WriteString(w, `<div class="`+templ.EscapeString(NoticeClass(level))+`" role="alert">`+
			templ.EscapeString(message)+`</div>`)
		return err
	})
}
