// Package partials renders the htmx fragments swapped into portal pages.
package partials

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// e escapes text and attribute values.
func e(s string) string {
	return templ.EscapeString(s)
}

// writer collects the first write error so components can print freely.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		fn(w)
		return w.err
	})
}
