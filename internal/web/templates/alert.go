// Package templates holds the HTML fragments returned to HTMX callers.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

// ErrorAlert renders a dismissible error banner with the user message,
// suggested action and support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// UploadSummary renders a result banner for a processed workbook: imported
// counts per sheet, then each sheet's skipped rows with their messages.
func UploadSummary(resp *core.BatchResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="alert alert-success" role="status"><p>%s</p><ul>`,
			templ.EscapeString(resp.Message)); err != nil {
			return err
		}
		for _, u := range resp.Success.UploadedSheets {
			if _, err := fmt.Fprintf(w, `<li>%s: %d imported</li>`,
				templ.EscapeString(u.SheetName), u.UploadedCount); err != nil {
				return err
			}
		}
		for _, e := range resp.Errors {
			if err := skippedSheet(w, e); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></div>`)
		return err
	})
}

// skippedSheet writes one sheet's entry with a nested list of failing rows.
func skippedSheet(w io.Writer, e core.SheetErrors) error {
	text := fmt.Sprintf("%s: %d skipped", e.SheetName, e.SkippedCount)
	if e.Error != "" {
		text = e.Error
	}
	if _, err := fmt.Fprintf(w, `<li class="skipped">%s`, templ.EscapeString(text)); err != nil {
		return err
	}
	if len(e.Details) > 0 {
		if _, err := io.WriteString(w, `<ul class="row-errors">`); err != nil {
			return err
		}
		for _, d := range e.Details {
			if _, err := fmt.Fprintf(w, `<li data-row="%d">Row %d: %s</li>`,
				d.Row, d.Row, templ.EscapeString(strings.Join(d.Errors, "; "))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</li>`)
	return err
}
