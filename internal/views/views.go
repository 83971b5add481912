// Package views renders the server-side HTML pages.
package views

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/userpanel/adminserver/internal/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes named page templates.
type Renderer struct {
	tmpl *template.Template
	log  logging.Logger
}

func New(log logging.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, log: log}, nil
}

// Render writes the named template with the given data. Render errors
// after the first byte cannot be recovered; they are logged.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		r.log.Error(context.Background(), "failed to render template", "template", name, "error", err)
	}
}
