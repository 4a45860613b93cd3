package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Page carries everything a template needs to render.
type Page struct {
	Title       string
	User        *models.UserDB
	Flashes     []sessions.Flash
	CSRF        string
	Errors      map[string]string
	Values      map[string]string
	Permissions []string
}

// newPage assembles the shared page state: current user, pending
// flashes and the session's CSRF token.
func newPage(r *http.Request, title string) *Page {
	p := &Page{
		Title:  title,
		User:   auth.CurrentUser(r.Context()),
		Errors: map[string]string{},
		Values: map[string]string{},
	}
	if s := sessions.FromContext(r.Context()); s != nil {
		p.Flashes = s.PopFlashes()
		p.CSRF = s.CSRF()
	}
	return p
}

func render(w http.ResponseWriter, name string, p *Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, p); err != nil {
		logger.Log.Errorw("failed to render template", "template", name, "err", err)
	}
}

func flash(r *http.Request, message, category string) {
	if s := sessions.FromContext(r.Context()); s != nil {
		s.Flash(message, category)
	}
}

func popFlashes(r *http.Request) []sessions.Flash {
	if s := sessions.FromContext(r.Context()); s != nil {
		return s.PopFlashes()
	}
	return nil
}
