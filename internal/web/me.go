package web

import (
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
)

// NewMePageHandler renders the account page. Access is enforced by the
// permission middleware in front of it.
func NewMePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := newPage(r, "Your account")
		if id := auth.FromContext(r.Context()); id != nil {
			p.Permissions = auth.PermissionsFor(id.Principals(r.Context()))
		}
		render(w, "me.html", p)
	}
}
