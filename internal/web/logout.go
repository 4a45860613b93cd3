package web

import (
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/sessions"
)

// NewLogoutHandler clears the auth cookie, drops the server-side
// session and sends the visitor home. The goodbye flash rides on the
// fresh session that replaces the old one.
func NewLogoutHandler(cookies *auth.CookieAuthenticator, sess *sessions.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies.ClearCookie(w)

		fresh := sess.Renew(w, r)
		fresh.Flash("You have successfully logged out.", "success")
		sess.Commit(r.Context(), fresh)

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
