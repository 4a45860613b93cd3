package middlewares

import (
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/sessions"
)

// SessionMiddleware loads (or starts) the request session, makes it
// available through the context and persists it once the handler is
// done.
func SessionMiddleware(m *sessions.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := m.Load(w, r)
			next.ServeHTTP(w, r.WithContext(sessions.NewContext(r.Context(), s)))
			m.Commit(r.Context(), s)
		})
	}
}
