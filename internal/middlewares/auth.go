package middlewares

import (
	"net/http"
	"net/url"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/sessions"
)

// IdentityMiddleware resolves the request credentials (Authorization
// header or auth cookie) and stores a lazy identity in the context.
// The user row is only loaded when a handler or permission check asks
// for it.
func IdentityMiddleware(cookies *auth.CookieAuthenticator, loader auth.UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := auth.ResolveCredentials(r, cookies)
			ctx := auth.NewContext(r.Context(), auth.NewIdentity(creds, loader))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission guards a route with the access control list.
// Anonymous requests get 401, authenticated ones without the
// permission get 403. With html set, both cases redirect instead:
// anonymous to the login form (keeping the original URL in the next
// parameter), authenticated to the site root with a flash.
func RequirePermission(permission string, html bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromContext(r.Context())
			principals := id.Principals(r.Context())

			if auth.Permits(principals, permission) {
				next.ServeHTTP(w, r)
				return
			}

			anonymous := auth.CurrentUser(r.Context()) == nil
			if !html {
				if anonymous {
					w.WriteHeader(http.StatusUnauthorized)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			s := sessions.FromContext(r.Context())
			if anonymous {
				if s != nil {
					s.Flash("Please sign in to continue.", "warning")
				}
				http.Redirect(w, r, "/users/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			if s != nil {
				s.Flash("You are not allowed to access that page.", "danger")
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
		})
	}
}
