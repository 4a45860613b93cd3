package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// RememberCookieName holds the signed email remembered across logins,
// used to prefill the login form.
const RememberCookieName = "remember_email"

// RememberTTL is how long the remembered email survives.
const RememberTTL = 30 * 24 * time.Hour

// Loginer defines the service interface for authenticating users.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*models.UserDB, error)
}

// NewLoginPageHandler renders and processes the login form. A
// successful login sets the auth cookie, remembers the email for the
// next visit and follows the next parameter when it points inside the
// site.
func NewLoginPageHandler(svc Loginer, cookies *auth.CookieAuthenticator) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema: validation.UserLoginForm,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		if auth.CurrentUser(r.Context()) != nil {
			flash(r, "You are already logged in.", "info")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		p := newPage(r, "Sign in")
		p.Values["next"] = firstNonEmpty(res.String("next"), r.URL.Query().Get("next"))

		if !res.Submitted() {
			prefillRememberedEmail(r, cookies, p)
			render(w, "login.html", p)
			return
		}

		p.Values["email"] = res.String("email")
		if res.Failed() {
			p.Errors = res.Errors
			render(w, "login.html", p)
			return
		}

		user, err := svc.Login(r.Context(), res.String("email"), res.String("password"))
		if errors.Is(err, services.ErrInvalidCredentials) {
			flash(r, "Invalid email or password.", "danger")
			p.Flashes = popFlashes(r)
			render(w, "login.html", p)
			return
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if err := cookies.SetCookie(w, user.Email); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		rememberEmail(w, cookies, user.Email)

		http.Redirect(w, r, safeNext(p.Values["next"]), http.StatusSeeOther)
	})
}

func prefillRememberedEmail(r *http.Request, cookies *auth.CookieAuthenticator, p *Page) {
	c, err := r.Cookie(RememberCookieName)
	if err != nil {
		return
	}
	if email, err := cookies.Verify(c.Value); err == nil {
		p.Values["email"] = email
	}
}

func rememberEmail(w http.ResponseWriter, cookies *auth.CookieAuthenticator, email string) {
	value, err := cookies.IssueWithTTL(email, RememberTTL)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookieName,
		Value:    value,
		Path:     "/users/login",
		Expires:  time.Now().Add(RememberTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext keeps redirects inside the site.
func safeNext(next string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && next[1] == '/') {
		return "/"
	}
	return next
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
