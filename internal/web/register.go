package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// Registerer defines the service interface for self registration.
type Registerer interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.UserDB, error)
}

// NewRegisterPageHandler renders and processes the registration form.
// A successful registration logs the new account in right away.
func NewRegisterPageHandler(svc Registerer, cookies *auth.CookieAuthenticator) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema: validation.UserRegisterForm,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		p := newPage(r, "Create an account")

		if !res.Submitted() {
			render(w, "register.html", p)
			return
		}

		p.Values["email"] = res.String("email")
		p.Values["profile.first_name"] = res.String("profile.first_name")
		p.Values["profile.last_name"] = res.String("profile.last_name")

		if res.Failed() {
			p.Errors = res.Errors
			flash(r, "Please correct the specified errors.", "danger")
			p.Flashes = popFlashes(r)
			render(w, "register.html", p)
			return
		}

		user, err := svc.Register(r.Context(),
			res.String("email"),
			res.String("password"),
			res.String("profile.first_name"),
			res.String("profile.last_name"),
		)
		if errors.Is(err, services.ErrEmailTaken) {
			p.Errors["email"] = "Email address is already registered"
			flash(r, "Please correct the specified errors.", "danger")
			p.Flashes = popFlashes(r)
			render(w, "register.html", p)
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
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}
