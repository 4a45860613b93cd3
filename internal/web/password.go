package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// PasswordForgetter defines the service interface for starting a reset.
type PasswordForgetter interface {
	ForgotPassword(ctx context.Context, email string) error
}

// PasswordResetter defines the service interface for finishing a reset.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, email, token, password string) error
}

// NewForgotPasswordPageHandler renders and processes the
// reset-request form.
func NewForgotPasswordPageHandler(svc PasswordForgetter) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema: validation.UserForgotPasswordForm,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		p := newPage(r, "Forgot password")

		if !res.Submitted() {
			render(w, "forgot_password.html", p)
			return
		}

		p.Values["email"] = res.String("email")
		if res.Failed() {
			p.Errors = res.Errors
			render(w, "forgot_password.html", p)
			return
		}

		err := svc.ForgotPassword(r.Context(), res.String("email"))
		if errors.Is(err, services.ErrUnknownEmail) {
			p.Errors["email"] = "Invalid email address."
			render(w, "forgot_password.html", p)
			return
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		flash(r, "A password reset link has been sent to your email.", "success")
		http.Redirect(w, r, "/users/login", http.StatusSeeOther)
	})
}

// NewResetPasswordPageHandler renders and processes the
// choose-a-new-password form reached from the mailed link.
func NewResetPasswordPageHandler(svc PasswordResetter) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema: validation.UserResetPasswordForm,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		p := newPage(r, "Reset password")

		if !res.Submitted() {
			p.Values["email"] = r.URL.Query().Get("email")
			p.Values["token"] = r.URL.Query().Get("token")
			render(w, "reset_password.html", p)
			return
		}

		p.Values["email"] = res.String("email")
		p.Values["token"] = res.String("token")
		if res.Failed() {
			p.Errors = res.Errors
			render(w, "reset_password.html", p)
			return
		}

		err := svc.ResetPassword(r.Context(), res.String("email"), res.String("token"), res.String("password"))
		if errors.Is(err, services.ErrInvalidResetToken) {
			p.Errors[validation.GlobalKey] = "Could not verify reset parameters."
			render(w, "reset_password.html", p)
			return
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		flash(r, "Your password was successfully changed.", "success")
		http.Redirect(w, r, "/users/login", http.StatusSeeOther)
	})
}
