package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// Loginer defines the service interface for authenticating users.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*models.UserDB, error)
}

// NewLoginHandler authenticates a user and sets the auth cookie. The
// response includes the account's API token for header-based clients.
// Bad credentials always produce the same message regardless of
// whether the address is registered.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 422 {object} handlers.Response "Invalid credentials or validation errors"
// @Router /api/users/login [post]
func NewLoginHandler(svc Loginer, cookies *auth.CookieAuthenticator) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema:    validation.UserLoginForm,
		AllowJSON: true,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		if res.Failed() {
			writeErrors(w, http.StatusUnprocessableEntity, res.Errors)
			return
		}

		user, err := svc.Login(r.Context(), res.String("email"), res.String("password"))
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeGlobalError(w, http.StatusUnprocessableEntity, "Invalid email or password.")
			return
		}
		if err != nil {
			logger.Log.Errorw("login failed", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if err := cookies.SetCookie(w, user.Email); err != nil {
			logger.Log.Errorw("failed to set auth cookie", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, Response{Data: models.NewAuthUserJSON(user)})
	})
}
