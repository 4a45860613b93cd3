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

// Registerer defines the service interface for self registration.
type Registerer interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.UserDB, error)
}

// NewRegisterHandler creates a regular account and logs it in.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 422 {object} handlers.Response "Validation errors or registered email"
// @Router /api/users/register [post]
func NewRegisterHandler(svc Registerer, cookies *auth.CookieAuthenticator) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema:    validation.UserRegisterForm,
		AllowJSON: true,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		if res.Failed() {
			writeErrors(w, http.StatusUnprocessableEntity, res.Errors)
			return
		}

		user, err := svc.Register(r.Context(),
			res.String("email"),
			res.String("password"),
			res.String("profile.first_name"),
			res.String("profile.last_name"),
		)
		if errors.Is(err, services.ErrEmailTaken) {
			writeErrors(w, http.StatusUnprocessableEntity, map[string]string{
				"email": "Email address is already registered",
			})
			return
		}
		if err != nil {
			logger.Log.Errorw("registration failed", "err", err)
			writeGlobalError(w, http.StatusInternalServerError, "Unable to process register")
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
