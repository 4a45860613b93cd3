package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// PasswordResetter defines the service interface for finishing a reset.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, email, token, password string) error
}

// NewResetPasswordHandler sets a new password from a mailed reset
// link. Token problems are reported without saying which parameter
// was wrong.
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 422 {object} handlers.Response "Validation errors or bad token"
// @Router /api/users/reset_password [post]
func NewResetPasswordHandler(svc PasswordResetter) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema:    validation.UserResetPasswordForm,
		AllowJSON: true,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		if res.Failed() {
			writeErrors(w, http.StatusUnprocessableEntity, res.Errors)
			return
		}

		err := svc.ResetPassword(r.Context(), res.String("email"), res.String("token"), res.String("password"))
		if errors.Is(err, services.ErrInvalidResetToken) {
			writeGlobalError(w, http.StatusUnprocessableEntity, "Could not verify reset parameters.")
			return
		}
		if err != nil {
			logger.Log.Errorw("failed to reset password", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, Response{Data: nil})
	})
}
