package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// PasswordForgetter defines the service interface for starting a reset.
type PasswordForgetter interface {
	ForgotPassword(ctx context.Context, email string) error
}

// NewForgotPasswordHandler issues a reset token and mails the link.
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 422 {object} handlers.Response "Unknown or invalid email"
// @Router /api/users/forgot_password [post]
func NewForgotPasswordHandler(svc PasswordForgetter) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema:    validation.UserForgotPasswordForm,
		AllowJSON: true,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		if res.Failed() {
			writeErrors(w, http.StatusUnprocessableEntity, res.Errors)
			return
		}

		err := svc.ForgotPassword(r.Context(), res.String("email"))
		if errors.Is(err, services.ErrUnknownEmail) {
			writeGlobalError(w, http.StatusUnprocessableEntity, "Invalid email address.")
			return
		}
		if err != nil {
			logger.Log.Errorw("failed to start password reset", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, Response{Data: nil})
	})
}
