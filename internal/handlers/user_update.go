package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// UserUpdater defines the service interface for updating users.
type UserUpdater interface {
	Get(ctx context.Context, id int64) (*models.UserDB, error)
	Update(ctx context.Context, id int64, in services.UpdateInput) (*models.UserDB, error)
}

// NewUserUpdateHandler applies a sparse update to a user account.
// A request without any usable field is rejected outright.
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} handlers.Response
// @Failure 400 "Empty update"
// @Failure 404 "Unknown user"
// @Failure 422 {object} handlers.Response "Validation errors"
// @Router /api/users/{id} [put]
func NewUserUpdateHandler(svc UserUpdater) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema:    validation.UserUpdateSchema,
		Methods:   []string{http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowJSON: true,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		// An unknown id is a 404 even when the payload is invalid.
		if _, err := svc.Get(r.Context(), id); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			logger.Log.Errorw("failed to load user", "user_id", id, "err", err)
			writeGlobalError(w, http.StatusInternalServerError, "Unable to process update")
			return
		}

		if res.Failed() {
			writeErrors(w, http.StatusUnprocessableEntity, res.Errors)
			return
		}
		if !res.Submitted() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		user, err := svc.Update(r.Context(), id, services.UpdateInput{
			Email:     res.String("email"),
			Password:  res.String("password"),
			Role:      res.String("role"),
			FirstName: res.String("profile.first_name"),
			LastName:  res.String("profile.last_name"),
		})
		switch {
		case errors.Is(err, services.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, services.ErrEmptyUpdate):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, services.ErrEmailTaken):
			writeErrors(w, http.StatusUnprocessableEntity, map[string]string{
				"email": "Email address must be unique",
			})
		case err != nil:
			logger.Log.Errorw("failed to update user", "user_id", id, "err", err)
			writeGlobalError(w, http.StatusInternalServerError, "Unable to process update")
		default:
			writeJSON(w, http.StatusOK, Response{Data: models.NewUserJSON(user)})
		}
	})
}
