package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/services"
)

// UserDeleter defines the service interface for deleting users.
type UserDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// NewUserDeleteHandler removes a user account and its profile.
// @Summary Delete user
// @Tags users
// @Param id path int true "User id"
// @Success 204 "Deleted"
// @Failure 404 "Unknown user"
// @Router /api/users/{id} [delete]
func NewUserDeleteHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		err = svc.Delete(r.Context(), id)
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Log.Errorw("failed to delete user", "user_id", id, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
