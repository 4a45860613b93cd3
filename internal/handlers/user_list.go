package handlers

import (
	"context"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/pagination"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// UserLister defines the service interface for listing users.
type UserLister interface {
	List(ctx context.Context, page int) ([]models.UserDB, pagination.Page, error)
}

// NewUserListHandler returns a paginated user listing. An absent or
// unusable page parameter falls back to the first page.
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} handlers.Response
// @Failure 401 "Missing credentials"
// @Failure 403 "Missing permission"
// @Router /api/users [get]
func NewUserListHandler(svc UserLister) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Methods:    []string{http.MethodGet},
		Validators: map[string]validation.Validator{"page": validation.Int{Min: 1}},
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		page := res.Int("page", 1)

		users, pg, err := svc.List(r.Context(), page)
		if err != nil {
			logger.Log.Errorw("failed to list users", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, Response{
			Data: models.NewUserListJSON(users),
			Meta: &pg,
		})
	})
}
