package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/validation"
)

// UserCreator defines the service interface for creating users.
type UserCreator interface {
	Create(ctx context.Context, in services.CreateInput) (*models.UserDB, error)
}

// NewUserCreateHandler creates a user account with an explicit role.
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} handlers.Response
// @Failure 422 {object} handlers.Response "Validation errors"
// @Router /api/users [post]
func NewUserCreateHandler(svc UserCreator) http.HandlerFunc {
	return validation.Wrap(validation.Options{
		Schema:    validation.UserCreateSchema,
		AllowJSON: true,
	}, func(w http.ResponseWriter, r *http.Request, res *validation.Result) {
		if res.Failed() {
			writeErrors(w, http.StatusUnprocessableEntity, res.Errors)
			return
		}

		user, err := svc.Create(r.Context(), services.CreateInput{
			Email:     res.String("email"),
			Password:  res.String("password"),
			Role:      res.String("role"),
			FirstName: res.String("profile.first_name"),
			LastName:  res.String("profile.last_name"),
		})
		if errors.Is(err, services.ErrEmailTaken) {
			writeErrors(w, http.StatusUnprocessableEntity, map[string]string{
				"email": "Email address must be unique",
			})
			return
		}
		if err != nil {
			logger.Log.Errorw("failed to create user", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, Response{Data: models.NewUserJSON(user)})
	})
}
