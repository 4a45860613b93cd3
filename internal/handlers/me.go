package handlers

import (
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/models"
)

// NewMeHandler returns the authenticated account, or null for
// anonymous callers. The endpoint is public on purpose: clients use it
// to probe their login state.
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.Response
// @Router /api/me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.CurrentUser(r.Context())
		if user == nil {
			writeJSON(w, http.StatusOK, Response{Data: nil})
			return
		}
		writeJSON(w, http.StatusOK, Response{Data: models.NewUserJSON(user)})
	}
}
