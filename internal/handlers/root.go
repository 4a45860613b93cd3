package handlers

import (
	"net/http"
	"strings"
)

// NewAPIRootHandler returns the API index. It also answers CORS
// preflight requests for the whole API subtree.
// @Summary API index
// @Tags api
// @Produce json
// @Success 200 {object} handlers.Response
// @Router /api [get]
func NewAPIRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Authorization", "Content-Type"}, ", "))
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, Response{Data: "data"})
	}
}
