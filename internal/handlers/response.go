package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/pagination"
)

// Response is the envelope every JSON API endpoint answers with.
// swagger:model Response
type Response struct {
	// Payload of the call, null when the call failed.
	Data any `json:"data"`

	// Field name to message map, empty when the call succeeded.
	Errors map[string]string `json:"errors"`

	// Paging metadata, only present on list responses.
	Meta *pagination.Page `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	if resp.Errors == nil {
		resp.Errors = map[string]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.Errorw("failed to write response", "err", err)
	}
}

func writeErrors(w http.ResponseWriter, status int, errs map[string]string) {
	writeJSON(w, status, Response{Errors: errs})
}

func writeGlobalError(w http.ResponseWriter, status int, message string) {
	writeErrors(w, status, map[string]string{"_global": message})
}
