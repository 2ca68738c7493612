// Package respond writes JSON bodies for the HTTP handlers.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/nexthour/core/logger"
)

// ErrorBody is the payload returned for every failed request.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && log != nil {
		log.Errorf("encode response: %v", err)
	}
}

// Error writes {"detail": msg} with the given status.
func Error(w http.ResponseWriter, log logger.Logger, status int, msg string) {
	JSON(w, log, status, ErrorBody{Detail: msg})
}
