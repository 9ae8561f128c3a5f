// Package handlers provides HTTP response utilities for JSON APIs.
// These stateless functions standardize response formatting across handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body written for failed requests.
// Error carries the underlying cause and is omitted for not-found responses.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes an ErrorResponse.
// Not-found responses carry only {"message":"Not found"}; server errors carry
// a generic message plus the cause; other client errors use the cause as the message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	var body ErrorResponse

	switch {
	case status == http.StatusNotFound:
		logger.Warn("handler error", "error", err, "status", status)
		body = ErrorResponse{Message: "Not found"}
	case status >= http.StatusInternalServerError:
		logger.Error("handler error", "error", err, "status", status)
		body = ErrorResponse{Message: "Server error", Error: err.Error()}
	default:
		logger.Warn("handler error", "error", err, "status", status)
		body = ErrorResponse{Message: err.Error(), Error: err.Error()}
	}

	RespondJSON(w, status, body)
}
