// Package handlers provides HTTP response utilities for JSON APIs.
// Every response is wrapped in an Envelope so clients can branch on Con.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StatusUnclassified is returned for errors that carry no declared status.
const StatusUnclassified = 505

// Envelope is the response body shape shared by every endpoint.
type Envelope struct {
	Con  bool   `json:"con"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// RespondJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondOK writes a successful envelope carrying msg and data.
func RespondOK(w http.ResponseWriter, status int, msg string, data any) {
	RespondJSON(w, status, Envelope{Con: true, Msg: msg, Data: data})
}

// RespondError logs the error and writes a failed envelope.
// A zero status is replaced with StatusUnclassified.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status == 0 {
		status = StatusUnclassified
	}
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, Envelope{Con: false, Msg: err.Error()})
}

// NotFound responds to unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusNotFound, Envelope{Con: false, Msg: "Invalid route"})
}
