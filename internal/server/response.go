package server

import (
	"encoding/json"
	"net/http"

	"tournament-gateway/internal/apperr"

	"github.com/rs/zerolog"
)

// Envelope is the uniform response body: {success, message, data | errors}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondOK(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func respondCreated(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func respondValidation(w http.ResponseWriter, errs []string) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// respondError maps a propagated service error to its status code and stable
// message. Internals are logged, never echoed.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	message := apperr.Message(err)

	if status >= 500 {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Info().Int("status", status).Str("message", message).Msg("request rejected")
	}

	writeJSON(w, status, Envelope{Success: false, Message: message})
}
