package http

import (
	"encoding/json"
	"net/http"

	apperrors "roomly/pkg/errors"
)

type errorEnvelope struct {
	Error apperrors.Body `json:"error"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err in the standard envelope. Anything that is not
// an AppError becomes an opaque server_error so internals never leak to
// clients.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)
	_ = WriteJSON(w, appErr.Status, errorEnvelope{Error: appErr.Body()})
}

func WriteSuccess(w http.ResponseWriter, data any) {
	_ = WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) {
	_ = WriteJSON(w, http.StatusCreated, data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
