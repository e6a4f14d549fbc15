package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/validation"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeError maps a service error onto the response status. Anything outside
// the known taxonomy is logged and reported as an internal error.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var fieldErr *validation.FieldError
	switch {
	case errors.As(err, &fieldErr):
		writeFailure(w, http.StatusBadRequest, fieldErr.Message)
	case errors.Is(err, validation.ErrInvalidInput):
		writeFailure(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeFailure(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, auth.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, "invalid or expired session")
	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
		writeFailure(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Request failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return validation.Invalid("body", "invalid request body")
	}
	return nil
}
