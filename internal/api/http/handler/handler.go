// Package handler implements the JSON HTTP handlers of the vault API.
//
// Error bodies are deliberately generic. Credential failures never say
// whether the email exists, and not-found never says whether the record
// exists under another account.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// mapError translates service errors to HTTP statuses. Anything unrecognized
// is a 500 with a generic body; internals are logged, not leaked.
func mapError(w http.ResponseWriter, l *logger.Logger, err error) {
	var quotaErr *model.QuotaError

	switch {
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrInvalidOrExpiredToken):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, model.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, "account already exists")
	case errors.As(err, &quotaErr):
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"error": quotaErr.Error(),
			"limit": quotaErr.Limit,
		})
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid transition")
	default:
		l.Error("request failed",
			"error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
