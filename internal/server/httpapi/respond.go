package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"minventory/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError translates sentinel errors to HTTP statuses. Missing and
// forbidden records both read as 404 so responses never confirm that a
// gated record exists.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrAccessDenied):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, common.ErrAuthenticationFailed):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication failed"})
	case errors.Is(err, common.ErrInvalidCode):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid code"})
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrSessionExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, common.ErrTwoFactorRequired):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "two-factor verification required"})
	case errors.Is(err, common.ErrDecryptionFailed):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "decryption failed"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decode reads a JSON request body. A malformed body is the client's fault.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}
