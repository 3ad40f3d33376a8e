package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

// Machine-readable error codes. Clients switch on these, not on messages.
const (
	codeUnauthorized  = "UNAUTHORIZED"
	codeNotAuthorized = "NOT_AUTHORIZED"
	codeForbidden     = "FORBIDDEN"
	codeNotFound      = "NOT_FOUND"
	codeValidation    = "VALIDATION_FAILED"
	codeFileRequired  = "FILE_REQUIRED"
	codeFileTooLarge  = "FILE_TOO_LARGE"
	codeTooLarge      = "PAYLOAD_TOO_LARGE"
	codeInternal      = "INTERNAL_ERROR"
)

var errBodyTooLarge = errors.New("request body too large")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse = errorBody

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps an error from the service layer to a response.
// It is the only place that decides status codes for domain errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var denied *policy.DeniedError
	switch {
	case errors.Is(err, policy.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", codeUnauthorized)
	case errors.As(err, &denied):
		if denied.Guard == policy.GuardAdmin {
			writeError(w, http.StatusForbidden, denied.Message, codeForbidden)
			return
		}
		writeError(w, http.StatusUnauthorized, denied.Message, codeNotAuthorized)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", codeNotFound)
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error(), codeTooLarge)
	case errors.Is(err, store.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error(), codeValidation)
	default:
		log.Error(r.Context(), "request failed",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Cause(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
	}
}
