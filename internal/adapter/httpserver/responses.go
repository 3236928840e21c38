// Package httpserver contains the JSON HTTP handlers and middleware of the
// screening API.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	obsctx "github.com/fairyhunter13/ai-talent-screener/internal/observability"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps the domain error taxonomy to an HTTP status and code.
// More specific sentinels are checked first.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusNotFound, "NO_QUESTIONS"
	case errors.Is(err, domain.ErrSessionNotActive):
		return http.StatusConflict, "SESSION_NOT_ACTIVE"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return http.StatusServiceUnavailable, "CAPABILITY_UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	code, codeStr := errorStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		obsctx.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: msg, Details: details}})
}
