package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
	"github.com/ewilliams-labs/songscope/internal/logging"
)

const (
	errCodeInvalidField    = "INVALID_FIELD"
	errCodeInvalidCriteria = "INVALID_CRITERIA"
	errCodeDataSource      = "DATA_SOURCE_UNAVAILABLE"
	errCodeRateLimited     = "RATE_LIMITED"
	errCodeInternal        = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log := logging.FromContext(r.Context(), zerolog.Nop())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "failed to encode response", Code: errCodeInternal})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeErrorWithCode(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	writeJSON(w, r, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps core errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidField):
		writeErrorWithCode(w, r, http.StatusBadRequest, err.Error(), errCodeInvalidField)
	case errors.Is(err, domain.ErrInvalidCriteria):
		writeErrorWithCode(w, r, http.StatusBadRequest, err.Error(), errCodeInvalidCriteria)
	case errors.Is(err, domain.ErrDataSource):
		writeErrorWithCode(w, r, http.StatusServiceUnavailable, err.Error(), errCodeDataSource)
	default:
		writeErrorWithCode(w, r, http.StatusInternalServerError, err.Error(), errCodeInternal)
	}
}
