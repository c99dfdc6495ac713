// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"go.uber.org/zap"
)

// body is the JSON shape of every error response.
//
//	{ "error": "not_found", "message": "job not found with id …", "field": "" }
type body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var kinds = []struct {
	err    error
	status int
	name   string
}{
	{apperr.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperr.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrConflict, http.StatusConflict, "conflict"},
	{apperr.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
}

// Status returns the HTTP status for err and its error name.
// Anything outside the apperr taxonomy is a 500.
func Status(err error) (int, string) {
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.status, k.name
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// Write sends err as a JSON error response. Errors that do not belong to the
// apperr taxonomy are logged and replaced with a generic message so internals
// never reach the client.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, name := Status(err)
	b := body{Error: name}

	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
		}
		b.Message = "an unexpected error occurred"
	} else {
		b.Message = err.Error()
		b.Field = apperr.Field(err)
	}
	JSON(w, status, b)
}
