// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/limits"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Decode reads a JSON request body into v. Malformed bodies and bodies over
// limits.MaxJSONBody are validation errors. An empty body leaves v untouched.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return apperr.ValidationFailed("body", "request body must be valid JSON")
	}
	return nil
}
