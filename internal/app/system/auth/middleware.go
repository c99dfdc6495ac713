package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// LoadIdentity injects the caller into context if the request carries a
// valid bearer token. Invalid or expired tokens are treated as anonymous;
// routes that need a caller use RequireSignedIn.
func LoadIdentity(tokens *TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug("ignoring bearer token", zap.Error(err), zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, WithIdentity(r, id))
		})
	}
}

// RequireSignedIn ensures there is a caller in context (set by LoadIdentity).
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the caller holds one of the allowed roles.
// No caller → 401; wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := CurrentIdentity(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			if _, has := set[strings.ToLower(id.Role)]; !has {
				writeJSONError(w, http.StatusForbidden, "forbidden", "your role cannot perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + kind + `","message":"` + msg + `"}`))
}
