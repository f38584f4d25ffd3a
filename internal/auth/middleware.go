package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// SessionCookie is read when no Authorization header is present.
const SessionCookie = "tally_session"

// Verifier turns a raw credential into a user id.
type Verifier interface {
	Verify(raw string) (string, error)
}

// Middleware authenticates every request it wraps and rejects the rest with 401.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := credential(r)
			if raw == "" {
				unauthorized(w)
				return
			}
			userID, err := v.Verify(raw)
			if err != nil {
				slog.DebugContext(r.Context(), "Rejected credential", "component", "auth", "error", err)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="tally"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
