// Package trace assigns request ids and logs one line per completed request.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"tally/internal/log"
)

const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

type Tracer struct {
	extractIP func(*http.Request) string
	total     atomic.Int64
	failed    atomic.Int64
}

func New(extractIP func(*http.Request) string) *Tracer {
	return &Tracer{extractIP: extractIP}
}

// Middleware reuses a well-formed incoming X-Request-ID, echoes it in the response and
// stores it in the request context.
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(id) {
			id = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), contextKey{}, id)
		r = r.WithContext(ctx)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		t.total.Add(1)
		level := slog.LevelInfo
		switch {
		case rw.status >= 500:
			level = slog.LevelError
			t.failed.Add(1)
		case rw.status >= 400:
			level = slog.LevelWarn
		}

		clientIP := ""
		if t.extractIP != nil {
			clientIP = t.extractIP(r)
		}
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).Log(ctx, level, "HTTP request completed",
			log.FieldRequestID, id,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// RequestID returns the id assigned by Middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// RequestIDFromRequest suits log.Middleware's extractor signature.
func RequestIDFromRequest(r *http.Request) string {
	return RequestID(r.Context())
}

type Stats struct {
	Total  int64
	Failed int64
}

func (t *Tracer) Stats() Stats {
	return Stats{Total: t.total.Load(), Failed: t.failed.Load()}
}
