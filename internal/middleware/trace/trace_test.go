package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	tr := New(nil)
	var seen string
	h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.HasPrefix(seen, "req_") || rec.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("request id %q not propagated (header %q)", seen, rec.Header().Get(HeaderRequestID))
	}
	if s := tr.Stats(); s.Total != 1 || s.Failed != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	tr := New(nil)
	var seen string
	h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "upstream-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-123" {
		t.Fatalf("seen = %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "bad id with spaces\n")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("malformed id should be replaced, got %q", seen)
	}
}
