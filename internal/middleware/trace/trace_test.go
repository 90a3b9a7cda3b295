package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"savings/internal/log"
)

func TestMiddlewareSetsRequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), func(*http.Request) string { return "192.0.2.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if log.FromContext(r.Context()) == nil {
			t.Error("no logger in context")
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rr.Header().Get("X-Request-ID")
	if !strings.HasPrefix(id, "req_") {
		t.Fatalf("X-Request-ID = %q", id)
	}
	if seen != id {
		t.Errorf("context id %q != header id %q", seen, id)
	}
}

func TestMiddlewareMetrics(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	statuses := []int{http.StatusOK, http.StatusUnprocessableEntity, http.StatusNotFound, http.StatusInternalServerError}

	for _, status := range statuses {
		status := status
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/goals", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 4 || got.ClientErrors != 2 || got.ServerErrors != 1 {
		t.Errorf("metrics = %+v", got)
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	_, _ = rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusTeapot)
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d after body was written", rw.statusCode)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
