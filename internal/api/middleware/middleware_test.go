package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("wildcard by default", func(t *testing.T) {
		handler := CORSMiddleware(nil)(next)
		req := httptest.NewRequest("GET", "/api/queue", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("echoes listed origin", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://clinic.example"})(next)
		req := httptest.NewRequest("GET", "/api/queue", nil)
		req.Header.Set("Origin", "https://clinic.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://clinic.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("omits header for unlisted origin", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://clinic.example"})(next)
		req := httptest.NewRequest("GET", "/api/queue", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight", func(t *testing.T) {
		handler := CORSMiddleware(nil)(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/appointments/a1/status", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLoggingMiddleware_CapturesStatusAndFlushes(t *testing.T) {
	var flushed bool
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
			flushed = true
		}
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, flushed)
	assert.True(t, w.Flushed)
}

func TestObservabilityMiddleware_UsesMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	var seenPattern string
	mux.HandleFunc("GET /api/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenPattern = r.Pattern
		w.WriteHeader(http.StatusNoContent)
	})

	handler := ObservabilityMiddleware(nil)(mux)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/appointments/a1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET /api/appointments/{id}", seenPattern)
}
