package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "cleanviz/internal/errors"
	"cleanviz/internal/infrastructure"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name      string
		inbound   string
		wantReuse bool
	}{
		{"generates when absent", "", false},
		{"reuses inbound id", "req-123", true},
		{"replaces oversized id", strings.Repeat("x", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen, traceID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
				traceID = infrastructure.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set("X-Request-ID", tt.inbound)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
			assert.Equal(t, seen, traceID)
			assert.Equal(t, seen, GetRequestID(context.WithValue(context.Background(), middleware.RequestIDKey, seen)))
			if tt.wantReuse {
				assert.Equal(t, tt.inbound, seen)
			} else {
				assert.NotEqual(t, tt.inbound, seen)
				assert.Len(t, seen, 36)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)
	handler := RequestID(Recoverer(errorHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusInternalServerError), body["status"])
}

func TestRecoverer_AbortHandler(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)
	handler := Recoverer(errorHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRateLimiter(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)
	rl := NewRateLimiter(1, 2, errorHandler, testLogger())
	handler := rl.Handler(http.HandlerFunc(okHandler))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001").Code)

	limited := send("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), apierrors.CodeRateLimitExceeded)

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:5555"
	assert.Equal(t, "192.168.1.7", clientKey(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientKey(req))
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	handler := Timeout(50*time.Millisecond, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
		<-r.Context().Done()
		w.WriteHeader(http.StatusGatewayTimeout)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, ok)
	assert.False(t, deadline.IsZero())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestBodyLimit(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			errorHandler.HandleError(w, r, err)
			return
		}
		okHandler(w, r)
	}))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"within limit", "12345678", http.StatusOK},
		{"over limit", "123456789", http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		config      CORSConfig
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantVaryHdr bool
	}{
		{
			name:        "allowed origin",
			config:      CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}},
			method:      http.MethodGet,
			origin:      "http://localhost:8080",
			wantStatus:  http.StatusOK,
			wantOrigin:  "http://localhost:8080",
			wantVaryHdr: true,
		},
		{
			name:       "disallowed origin",
			config:     CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}},
			method:     http.MethodGet,
			origin:     "http://evil.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard without credentials",
			config:     CORSConfig{AllowedOrigins: []string{"*"}},
			method:     http.MethodGet,
			origin:     "http://any.example",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:        "wildcard with credentials echoes origin",
			config:      CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			method:      http.MethodGet,
			origin:      "http://any.example",
			wantStatus:  http.StatusOK,
			wantOrigin:  "http://any.example",
			wantCreds:   "true",
			wantVaryHdr: true,
		},
		{
			name:        "preflight short-circuits",
			config:      CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}},
			method:      http.MethodOptions,
			origin:      "http://localhost:8080",
			preflight:   true,
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "http://localhost:8080",
			wantVaryHdr: true,
		},
		{
			name:       "plain OPTIONS reaches handler",
			config:     CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}},
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(tt.config)(http.HandlerFunc(okHandler))

			req := httptest.NewRequest(tt.method, "/api/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantVaryHdr {
				assert.Equal(t, "Origin", w.Header().Get("Vary"))
			}
			if tt.wantOrigin != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
			}
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	r := chi.NewRouter()
	r.Use(RequestID, StructuredLogger(logger))
	r.Get("/api/health", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "log-test")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "log-test", entry["request_id"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, float64(2), entry["bytes"])
}

func TestSecureHeaders(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		handler := DefaultSecureHeaders().Handler(http.HandlerFunc(okHandler))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		h := w.Header()
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
		assert.Contains(t, h.Get("Content-Security-Policy"), "img-src 'self' data: blob:")
		assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
		assert.Empty(t, h.Get("Strict-Transport-Security"), "HSTS only over TLS")
	})

	t.Run("dev mode skips CSP", func(t *testing.T) {
		sh := DefaultSecureHeaders()
		sh.DevMode = true
		w := httptest.NewRecorder()
		sh.Handler(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
	})
}
