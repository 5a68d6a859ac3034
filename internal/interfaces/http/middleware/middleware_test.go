package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Prologos-Jurimetrics/internal/testutil"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequestID_MintsAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRequestLogging_LevelsAndRoutePattern(t *testing.T) {
	log := testutil.NewMockLogger()
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogging(log, nil, DefaultLoggingConfig()))
	r.Get("/adjudicators/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("fine")) })

	for _, path := range []string{"/adjudicators/7", "/boom", "/healthz", "/ok?x=1"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	warn, ok := log.Find("warn", "HTTP request completed with client error")
	require.True(t, ok)
	route, _ := warn.Field("route")
	assert.Equal(t, "/adjudicators/{id}", route)
	status, _ := warn.Field("status")
	assert.Equal(t, http.StatusNotFound, status)

	assert.True(t, log.HasMessage("error", "HTTP request completed with server error"))
	info, ok := log.Find("info", "HTTP request completed")
	require.True(t, ok)
	path, _ := info.Field("path")
	assert.Equal(t, "/ok?x=1", path)
	bytes, _ := info.Field("bytes")
	assert.Equal(t, int64(4), bytes)

	assert.Len(t, log.GetMessages(), 3, "probes are not logged")
}

func TestRecoverer_ReturnsEnvelope(t *testing.T) {
	log := testutil.NewMockLogger()
	h := RequestID(Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	})))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body common.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "COMMON_001", body.Error.Code)
	assert.Equal(t, "req-1", body.RequestID)
	assert.True(t, log.HasMessage("error", "panic while serving request"))
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://painel.prologos.app"}
	h := CORS(cfg)(okHandler())

	t.Run("preflight", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/v1/harvests", nil)
		r.Header.Set("Origin", "https://painel.prologos.app")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://painel.prologos.app", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
		assert.Empty(t, w.Body.String())
	})

	t.Run("simple request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
		r.Header.Set("Origin", "https://PAINEL.prologos.app")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://PAINEL.prologos.app", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
	})

	t.Run("foreign origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowedOrigins = []string{"*"}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		CORS(cfg)(okHandler()).ServeHTTP(w, r)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestTokenBucketLimiter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewTokenBucketLimiter(0.5, 2)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, wait := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 2*time.Second, wait)

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per client")

	now = now.Add(2 * time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
	assert.Equal(t, 2, l.BucketCount())
}

func TestTokenBucketLimiter_DropsIdleClients(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewTokenBucketLimiter(1, 1)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("10.0.0.1")
	require.True(t, ok)

	now = now.Add(time.Minute)
	for i := 0; i < 1023; i++ {
		l.Allow("10.0.0.2")
	}
	assert.Equal(t, 1, l.BucketCount())
}

func TestRateLimit_Rejects(t *testing.T) {
	h := RateLimit(NewTokenBucketLimiter(0.001, 1))(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/harvests", nil)
	r.RemoteAddr = "192.0.2.10:5555"

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body common.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "COMMON_007", body.Error.Code)
}

func TestDeadline_BoundsContext(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Deadline(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	}))

	start := time.Now()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/adjudicators/1/dossier", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)
}

func TestDeadline_ZeroLeavesRouteUnchanged(t *testing.T) {
	var ok bool
	h := Deadline(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner}
	assert.Same(t, inner, rec.Unwrap())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:4000"
	assert.Equal(t, "203.0.113.5", ClientIP(r))
	r.RemoteAddr = "203.0.113.5"
	assert.Equal(t, "203.0.113.5", ClientIP(r))
}

//Personal.AI order the ending
