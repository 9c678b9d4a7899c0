package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/formcoach/internal/metrics"
	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/store"
)

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	rec := serve(s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
	assert.NotContains(t, body, "sessions", "no session count without a manager")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "routes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mm, _ := metrics.NewTestManagerAndRegistry()
	s := New(Config{
		Store:    st,
		Sessions: session.NewManager(session.ManagerConfig{Exercises: st.Exercises()}),
		Metrics:  mm,
	})

	const id = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/health"},
		{http.MethodDelete, "/api/health"},
		{http.MethodPost, "/api/exercises"},
		{http.MethodDelete, "/api/exercises/squat"},
		{http.MethodPatch, "/api/exercises/squat"},
		{http.MethodPut, "/api/sessions"},
		{http.MethodPut, "/api/sessions/" + id},
		{http.MethodGet, "/api/sessions/" + id + "/reset"},
		{http.MethodPost, "/api/sessions/" + id + "/stream"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(s, tt.method, tt.path)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("Allow"), "405 lists the allowed methods")
		})
	}

	var rejected float64
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rejected += testutil.ToFloat64(mm.CounterRequests.WithLabelValues(method, "405"))
	}
	assert.Equal(t, float64(len(tests)), rejected, "rejected requests are still counted")
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		name string
		path string
	}{
		{"unknown api route", "/api/nonexistent"},
		{"root without static dir", "/"},
		{"exercises without a store", "/api/exercises"},
		{"sessions without a manager", "/api/sessions"},
		{"metrics without a registry", "/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, tt.path).Code)
		})
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	const page = "<html><body>FormCoach</body></html>"
	const css = "body { color: red; }"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte(css), 0644))

	s := New(Config{StaticDir: dir})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"index at root", "/", http.StatusOK, page},
		{"file by name", "/style.css", http.StatusOK, css},
		{"missing file", "/nonexistent.html", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, http.MethodGet, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/health").Code, "api routes win over static files")
}

func TestNew(t *testing.T) {
	cfg := Config{StaticDir: "/some/path"}
	s := New(cfg)
	require.NotNil(t, s)
	assert.Equal(t, cfg.StaticDir, s.config.StaticDir)

	var _ http.Handler = s
}

func TestServer_Metrics(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	s := New(Config{Registry: reg, Metrics: m})

	// One request first so the request counter has a sample.
	serve(s, http.MethodGet, "/api/health")

	rec := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "formcoach_http_requests_total")
	assert.Contains(t, body, "formcoach_http_request_duration_seconds")
	// The /metrics request itself is counted once it completes.
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues(http.MethodGet, "200")))
}
