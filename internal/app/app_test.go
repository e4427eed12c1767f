package app

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcast/internal/config"
	"demandcast/internal/shared/testutil"
)

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Forecast.Seed = 11
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := testutil.NewTestLogger(t)

	app, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication_Wiring(t *testing.T) {
	app := newTestApplication(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.ForecastService)
	assert.NotNil(t, app.HealthService)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestRoutes(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/api/health", wantStatus: http.StatusOK},
		{name: "readiness runs the engine check", method: http.MethodGet, target: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "liveness", method: http.MethodGet, target: "/api/health/live", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, target: "/api/version", wantStatus: http.StatusOK},
		{name: "sample", method: http.MethodGet, target: "/api/sample?months=3", wantStatus: http.StatusOK},
		{name: "unknown api route", method: http.MethodGet, target: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "unknown root route", method: http.MethodGet, target: "/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, target: "/api/forecast", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app.Router, tt.method, tt.target, "", "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestCompression(t *testing.T) {
	app := newTestApplication(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sample?months=3", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(zr).Decode(&body))
	assert.NotEmpty(t, body)

	plain := do(t, app.Router, http.MethodGet, "/api/sample?months=3", "", "")
	assert.Empty(t, plain.Header().Get("Content-Encoding"))
}

func TestPipelineOverHTTP(t *testing.T) {
	app := newTestApplication(t, nil)

	csv := "Date,Sales,Product\n2023-01-15,100,Widgets\n2023-02-15,110,Widgets\n2023-03-15,120,Widgets\n2023-04-15,130,Widgets\n"
	body, err := json.Marshal(map[string]interface{}{"csv": csv, "horizon": 2})
	require.NoError(t, err)

	rec := do(t, app.Router, http.MethodPost, "/api/run", "application/json", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run struct {
		RunID    string            `json:"run_id"`
		History  []json.RawMessage `json:"history"`
		Forecast []struct {
			Date     time.Time `json:"date"`
			Category string    `json:"category"`
		} `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.NotEmpty(t, run.RunID)
	assert.Len(t, run.History, 4)
	require.Len(t, run.Forecast, 2)
	assert.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), run.Forecast[0].Date)
	assert.Equal(t, "Widgets", run.Forecast[0].Category)

	t.Run("export the result", func(t *testing.T) {
		exportBody, err := json.Marshal(map[string]interface{}{
			"history":  json.RawMessage(`[{"date":"2023-04-01T00:00:00Z","actual":130,"forecast":null,"category":"Widgets"}]`),
			"forecast": json.RawMessage(`[{"date":"2023-05-01T00:00:00Z","actual":null,"forecast":140,"category":"Widgets"}]`),
		})
		require.NoError(t, err)

		rec := do(t, app.Router, http.MethodPost, "/api/export/csv", "application/json", string(exportBody))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "2023-05-01,Widgets,,140")
	})

	t.Run("metrics reflect the run", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodGet, "/metrics", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "import_rows_total")
		assert.Contains(t, rec.Body.String(), `http_route="/api/run"`)
	})
}

func TestRequestLimits(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadBytes = 128
		cfg.Security.RateLimit.RPS = 0.001
		cfg.Security.RateLimit.Burst = 3
	})

	rec := do(t, app.Router, http.MethodPost, "/api/import", "text/csv", "date,value\n"+strings.Repeat("2024-01-01,1\n", 20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, app.Router, http.MethodPost, "/api/forecast", "application/json", `{"history":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, app.Router, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app.Router, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Scrapes are not rate limited
	rec = do(t, app.Router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	app := newTestApplication(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/forecast", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsDisabled(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Telemetry.MetricsEnabled = false
	})

	rec := do(t, app.Router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStartStop(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.Port = 0
	})
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(ctx))
}
