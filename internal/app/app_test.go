package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolcli/internal/config"
	api "schoolcli/pkg/contracts/api/v1"
)

const sampleCSV = "Name,Semester,INF 652,CSC 241,ITM 101,ITM 371,COSC 201\n" +
	"Alice,Fall,95,85,90,88,92\n" +
	"Bob,Spring,55,65,60,58,62\n"

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	application, err := NewApplication(cfg, logger, t.TempDir())
	require.NoError(t, err)
	return application
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(api.FormFieldFile, filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField(api.FormFieldTop, "1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNewApplication_CreatesDirectories(t *testing.T) {
	application := newTestApp(t, nil)

	for _, dir := range []string{
		application.Paths.DataDir,
		application.Paths.ReportsDir,
		application.Paths.CacheDir,
		application.Paths.LogsDir,
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	assert.NotNil(t, application.ReportService)
	assert.NotNil(t, application.HealthService)
	assert.Equal(t, ":0", application.Server.Addr)
}

func TestRouter(t *testing.T) {
	application := newTestApp(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantInBody string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/api/health/ready", http.StatusOK, `"status":"ready"`},
		{"live", http.MethodGet, "/api/health/live", http.StatusOK, `"status":"alive"`},
		{"version", http.MethodGet, "/api/version", http.StatusOK, `"api_version":"v1"`},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, "/errors/not-found"},
		{"wrong method", http.MethodPost, "/api/health", http.StatusMethodNotAllowed, "Method POST is not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			application.Router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.wantInBody)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRouter_ReportUpload(t *testing.T) {
	application := newTestApp(t, nil)

	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, uploadRequest(t, "/api/v1/reports", "grades.csv", sampleCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "COSC 201", resp.Data.HighestCourse.Course)
	assert.Equal(t, "Fall", resp.Data.BestSemester.Semester)
	require.Len(t, resp.Data.TopStudents, 1)
	assert.Equal(t, "Alice", resp.Data.TopStudents[0].Name)
	assert.Contains(t, resp.Report, "School Assessment Summary Report")

	w = httptest.NewRecorder()
	application.Router.ServeHTTP(w, uploadRequest(t, "/api/v1/reports", "grades.csv", "Name,Semester\nAlice,Fall\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_COLUMN")

	metrics := httptest.NewRecorder()
	application.Router.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `operation="analyze_table"`)
	assert.Contains(t, metrics.Body.String(), `error_kind="MISSING_COLUMN"`)
}

func TestRouter_RateLimit(t *testing.T) {
	application := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.RPS = 0.001
		cfg.Security.RateLimit.Burst = 1
	})

	first := httptest.NewRecorder()
	application.Router.ServeHTTP(first, uploadRequest(t, "/api/v1/reports", "grades.csv", sampleCSV))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	application.Router.ServeHTTP(second, uploadRequest(t, "/api/v1/reports", "grades.csv", sampleCSV))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// health endpoints sit outside the limited group
	health := httptest.NewRecorder()
	application.Router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestServe_GracefulShutdown(t *testing.T) {
	application := newTestApp(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestNewApplication_TelemetryDisabled(t *testing.T) {
	application := newTestApp(t, func(cfg *config.Config) {
		cfg.Telemetry.Enabled = false
	})
	assert.Nil(t, application.OTelProviders.PrometheusHTTP)

	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := os.Stat(filepath.Join(application.Paths.BaseDir, config.DefaultReportsDir))
	assert.NoError(t, err)
}
