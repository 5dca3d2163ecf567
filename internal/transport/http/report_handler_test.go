package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"schoolcli/internal/dataprocessing"
	apierrors "schoolcli/internal/errors"
	api "schoolcli/pkg/contracts/api/v1"
	"schoolcli/pkg/contracts/domain"
)

const uploadCSV = "Name,Semester,INF 652,CSC 241,ITM 101,ITM 371,COSC 201\n" +
	"Alice,Fall,95,85,90,88,92\n"

// MockReportService is a mock for ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) AnalyzeUpload(ctx context.Context, table *dataprocessing.Table, topN int) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, table, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockReportService) Render(result *domain.AnalysisResult) string {
	return m.Called(result).String(0)
}

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		HighestCourse: domain.CourseAverage{Course: "COSC 201", Average: 92},
		LowestCourse:  domain.CourseAverage{Course: "CSC 241", Average: 85},
		BestSemester:  domain.SemesterAverage{Semester: "Fall", Average: 450, Students: 1},
		WorstSemester: domain.SemesterAverage{Semester: "Fall", Average: 450, Students: 1},
		TopStudents:   []domain.StudentRanking{{Name: "Alice", Semester: "Fall", Total: 450, BestCourse: "INF 652"}},
		RowCount:      1,
		Source:        "fall.csv",
	}
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile(api.FormFieldFile, filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func newTestRouter(service ReportServiceInterface, maxUpload int64) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewReportHandler(service, logger, apierrors.NewErrorHandler(logger, false), maxUpload)

	r := chi.NewRouter()
	r.Mount("/api/v1/reports", handler.Routes())
	return r
}

func TestReportHandler_CreateReport(t *testing.T) {
	svc := new(MockReportService)
	result := sampleResult()

	svc.On("AnalyzeUpload", mock.Anything, mock.MatchedBy(func(table *dataprocessing.Table) bool {
		return table.Source == "fall.csv" && table.Len() == 1 && table.Format == dataprocessing.FormatCSV
	}), 3).Return(result, nil)
	svc.On("Render", result).Return("School Assessment Summary Report\n")

	body, contentType := multipartBody(t, "fall.csv", uploadCSV, map[string]string{"top": "3"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	newTestRouter(svc, 1<<20).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var resp api.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "School Assessment Summary Report\n", resp.Report)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "COSC 201", resp.Data.HighestCourse.Course)
	assert.Equal(t, "Alice", resp.Data.TopStudents[0].Name)

	svc.AssertExpectations(t)
}

func TestReportHandler_CreateTextReport(t *testing.T) {
	svc := new(MockReportService)
	result := sampleResult()
	svc.On("AnalyzeUpload", mock.Anything, mock.Anything, 0).Return(result, nil)
	svc.On("Render", result).Return("report body\nReport Generated on: 2026-10-16\n")

	body, contentType := multipartBody(t, "fall.txt", strings.ReplaceAll(uploadCSV, ",", "\t"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/text", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	newTestRouter(svc, 1<<20).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "report body\nReport Generated on: 2026-10-16\n", w.Body.String())
	svc.AssertExpectations(t)
}

func TestReportHandler_Errors(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		fields      map[string]string
		contentType string
		serviceErr  error
		maxUpload   int64
		wantStatus  int
		wantInBody  string
	}{
		{
			name:       "missing file",
			fields:     map[string]string{"top": "5"},
			wantStatus: http.StatusBadRequest,
			wantInBody: "file is required",
		},
		{
			name:       "top not an integer",
			filename:   "fall.csv",
			content:    uploadCSV,
			fields:     map[string]string{"top": "five"},
			wantStatus: http.StatusBadRequest,
			wantInBody: "top must be a valid integer",
		},
		{
			name:       "top below one",
			filename:   "fall.csv",
			content:    uploadCSV,
			fields:     map[string]string{"top": "-2"},
			wantStatus: http.StatusBadRequest,
			wantInBody: "top must be greater than or equal to 1",
		},
		{
			name:       "unsupported extension",
			filename:   "fall.pdf",
			content:    "%PDF",
			wantStatus: http.StatusUnsupportedMediaType,
			wantInBody: "UNSUPPORTED_FORMAT",
		},
		{
			name:       "empty upload",
			filename:   "fall.csv",
			content:    "",
			wantStatus: http.StatusUnprocessableEntity,
			wantInBody: "EMPTY_DATASET",
		},
		{
			name:       "missing column from analysis",
			filename:   "fall.csv",
			content:    uploadCSV,
			serviceErr: apierrors.NewMissingColumnError("ITM 371"),
			wantStatus: http.StatusUnprocessableEntity,
			wantInBody: "MISSING_COLUMN",
		},
		{
			name:       "non numeric value from analysis",
			filename:   "fall.csv",
			content:    uploadCSV,
			serviceErr: apierrors.NewNonNumericValueError("INF 652", 1, "ninety", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantInBody: "NON_NUMERIC_VALUE",
		},
		{
			name:       "upload too large",
			filename:   "fall.csv",
			content:    strings.Repeat(uploadCSV, 64),
			maxUpload:  256,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantInBody: "PAYLOAD_TOO_LARGE",
		},
		{
			name:        "not multipart",
			contentType: "application/json",
			wantStatus:  http.StatusUnsupportedMediaType,
			wantInBody:  "UNSUPPORTED_MEDIA_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			if tt.serviceErr != nil {
				svc.On("AnalyzeUpload", mock.Anything, mock.Anything, 0).Return(nil, tt.serviceErr)
			}

			body, contentType := multipartBody(t, tt.filename, tt.content, tt.fields)
			if tt.contentType != "" {
				contentType = tt.contentType
			}
			maxUpload := tt.maxUpload
			if maxUpload == 0 {
				maxUpload = 1 << 20
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			newTestRouter(svc, maxUpload).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.wantInBody)
			assert.Contains(t, w.Header().Get("Content-Type"), "json")

			svc.AssertExpectations(t)
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "AnalyzeUpload", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
