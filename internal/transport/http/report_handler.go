package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"schoolcli/internal/dataprocessing"
	apierrors "schoolcli/internal/errors"
	"schoolcli/internal/middleware"
	api "schoolcli/pkg/contracts/api/v1"
	"schoolcli/pkg/contracts/domain"
)

const defaultMultipartMemory = 32 << 20

// ReportHandler turns uploaded assessment files into reports
type ReportHandler struct {
	service        ReportServiceInterface
	validator      *middleware.RequestValidator
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler. Uploads above maxUploadBytes
// are rejected with 413.
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:        service,
		validator:      middleware.NewRequestValidator(logger),
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("component", "report_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

	r.Post("/", h.CreateReport)
	r.Post("/text", h.CreateTextReport)

	return r
}

// CreateReport handles POST /api/v1/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyzeUpload(w, r)
	if !ok {
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, api.ReportResponse{
		Status: "success",
		Data:   result,
		Report: h.service.Render(result),
	})
}

// CreateTextReport handles POST /api/v1/reports/text
func (h *ReportHandler) CreateTextReport(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyzeUpload(w, r)
	if !ok {
		return
	}

	render.PlainText(w, r, h.service.Render(result))
}

// analyzeUpload decodes the multipart upload and runs the analysis. On
// failure it writes the problem response and returns false.
func (h *ReportHandler) analyzeUpload(w http.ResponseWriter, r *http.Request) (*domain.AnalysisResult, bool) {
	ctx := r.Context()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	memory := h.maxUploadBytes
	if memory <= 0 {
		memory = defaultMultipartMemory
	}

	if err := r.ParseMultipartForm(memory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Uploaded file exceeds the maximum allowed size",
				map[string]interface{}{"max_size": h.maxUploadBytes},
			))
			return nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	req := api.ReportRequest{}
	if raw := strings.TrimSpace(r.FormValue(api.FormFieldTop)); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(api.FormFieldTop,
				fmt.Sprintf("%s must be a valid integer", api.FormFieldTop)))
			return nil, false
		}
		req.Top = top
	}

	file, header, err := r.FormFile(api.FormFieldFile)
	if err == nil {
		defer file.Close()
		req.Filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	format, err := dataprocessing.DetectFormat(req.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	h.logger.InfoContext(ctx, "Report upload received",
		slog.String("file", req.Filename),
		slog.String("format", string(format)),
		slog.Int64("size", header.Size),
		slog.Int("top", req.Top))

	table, err := dataprocessing.ParseReader(file, format, req.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	result, err := h.service.AnalyzeUpload(ctx, table, req.Top)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	return result, true
}
