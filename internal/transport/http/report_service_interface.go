package http

import (
	"context"

	"schoolcli/internal/dataprocessing"
	"schoolcli/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the HTTP layer needs
type ReportServiceInterface interface {
	AnalyzeUpload(ctx context.Context, table *dataprocessing.Table, topN int) (*domain.AnalysisResult, error)
	Render(result *domain.AnalysisResult) string
}
