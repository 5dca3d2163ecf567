// Package api contains the HTTP contract of the assessment report API.
// Version v1 represents the current stable API version.
package api

import (
	"schoolcli/pkg/contracts/domain"
)

// Form fields of a report upload
const (
	FormFieldFile = "file"
	FormFieldTop  = "top"
)

// ReportRequest is a multipart report upload after decoding
type ReportRequest struct {
	Filename string `form:"file" validate:"required"`
	Top      int    `form:"top" validate:"omitempty,gte=1,lte=100"`
}

// ReportResponse is the JSON body of POST /api/v1/reports
type ReportResponse struct {
	Status string                 `json:"status"`
	Data   *domain.AnalysisResult `json:"data"`
	Report string                 `json:"report"`
}
