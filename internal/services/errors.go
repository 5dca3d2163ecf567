package services

import "errors"

// Report service errors
var (
	// ErrNoAssessmentFiles is wrapped when a directory holds no supported files
	ErrNoAssessmentFiles = errors.New("no assessment files found")

	// ErrNilResult is returned when a report is requested without a result
	ErrNilResult = errors.New("analysis result is nil")
)
