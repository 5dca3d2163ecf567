package config

import "time"

// Application constants
const (
	AppName    = "school-assessment"
	AppVersion = "1.0.0"

	DefaultNameColumn     = "Name"
	DefaultSemesterColumn = "Semester"
	DefaultTopN           = 5

	// Rate Limiting
	DefaultRateLimitRPS = 10
	DefaultBurstSize    = 20

	// Network
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultMaxFetchBytes = 32 << 20

	// Uploads
	DefaultMaxUploadBytes = 10 << 20

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultCacheDir   = "data/cache"
	DefaultLogsDir    = "logs"
)

// DefaultCourses is the fixed course list of the assessment workbook.
var DefaultCourses = []string{"INF 652", "CSC 241", "ITM 101", "ITM 371", "COSC 201"}
