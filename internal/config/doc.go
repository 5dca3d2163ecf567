// Package config provides centralized configuration management for the
// assessment analyzer and its HTTP service.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Default values (Default)
//  2. A YAML file: $SCHOOL_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//  3. Environment variables, after a .env file in the working directory has
//     been loaded into the process environment
//
// # Environment Variables
//
// All environment variables use the SCHOOL_ prefix followed by the section:
//
//	SCHOOL_ANALYSIS_COURSES="INF 652,CSC 241,ITM 101"
//	SCHOOL_ANALYSIS_TOP_N=5
//	SCHOOL_SERVER_PORT=8080
//	SCHOOL_LOGGING_LEVEL=debug
//	SCHOOL_FETCH_TIMEOUT=10s
//	SCHOOL_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// PathsConfig holds relative directories; Resolve anchors them to a base
// directory and EnsureDirectories creates them:
//
//	paths, err := cfg.Paths.Resolve("")
//	reportPath := paths.GetReportPath("summary.txt")
package config
