// Package files finds, fetches and stages assessment files.
//
// This package contains three components:
//
// Discovery: lists the .csv, .xlsx and tab-separated .txt files in a
// directory so they can be merged.
//
// Fetcher: downloads a remote file over HTTP(S) with a timeout and a size
// cap. FetchToFile keeps the URL's file name so the loader can pick the
// format from the extension.
//
// Manager: resolves "reports/", "cache/" and "logs/" paths against the
// configured directories and writes files.
//
// Example usage:
//
//	fetcher := files.NewFetcher(cfg.Fetch)
//	fetcher.Files = files.NewManager(paths)
//	local, err := fetcher.FetchToFile(ctx, "https://example.org/fall.csv", "cache")
package files
