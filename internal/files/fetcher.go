package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"schoolcli/internal/config"
	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
)

// Fetcher downloads assessment files over HTTP(S).
type Fetcher struct {
	Client    *http.Client
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	// Files resolves and writes staged downloads; nil writes paths as given.
	Files     *Manager
}

// NewFetcher creates a fetcher from the fetch config section
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{},
		Timeout:   cfg.Timeout,
		MaxBytes:  cfg.MaxBytes,
		UserAgent: cfg.UserAgent,
	}
}

// Fetch GETs rawURL and returns the response body unchanged.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := parseFetchURL(rawURL); err != nil {
		return nil, err
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build request", err).WithContext("url", rawURL)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("request failed", err).WithContext("url", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("unexpected status %s", resp.Status), nil).
			WithContext("url", rawURL).
			WithContext("status", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read response body", err).WithContext("url", rawURL)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("response exceeds %d bytes", f.MaxBytes), nil).
			WithContext("url", rawURL)
	}

	slog.DebugContext(ctx, "Fetched remote file",
		slog.String("url", rawURL),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// FetchToFile downloads rawURL into dir, keeping the URL's file name so the
// loader can pick the format from its extension. It returns the local path.
func (f *Fetcher) FetchToFile(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := parseFetchURL(rawURL)
	if err != nil {
		return "", err
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", apperrors.NewAppValidationError("URL has no file name").WithContext("url", rawURL)
	}
	if _, err := dataprocessing.DetectFormat(name); err != nil {
		return "", err
	}

	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	manager := f.Files
	if manager == nil {
		manager = NewManager(nil)
	}

	dest := filepath.Join(dir, name)
	if err := manager.WriteFile(dest, data); err != nil {
		return "", apperrors.NewIOError("failed to save download", err).WithContext("path", dest)
	}
	return manager.CleanPath(dest), nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func parseFetchURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.NewAppValidationError("invalid URL").WithContext("url", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported URL scheme %q", u.Scheme)).
			WithContext("url", rawURL)
	}
	if u.Host == "" {
		return nil, apperrors.NewAppValidationError("URL has no host").WithContext("url", rawURL)
	}
	return u, nil
}
