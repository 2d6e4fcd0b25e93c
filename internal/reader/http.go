package reader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/me/smkplugin/internal/config"
)

// maxDescriptorSize bounds a single descriptor download.
const maxDescriptorSize = 16 << 20

// HTTPReader fetches repository files from a raw-content host such as
// raw.githubusercontent.com. File URLs have the form
// <base>/<repository>/<ref>/<path>.
type HTTPReader struct {
	config config.HTTPReaderConfig
	repo   string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPReader creates an HTTPReader with the given configuration.
func NewHTTPReader(cfg config.HTTPReaderConfig, logger *slog.Logger) (*HTTPReader, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("http reader: repository is required")
	}

	tlsCfg, err := cfg.TLS.BuildTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("http reader: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     tlsCfg,
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPReader{
		config: cfg,
		repo:   repoRoot(cfg),
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger.With("component", "http-reader"),
	}, nil
}

// repoRoot builds the URL prefix for files of the configured repository.
func repoRoot(cfg config.HTTPReaderConfig) string {
	repo := strings.TrimRight(cfg.Repository, "/")
	if !strings.Contains(repo, "://") {
		base := cfg.BaseURL
		if base == "" {
			base = config.DefaultRawBaseURL
		}
		repo = strings.TrimRight(base, "/") + "/" + strings.Trim(repo, "/")
	}
	return repo
}

// ID returns the "owner/name" tail of the repository, or "" when the
// repository has fewer than two path segments.
func (r *HTTPReader) ID() string {
	split := strings.Split(r.repo, "/")
	if len(split) < 2 {
		return ""
	}
	return split[len(split)-2] + "/" + split[len(split)-1]
}

// URL returns the location the reader fetches path from.
func (r *HTTPReader) URL(path string) string {
	ref := r.config.Ref
	if ref == "" {
		ref = "main"
	}
	return r.repo + "/" + escapePath(ref) + "/" + escapePath(relPath(path))
}

// escapePath escapes each slash-separated segment of p.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// ReadFile downloads path. Failures are returned immediately.
func (r *HTTPReader) ReadFile(ctx context.Context, path string) (string, error) {
	fileURL := r.URL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("http reader: create request: %w", err)
	}

	r.applyAuth(req)
	r.applyHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http reader: %s: request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("http reader: %s: %w", path, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        fileURL,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorSize+1))
	if err != nil {
		return "", fmt.Errorf("http reader: %s: read body: %w", path, err)
	}
	if len(data) > maxDescriptorSize {
		return "", fmt.Errorf("http reader: %s: exceeds %d bytes", path, maxDescriptorSize)
	}
	r.logger.Debug("file fetched", "path", path, "url", fileURL, "bytes", len(data))
	return string(data), nil
}

// ListFiles returns an empty list: raw-content hosts expose no directory
// listing.
func (r *HTTPReader) ListFiles(_ context.Context, dir string) ([]string, error) {
	r.logger.Debug("directory listing not supported", "dir", dir, "repository", r.ID())
	return []string{}, nil
}

// applyAuth adds authentication to the request based on credentials.
func (r *HTTPReader) applyAuth(req *http.Request) {
	cred := r.lookupCredential(req.URL.Host)
	if cred == nil {
		return
	}
	switch cred.Type {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	case "basic":
		req.SetBasicAuth(cred.Username, cred.Password)
	case "header":
		if cred.HeaderName != "" {
			req.Header.Set(cred.HeaderName, cred.HeaderValue)
		}
	}
}

// lookupCredential finds credentials for a host, supporting wildcards.
func (r *HTTPReader) lookupCredential(host string) *config.CredentialSet {
	if r.config.Credentials == nil {
		return nil
	}

	if cred, ok := r.config.Credentials[host]; ok {
		return &cred
	}

	// Remove port from host for matching.
	hostOnly := host
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		hostOnly = host[:idx]
	}
	if cred, ok := r.config.Credentials[hostOnly]; ok {
		return &cred
	}

	parts := strings.Split(hostOnly, ".")
	if len(parts) >= 2 {
		wildcard := "*." + strings.Join(parts[1:], ".")
		if cred, ok := r.config.Credentials[wildcard]; ok {
			return &cred
		}
	}

	return nil
}

func (r *HTTPReader) applyHeaders(req *http.Request) {
	for k, v := range r.config.DefaultHeaders {
		req.Header.Set(k, v)
	}
}

// HTTPError represents a non-200 response from the content host.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Is lets a 404 match ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
