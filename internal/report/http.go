package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const userAgent = "compatctl/1.0 (add-on compatibility checker)"

// HTTPSource downloads the report with a single GET.
type HTTPSource struct {
	url    string
	logger *log.Logger
	client *http.Client
}

// NewHTTPSource creates a source for the report at url
func NewHTTPSource(url string, logger *log.Logger) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{
		url:    url,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads and parses the report.
func (s *HTTPSource) Fetch(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("Fetching compatibility report", "url", s.url)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrFetch, err)
	}

	result, err := parse(s.url, body)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fetched compatibility report",
		"addons", len(result.Report.Addons),
		"generated", result.Report.Generated)

	return result, nil
}
