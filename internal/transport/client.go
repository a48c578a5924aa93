// Package transport builds the HTTP client shared by the document fetcher and
// the openFDA API client, and classifies the failures it can return.
package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// UserAgent identifies this server to FDA hosts
const UserAgent = "fda-mcp/1.0 (+https://github.com/a3tai/fda-mcp)"

// NewHTTPClient returns a client with the given overall timeout whose
// requests are logged at debug level. Redirects are followed.
func NewHTTPClient(timeout time.Duration, logger zerolog.Logger) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &loggingTransport{
			next:   http.DefaultTransport,
			logger: logger,
		},
	}
}

type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	event := t.logger.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Dur("elapsed", time.Since(start))
	if err != nil {
		event.Err(err).Msg("http request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("http request")
	return resp, nil
}
