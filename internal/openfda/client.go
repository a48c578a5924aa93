package openfda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/a3tai/fda-mcp/internal/transport"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxConcurrent = 4
)

// ClientConfig configures a Client
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxConcurrent int
	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client queries OpenFDA endpoints with a bound on in-flight requests
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	sem     *semaphore.Weighted
	logger  zerolog.Logger
}

// NewClient creates a new OpenFDA client
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = transport.NewHTTPClient(cfg.Timeout, cfg.Logger)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    httpClient,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger:  cfg.Logger,
	}
}

// Query is one OpenFDA request. Zero values are left out of the URL.
type Query struct {
	Endpoint string
	Search   string
	Count    string
	Limit    int
	Skip     int
	Sort     string
}

func (q Query) values(apiKey string) url.Values {
	v := url.Values{}
	if apiKey != "" {
		v.Set("api_key", apiKey)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Count != "" {
		v.Set("count", q.Count)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// ResultsMeta is the pagination block of a response
type ResultsMeta struct {
	Skip  int  `json:"skip"`
	Limit int  `json:"limit"`
	Total *int `json:"total"`
}

// Meta is the response metadata envelope
type Meta struct {
	LastUpdated string      `json:"last_updated"`
	Results     ResultsMeta `json:"results"`
}

// Response is a decoded OpenFDA response. Numbers inside records are kept as
// json.Number.
type Response struct {
	Meta    Meta             `json:"meta"`
	Results []map[string]any `json:"results"`
}

// Total returns meta.results.total, or the number of records when absent
func (r *Response) Total() int {
	if r.Meta.Results.Total != nil {
		return *r.Meta.Results.Total
	}
	return len(r.Results)
}

// CountResult is one bucket of a count query
type CountResult struct {
	Term  any
	Count int64
}

// Counts interprets the results of a count query
func (r *Response) Counts() []CountResult {
	counts := make([]CountResult, 0, len(r.Results))
	for _, rec := range r.Results {
		cr := CountResult{Term: rec["term"]}
		if cr.Term == nil {
			cr.Term = "N/A"
		}
		switch n := rec["count"].(type) {
		case json.Number:
			cr.Count, _ = n.Int64()
		case float64:
			cr.Count = int64(n)
		}
		counts = append(counts, cr)
	}
	return counts
}

// Query runs q and decodes the response
func (c *Client) Query(ctx context.Context, q Query) (*Response, error) {
	ep, err := ResolveEndpoint(q.Endpoint)
	if err != nil {
		return nil, err
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, c.transportError(ctx, q.Endpoint, err)
	}
	defer c.sem.Release(1)

	reqURL := ep.URL(c.baseURL)
	if params := q.values(c.apiKey).Encode(); params != "" {
		reqURL += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := c.transportError(ctx, q.Endpoint, err)
		c.logger.Warn().Err(err).Str("endpoint", q.Endpoint).Str("kind", apiErr.Kind.String()).Msg("openfda request failed")
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Endpoint: q.Endpoint, Timeout: c.timeout, Err: err}
	}

	c.logger.Debug().
		Str("endpoint", q.Endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("openfda response")

	if apiErr := statusError(q.Endpoint, resp.StatusCode, body); apiErr != nil {
		return nil, apiErr
	}

	var out Response
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", q.Endpoint, err)
	}
	return &out, nil
}

// transportError classifies a failure that produced no HTTP response. When
// ctx itself expired the configured timeout is not what fired.
func (c *Client) transportError(ctx context.Context, endpoint string, err error) *APIError {
	apiErr := &APIError{Kind: KindOther, Endpoint: endpoint, Timeout: c.timeout, Err: err}
	switch transport.Classify(err) {
	case transport.KindTimeout:
		apiErr.Kind = KindTimeout
		if ctx.Err() != nil {
			apiErr.Timeout = 0
		}
	case transport.KindUnreachable:
		apiErr.Kind = KindUnreachable
	case transport.KindCanceled:
		apiErr.Kind = KindCanceled
	}
	return apiErr
}

func statusError(endpoint string, status int, body []byte) *APIError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Endpoint: endpoint, StatusCode: status}
	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, Endpoint: endpoint, StatusCode: status}
	case status == http.StatusBadRequest:
		return &APIError{Kind: KindInvalidSearch, Endpoint: endpoint, StatusCode: status, Detail: errorDetail(body)}
	case status >= 500:
		return &APIError{Kind: KindServer, Endpoint: endpoint, StatusCode: status}
	default:
		return &APIError{Kind: KindOther, Endpoint: endpoint, StatusCode: status}
	}
}

// errorDetail pulls error.message out of an OpenFDA error body
func errorDetail(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Error.Message
}
