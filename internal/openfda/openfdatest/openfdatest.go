// Package openfdatest serves canned OpenFDA responses for tests.
package openfdatest

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

//go:embed responses.json
var responsesJSON []byte

// Records returns the sample records for every endpoint, keyed by path
func Records() map[string][]json.RawMessage {
	records := make(map[string][]json.RawMessage)
	if err := json.Unmarshal(responsesJSON, &records); err != nil {
		panic("openfdatest: invalid responses.json: " + err.Error())
	}
	return records
}

// CountResults is the canned body of every count query
var CountResults = []map[string]any{
	{"term": "NAUSEA", "count": 500},
	{"term": "HEADACHE", "count": 300},
	{"term": "FATIGUE", "count": 200},
}

// Server is a fake api.fda.gov. Search queries return the sample records of
// the endpoint; count queries return CountResults.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*url.URL
	records  map[string][]json.RawMessage
	handler  http.HandlerFunc
	total    int
}

// NewServer starts a fake server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{records: Records()}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetHandler replaces the default behaviour with h
func (s *Server) SetHandler(h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// SetTotal overrides meta.results.total of search responses
func (s *Server) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
}

// LastRequest returns the URL of the most recent request, or nil
func (s *Server) LastRequest() *url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// RequestCount returns the number of requests served
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := *r.URL
	s.requests = append(s.requests, &u)
	handler, total := s.handler, s.total
	s.mu.Unlock()

	if handler != nil {
		handler(w, r)
		return
	}

	endpoint := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")
	records, ok := s.records[endpoint]
	if !ok {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "No matches found!")
		return
	}

	if r.URL.Query().Get("count") != "" {
		writeJSON(w, http.StatusOK, map[string]any{"results": CountResults})
		return
	}

	if total <= 0 {
		total = len(records)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meta": map[string]any{
			"last_updated": "2024-01-01",
			"results":      map[string]any{"skip": 0, "limit": 10, "total": total},
		},
		"results": records,
	})
}

// WriteError writes an OpenFDA style error body
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
