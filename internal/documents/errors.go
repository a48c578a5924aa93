package documents

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/a3tai/fda-mcp/internal/transport"
)

// Sentinels matched by TransportError.Is
var (
	ErrTransportTimeout     = errors.New("transport timeout")
	ErrTransportUnreachable = errors.New("transport unreachable")
)

// InvalidIdentifierError reports a submission number or document type that
// does not match the expected format.
type InvalidIdentifierError struct {
	Identifier string
	Expected   string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("Invalid identifier '%s'. Expected format: %s", e.Identifier, e.Expected)
}

// DocumentNotFoundError is returned when the document server answers 404
type DocumentNotFoundError struct {
	URL string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("Document not found at %s. Verify the submission number is correct.", e.URL)
}

// FetchFailedError is returned for non-2xx responses other than 404, and for
// bodies over the configured size limit.
type FetchFailedError struct {
	URL        string
	StatusCode int
	TooLarge   bool
	Limit      int64
}

func (e *FetchFailedError) Error() string {
	if e.TooLarge {
		return fmt.Sprintf("Failed to fetch document from %s (document exceeds %d bytes).", e.URL, e.Limit)
	}
	return fmt.Sprintf("Failed to fetch document from %s (HTTP %d).", e.URL, e.StatusCode)
}

// TransportError wraps a network level failure. Use errors.Is with
// ErrTransportTimeout or ErrTransportUnreachable to tell them apart. A zero
// Timeout means a deadline other than the fetch timeout expired.
type TransportError struct {
	URL     string
	Kind    transport.Kind
	Timeout time.Duration
	Err     error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case transport.KindTimeout:
		if e.Timeout <= 0 {
			return fmt.Sprintf("Timed out fetching %s. The FDA document server may be slow; try again.", e.URL)
		}
		return fmt.Sprintf("Timed out after %gs fetching %s. The FDA document server may be slow; try again.",
			e.Timeout.Seconds(), e.URL)
	case transport.KindCanceled:
		return fmt.Sprintf("Fetching %s was cancelled.", e.URL)
	case transport.KindUnreachable:
		return fmt.Sprintf("Could not connect to %s. Check your network connection.", hostOf(e.URL))
	default:
		return fmt.Sprintf("Failed to fetch document from %s: %v", e.URL, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransportTimeout:
		return e.Kind == transport.KindTimeout
	case ErrTransportUnreachable:
		return e.Kind == transport.KindUnreachable
	}
	return false
}

// CorruptDocumentError is returned when the downloaded body cannot be parsed
// as a PDF at all.
type CorruptDocumentError struct {
	URL    string
	Reason string
	Err    error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("Document at %s could not be read as a PDF: %s.", e.URL, e.Reason)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Err
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
