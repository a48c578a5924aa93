package openfda

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies an OpenFDA failure
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindRateLimited
	KindInvalidSearch
	KindServer
	KindTimeout
	KindUnreachable
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidSearch:
		return "invalid_search"
	case KindServer:
		return "server_error"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindCanceled:
		return "canceled"
	default:
		return "other"
	}
}

// APIError is returned by Client.Query for any unsuccessful request. Its
// message is written for the calling agent and suggests a next step.
type APIError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Detail     string
	Timeout    time.Duration
	Err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return notFoundMessage(e.Detail, e.Endpoint)
	case KindRateLimited:
		return "OpenFDA API rate limit exceeded. " +
			"Set OPENFDA_API_KEY for higher limits (240 req/min vs 40). " +
			"Retry after a brief pause."
	case KindInvalidSearch:
		return invalidSearchMessage(e.Detail)
	case KindServer:
		return fmt.Sprintf("OpenFDA server error (HTTP %d). "+
			"The FDA API may be temporarily unavailable. Try again shortly.", e.StatusCode)
	case KindTimeout:
		if e.Timeout <= 0 {
			return "Request timed out. Try a more specific search query or increase timeout."
		}
		return fmt.Sprintf("Request timed out after %.1fs. "+
			"Try a more specific search query or increase timeout.", e.Timeout.Seconds())
	case KindCanceled:
		return "Request was cancelled before OpenFDA answered."
	case KindUnreachable:
		return "Could not connect to api.fda.gov. Check your network connection."
	default:
		if e.StatusCode > 0 {
			return fmt.Sprintf("OpenFDA request failed (HTTP %d).", e.StatusCode)
		}
		return fmt.Sprintf("OpenFDA request failed: %v", e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func notFoundMessage(detail, endpoint string) string {
	var b strings.Builder
	b.WriteString("No results found.")
	if detail != "" {
		b.WriteString(" " + detail)
	}
	b.WriteString("\nTroubleshooting:")
	if endpoint != "" {
		fmt.Fprintf(&b, "\n- Check field names with list_searchable_fields(endpoint=\"%s\").", endpoint)
	} else {
		b.WriteString("\n- Check field names with list_searchable_fields.")
	}
	b.WriteString("\n- Broaden the search: drop a clause or use a trailing wildcard (field:val*).")
	b.WriteString("\n- Quote multi-word values (field:\"two words\") and use .exact only with count queries.")
	return b.String()
}

func invalidSearchMessage(detail string) string {
	var b strings.Builder
	b.WriteString("Invalid search query syntax.")
	if detail != "" {
		b.WriteString(" " + detail)
	}
	b.WriteString("\nQuick reference: field:value, field:\"exact phrase\", " +
		"a:x+AND+b:y, a:x+b:y (OR), NOT+field:value, field:[20200101+TO+20231231], _exists_:field.")
	b.WriteString("\nUse list_searchable_fields to confirm field names, " +
		"or read the fda://reference/query-syntax resource for the full syntax.")
	return b.String()
}
