package transport

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Kind is the coarse category of a transport failure
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindUnreachable
	KindCanceled
)

func (k Kind) String() string {
	switch k {
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

// Classify maps an error returned by an http.Client to a Kind. Errors wrapped
// in *url.Error are unwrapped by errors.As.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnreachable
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return KindUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindUnreachable
	}

	return KindOther
}
