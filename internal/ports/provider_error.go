package ports

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Closed set of failure classes a provider call can end in.
// Only KindTransient is ever retried.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// Network-level failure: timeout, refused or reset connection.
	KindTransient
	// Provider answered with a non-success status (bad key, denied, invalid request).
	KindRejected
	// Provider answered successfully but without the requested data.
	KindNoData
	// Response could not be decoded or lacked required fields.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRejected:
		return "rejected"
	case KindNoData:
		return "no_data"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ProviderError is returned by every adapter in internal/adapters.
type ProviderError struct {
	Provider string
	Op       string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError classifies err as transient when it is a network error,
// otherwise tags it with fallback.
func NewProviderError(provider, op string, fallback ErrorKind, err error) *ProviderError {
	kind := fallback
	if isNetworkError(err) {
		kind = KindTransient
	}
	return &ProviderError{Provider: provider, Op: op, Kind: kind, Err: err}
}

// KindOf classifies any error returned by a provider call.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if isNetworkError(err) {
		return KindTransient
	}
	return KindUnknown
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool { return KindOf(err) == KindTransient }

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Outcome labels a finished provider call for metrics: "ok" or the error kind.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err).String()
}
