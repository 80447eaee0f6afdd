// Package transport defines the outbound/inbound email capability consumed
// by the dispatcher and reply ingestor, plus the concrete adapters that
// implement it.
package transport

import (
	"context"
	"fmt"
	"net/http"
)

// Headers is a flat set of additional headers attached to an outbound send
// (e.g. a reply-routing token embedded as a custom header by some providers).
type Headers map[string]string

// InboundMessage is the normalized shape of a parsed reply/bounce webhook.
type InboundMessage struct {
	InReplyTo string
	From      string
	To        string
	Subject   string
	TextBody  string
	Bounced   bool
}

// EmailTransport is the capability set the dispatcher and reply ingestor
// depend on. Implementations must be safe to call from multiple goroutines.
type EmailTransport interface {
	// Send dispatches one email and returns the provider's message id.
	// A returned *TransportError distinguishes transient failures (worth
	// retrying) from permanent ones (fail immediately).
	Send(ctx context.Context, from, replyTo, to, subject, htmlBody string, headers Headers) (messageID string, err error)

	// VerifyInbound authenticates an inbound webhook request.
	VerifyInbound(r *http.Request) bool

	// ParseInbound extracts a normalized message from an authenticated
	// inbound webhook request.
	ParseInbound(r *http.Request) (InboundMessage, error)
}

// TransportError carries a provider's outcome for a Send call along with
// whether the dispatcher should retry it.
type TransportError struct {
	Provider   string
	StatusCode int
	Transient  bool
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Message, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether the dispatcher should retry this send.
func (e *TransportError) IsTransient() bool {
	return e.Transient
}

// transientHTTPStatus reports whether an HTTP status code from an ESP
// indicates a transient condition worth retrying, mirroring
// internal/pkg/httpretry's retryable-status set.
func transientHTTPStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
