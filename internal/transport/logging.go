package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/outreachcore/campaign-engine/internal/logger"
)

// LoggingTransport is a no-op EmailTransport for local development and
// tests: it writes the would-be send to the structured logger instead of
// calling a network API, and always authenticates inbound requests.
type LoggingTransport struct{}

// NewLoggingTransport builds a transport that never contacts a real ESP.
func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

func (t *LoggingTransport) Send(ctx context.Context, from, replyTo, to, subject, htmlBody string, headers Headers) (string, error) {
	messageID := fmt.Sprintf("dev-%s", uuid.New().String())
	logger.Info("logging transport send",
		"from", from, "to", to, "subject", subject, "message_id", messageID)
	return messageID, nil
}

func (t *LoggingTransport) VerifyInbound(r *http.Request) bool {
	return true
}

func (t *LoggingTransport) ParseInbound(r *http.Request) (InboundMessage, error) {
	if err := r.ParseForm(); err != nil {
		return InboundMessage{}, fmt.Errorf("logging transport: parse inbound form: %w", err)
	}
	return InboundMessage{
		InReplyTo: r.FormValue("in_reply_to"),
		From:      r.FormValue("from"),
		To:        r.FormValue("to"),
		Subject:   r.FormValue("subject"),
		TextBody:  r.FormValue("text"),
		Bounced:   r.FormValue("event") == "bounce",
	}, nil
}
