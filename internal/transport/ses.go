package transport

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/outreachcore/campaign-engine/internal/logger"
)

// SESTransport sends through AWS SES v2 and authenticates inbound SNS/SES
// notification webhooks with a shared-secret HMAC signature carried in a
// custom header, since SES itself delivers bounce/complaint/reply
// notifications via SNS rather than a provider-signed HTTP callback.
type SESTransport struct {
	client        *sesv2.Client
	webhookSecret string
}

// NewSESTransport builds a transport backed by an existing SES v2 client.
func NewSESTransport(client *sesv2.Client, webhookSecret string) *SESTransport {
	return &SESTransport{client: client, webhookSecret: webhookSecret}
}

func (t *SESTransport) Send(ctx context.Context, from, replyTo, to, subject, htmlBody string, headers Headers) (string, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				},
				Headers: headersToMimeHeaders(headers),
			},
		},
	}
	if replyTo != "" {
		input.ReplyToAddresses = []string{replyTo}
	}

	out, err := t.client.SendEmail(ctx, input)
	if err != nil {
		logger.Warn("ses send failed", "to", to, "error", err.Error())
		return "", &TransportError{
			Provider:  "ses",
			Transient: isTransientAWSError(err),
			Message:   "send email failed",
			Cause:     err,
		}
	}
	return aws.ToString(out.MessageId), nil
}

func (t *SESTransport) VerifyInbound(r *http.Request) bool {
	sig := r.Header.Get("X-Webhook-Signature")
	if sig == "" || t.webhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(t.webhookSecret))
	mac.Write([]byte(r.Header.Get("X-Webhook-Timestamp")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (t *SESTransport) ParseInbound(r *http.Request) (InboundMessage, error) {
	if err := r.ParseForm(); err != nil {
		return InboundMessage{}, fmt.Errorf("ses: parse inbound form: %w", err)
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

func headersToMimeHeaders(h Headers) []types.MessageHeader {
	if len(h) == 0 {
		return nil
	}
	out := make([]types.MessageHeader, 0, len(h))
	for k, v := range h {
		out = append(out, types.MessageHeader{Name: aws.String(k), Value: aws.String(v)})
	}
	return out
}

// isTransientAWSError treats throttling and 5xx-class SES API errors as
// transient, mirroring the transport package's shared status classification.
func isTransientAWSError(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	code := apiErr.ErrorCode()
	return strings.Contains(code, "Throttl") ||
		strings.Contains(code, "TooManyRequests") ||
		strings.Contains(code, "ServiceUnavailable") ||
		strings.Contains(code, "InternalFailure")
}
