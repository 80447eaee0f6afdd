package transport

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/outreachcore/campaign-engine/internal/logger"
	"github.com/outreachcore/campaign-engine/internal/pkg/httpretry"
)

const sparkpostTransmissionsURL = "https://api.sparkpost.com/api/v1/transmissions"

// SparkPostTransport sends through SparkPost's HTTP transmissions API,
// retrying transient failures via internal/pkg/httpretry, and authenticates
// inbound relay webhooks with HTTP Basic credentials.
type SparkPostTransport struct {
	apiKey         string
	webhookUser    string
	webhookPass    string
	httpClient     httpretry.HTTPDoer
}

// NewSparkPostTransport builds a transport using the given API key and
// inbound-webhook Basic-auth credentials. If doer is nil, a retrying client
// wrapping the default http.Client is used.
func NewSparkPostTransport(apiKey, webhookUser, webhookPass string, doer httpretry.HTTPDoer) *SparkPostTransport {
	if doer == nil {
		doer = httpretry.NewRetryClient(nil, 3)
	}
	return &SparkPostTransport{apiKey: apiKey, webhookUser: webhookUser, webhookPass: webhookPass, httpClient: doer}
}

type sparkpostRecipient struct {
	Address struct {
		Email string `json:"email"`
	} `json:"address"`
}

type sparkpostContent struct {
	From    map[string]string `json:"from"`
	Subject string             `json:"subject"`
	HTML    string             `json:"html"`
	ReplyTo string             `json:"reply_to,omitempty"`
	Headers map[string]string  `json:"headers,omitempty"`
}

type sparkpostTransmission struct {
	Recipients []sparkpostRecipient `json:"recipients"`
	Content    sparkpostContent     `json:"content"`
}

type sparkpostResponse struct {
	Results struct {
		ID string `json:"id"`
	} `json:"results"`
	Errors []struct {
		Message     string `json:"message"`
		Description string `json:"description"`
		Code        string `json:"code"`
	} `json:"errors"`
}

func (t *SparkPostTransport) Send(ctx context.Context, from, replyTo, to, subject, htmlBody string, headers Headers) (string, error) {
	body := sparkpostTransmission{
		Recipients: []sparkpostRecipient{{}},
		Content: sparkpostContent{
			From:    map[string]string{"email": from},
			Subject: subject,
			HTML:    htmlBody,
			ReplyTo: replyTo,
			Headers: headers,
		},
	}
	body.Recipients[0].Address.Email = to

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("sparkpost: marshal transmission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sparkpostTransmissionsURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("sparkpost: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", t.apiKey)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Provider: "sparkpost", Transient: true, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		logger.Warn("sparkpost send failed", "to", to, "status", resp.StatusCode)
		return "", &TransportError{
			Provider:   "sparkpost",
			StatusCode: resp.StatusCode,
			Transient:  transientHTTPStatus(resp.StatusCode),
			Message:    string(respBody),
		}
	}

	var parsed sparkpostResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &TransportError{Provider: "sparkpost", Transient: true, Message: "unparseable response", Cause: err}
	}
	if parsed.Results.ID == "" {
		return "", &TransportError{Provider: "sparkpost", Transient: true, Message: "missing transmission id"}
	}
	return parsed.Results.ID, nil
}

func (t *SparkPostTransport) VerifyInbound(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userMatch := hmac.Equal([]byte(sha256sum(user)), []byte(sha256sum(t.webhookUser)))
	passMatch := hmac.Equal([]byte(sha256sum(pass)), []byte(sha256sum(t.webhookPass)))
	return userMatch && passMatch
}

func sha256sum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

type sparkpostInboundEnvelope struct {
	Msys struct {
		RelayMessage struct {
			Content struct {
				Headers  []map[string]string `json:"headers"`
				Text     string               `json:"text"`
				Subject  string               `json:"subject"`
			} `json:"content"`
			Msgfrom string `json:"msgfrom"`
			Rcptto  string `json:"rcpt_to"`
		} `json:"relay_message"`
	} `json:"msys"`
}

func (t *SparkPostTransport) ParseInbound(r *http.Request) (InboundMessage, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return InboundMessage{}, fmt.Errorf("sparkpost: read inbound body: %w", err)
	}

	var envelopes []sparkpostInboundEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil || len(envelopes) == 0 {
		return InboundMessage{}, fmt.Errorf("sparkpost: parse inbound relay payload: %w", err)
	}
	rm := envelopes[0].Msys.RelayMessage

	msg := InboundMessage{
		From:     rm.Msgfrom,
		To:       rm.Rcptto,
		Subject:  rm.Content.Subject,
		TextBody: rm.Content.Text,
	}
	for _, h := range rm.Content.Headers {
		if v, ok := h["In-Reply-To"]; ok {
			msg.InReplyTo = v
		}
	}
	return msg, nil
}
