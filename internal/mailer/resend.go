package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/httpclient"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"
)

// DefaultResendBaseURL is the production Resend API endpoint.
const DefaultResendBaseURL = "https://api.resend.com"

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendMailer sends email through the Resend REST API. Calls go through the
// circuit breaker so a provider outage fails fast instead of holding webhook
// deliveries open.
type ResendMailer struct {
	client  *httpclient.CircuitBreakerClient
	apiKey  string
	baseURL string
}

// NewResendMailer creates a Resend-backed mailer. An empty baseURL selects
// the production endpoint.
func NewResendMailer(client *httpclient.CircuitBreakerClient, apiKey, baseURL string) *ResendMailer {
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	return &ResendMailer{client: client, apiKey: apiKey, baseURL: baseURL}
}

// Name returns the mailer name.
func (m *ResendMailer) Name() string {
	return "resend"
}

// Send posts the message to the Resend emails endpoint.
func (m *ResendMailer) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(resendPayload{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(ctx, req)
	if err != nil {
		return apperrors.Upstream("resend", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return apperrors.Upstream("resend", fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw)))
	}
	return nil
}
