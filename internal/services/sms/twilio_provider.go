// File: internal/services/sms/twilio_provider.go
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// TwilioProvider sends plain-text messages through the Twilio Messages API.
type TwilioProvider struct {
	config  *Config
	client  *http.Client
	baseURL string
}

func NewTwilioProvider(config *Config) *TwilioProvider {
	base := config.APIURL
	if base == "" {
		base = defaultTwilioAPIURL
	}
	return &TwilioProvider{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: strings.TrimRight(base, "/"),
	}
}

func (p *TwilioProvider) Name() string { return ProviderTwilio }

func (p *TwilioProvider) SendDeliveryCode(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("To", msg.Phone)
	form.Set("From", p.config.FromNumber)
	form.Set("Body", msg.Body())

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", p.baseURL, url.PathEscape(p.config.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	req.SetBasicAuth(p.config.AccountSID, p.config.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	return handleResponse(resp)
}

func (p *TwilioProvider) HealthCheck(ctx context.Context) error {
	if p.config.AccountSID == "" || p.config.AuthToken == "" || p.config.FromNumber == "" {
		return &SMSError{Type: ErrTypeConfig, Message: "twilio provider is not configured"}
	}
	return nil
}
