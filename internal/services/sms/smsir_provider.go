// File: internal/services/sms/smsir_provider.go
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// SMSIRProvider sends through the Sms.ir "verify" endpoint, which fills a
// pre-registered template with named parameters.
type SMSIRProvider struct {
	config *Config
	client *http.Client
}

func NewSMSIRProvider(config *Config) *SMSIRProvider {
	return &SMSIRProvider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (p *SMSIRProvider) Name() string { return ProviderSMSIR }

// SendDeliveryCode fills the registered template. The warning travels as a
// parameter so the text does not depend on what was registered.
func (p *SMSIRProvider) SendDeliveryCode(ctx context.Context, msg Message) error {
	payload := map[string]interface{}{
		"mobile":     msg.Phone,
		"templateId": p.config.TemplateID,
		"parameters": []map[string]string{
			{"name": "CustomerName", "value": msg.CustomerName},
			{"name": "Code", "value": msg.Code},
			{"name": "Warning", "value": DoNotShareWarning},
		},
	}

	return p.sendRequest(ctx, payload)
}

func (p *SMSIRProvider) sendRequest(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &SMSError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIURL, bytes.NewBuffer(body))
	if err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.config.AccessKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return &SMSError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	return handleResponse(resp)
}

func (p *SMSIRProvider) HealthCheck(ctx context.Context) error {
	if p.config.AccessKey == "" || p.config.APIURL == "" {
		return &SMSError{Type: ErrTypeConfig, Message: "sms.ir provider is not configured"}
	}
	return nil
}

// handleResponse maps provider HTTP statuses onto SMSError types.
func handleResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &SMSError{Type: ErrTypeRateLimit, Code: resp.StatusCode, Message: "rate limit exceeded"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &SMSError{Type: ErrTypeConfig, Code: resp.StatusCode, Message: "provider rejected credentials"}
	case resp.StatusCode == http.StatusBadRequest:
		return &SMSError{Type: ErrTypeValidation, Code: resp.StatusCode, Message: string(responseBody)}
	default:
		return &SMSError{Type: ErrTypeProvider, Code: resp.StatusCode, Message: string(responseBody)}
	}
}
