// File: internal/services/sms/config.go
package sms

import (
	"fmt"
	"time"
)

const (
	ProviderTwilio  = "twilio"
	ProviderSMSIR   = "smsir"
	ProviderConsole = "console"
)

const (
	defaultTwilioAPIURL = "https://api.twilio.com/2010-04-01"
	defaultTimeout      = 10 * time.Second
)

type Config struct {
	Provider string

	// Twilio
	AccountSID string
	AuthToken  string
	FromNumber string

	// Sms.ir. The template behind TemplateID must declare #CustomerName#,
	// #Code# and #Warning#; the provider fills #Warning# with DoNotShareWarning.
	AccessKey  string
	TemplateID int

	// APIURL overrides the provider's base endpoint.
	APIURL     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderTwilio:
		if c.AccountSID == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID is required")
		}
		if c.AuthToken == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN is required")
		}
		if c.FromNumber == "" {
			return fmt.Errorf("TWILIO_FROM_NUMBER is required")
		}
	case ProviderSMSIR:
		if c.AccessKey == "" {
			return fmt.Errorf("SMS_ACCESS_KEY is required")
		}
		if c.APIURL == "" {
			return fmt.Errorf("SMS_API_URL is required")
		}
		if c.TemplateID == 0 {
			return fmt.Errorf("SMS_TEMPLATE_ID is required")
		}
	case ProviderConsole:
	default:
		return fmt.Errorf("unknown SMS provider %q", c.Provider)
	}
	return nil
}

// SendBudget is the longest a retried send can take: every attempt hitting
// the HTTP timeout plus every backoff sleep.
func (c *Config) SendBudget() time.Duration {
	rc := c.RetryConfig()
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	budget := time.Duration(rc.MaxAttempts) * timeout
	delay := rc.Delay
	for i := 0; i < rc.MaxAttempts-1; i++ {
		budget += delay
		delay *= 2
	}
	return budget
}

// RetryConfig derives the retry policy from the provider settings.
func (c *Config) RetryConfig() *RetryConfig {
	rc := DefaultRetryConfig()
	if c.MaxRetries > 0 {
		rc.MaxAttempts = c.MaxRetries
	}
	if c.RetryDelay > 0 {
		rc.Delay = c.RetryDelay
	}
	return rc
}
