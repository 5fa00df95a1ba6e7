// File: internal/services/sms/factory.go
package sms

// NewProvider builds the configured provider wrapped with retries.
func NewProvider(config *Config, logger Logger) (Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, &SMSError{Type: ErrTypeConfig, Message: "invalid SMS configuration", Cause: err}
	}
	var p Provider
	switch config.Provider {
	case ProviderTwilio:
		p = NewTwilioProvider(config)
	case ProviderSMSIR:
		p = NewSMSIRProvider(config)
	default:
		logger.Warn("SMS provider is console; messages will only be logged")
		return NewConsoleProvider(logger), nil
	}
	return WithRetry(p, config.RetryConfig()), nil
}
