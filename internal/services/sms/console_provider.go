// File: internal/services/sms/console_provider.go
package sms

import "context"

// Logger is the subset of the service logger the providers need.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ConsoleProvider prints messages instead of sending them. Development only:
// the message body, code included, ends up in the log.
type ConsoleProvider struct {
	logger Logger
}

func NewConsoleProvider(logger Logger) *ConsoleProvider {
	return &ConsoleProvider{logger: logger}
}

func (p *ConsoleProvider) Name() string { return ProviderConsole }

func (p *ConsoleProvider) SendDeliveryCode(ctx context.Context, msg Message) error {
	p.logger.Info("console SMS", "to", msg.Phone, "body", msg.Body())
	return nil
}

func (p *ConsoleProvider) HealthCheck(ctx context.Context) error { return nil }
