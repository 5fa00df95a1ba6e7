// File: internal/services/sms/interface.go
package sms

import "context"

// Message is one outbound delivery-code notification.
type Message struct {
	Phone        string
	CustomerName string
	Code         string
}

type Provider interface {
	SendDeliveryCode(ctx context.Context, msg Message) error
	HealthCheck(ctx context.Context) error
	Name() string
}
