// File: internal/services/sms/message.go
package sms

import (
	"fmt"
	"strings"
)

// DoNotShareWarning closes every delivery code message.
const DoNotShareWarning = "Informe este código somente ao entregador no momento da entrega. Não compartilhe com mais ninguém."

// deliveryCodeTemplate is the fixed customer-facing text.
const deliveryCodeTemplate = "Olá, %s! Seu código de confirmação de entrega é: %s. " + DoNotShareWarning

// Body renders the SMS text for msg.
func (m Message) Body() string {
	name := strings.TrimSpace(m.CustomerName)
	if name == "" {
		name = "cliente"
	}
	return fmt.Sprintf(deliveryCodeTemplate, name, m.Code)
}

// NormalizePhone converts a Brazilian phone number to E.164. Numbers with
// 10 or 11 digits are treated as national (DDD + subscriber) and get the
// +55 prefix.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &SMSError{Type: ErrTypeValidation, Message: "customer phone number is missing"}
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := strings.TrimLeft(digits.String(), "0")

	switch {
	case strings.HasPrefix(raw, "+") && len(d) >= 10 && len(d) <= 15:
		return "+" + d, nil
	case len(d) == 10 || len(d) == 11:
		return "+55" + d, nil
	case strings.HasPrefix(d, "55") && (len(d) == 12 || len(d) == 13):
		return "+" + d, nil
	default:
		return "", &SMSError{Type: ErrTypeValidation, Message: fmt.Sprintf("invalid phone number format (%d digits)", len(d))}
	}
}
