// File: internal/domain/delivery_leg.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxValidationAttempts is the hard ceiling of redemption tries per leg.
const MaxValidationAttempts = 5

// LegState is derived from the persisted fields, never stored.
type LegState string

const (
	LegStateUnconfigured LegState = "UNCONFIGURED"
	LegStatePending      LegState = "PENDING"
	LegStateLocked       LegState = "LOCKED"
	LegStateValidated    LegState = "VALIDATED"
)

// DeliveryLeg is one parcel drop-off within an order and the unit a
// validation code protects. Only the hash of the code is ever persisted.
type DeliveryLeg struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	OrderID       string `gorm:"index;not null;size:36" json:"order_id"`
	CustomerName  string `gorm:"size:120" json:"customer_name"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone,omitempty"`
	Address       string `gorm:"size:255" json:"address,omitempty"`

	CodeHash           *string    `gorm:"size:64" json:"-"`
	CodeSentAt         *time.Time `json:"code_sent_at,omitempty"`
	ValidationAttempts int        `gorm:"not null;default:0" json:"validation_attempts"`
	ValidatedAt        *time.Time `gorm:"index" json:"validated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *DeliveryLeg) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// State folds the nullable fields into the redemption state machine.
func (l *DeliveryLeg) State() LegState {
	switch {
	case l.ValidatedAt != nil:
		return LegStateValidated
	case l.CodeHash == nil:
		return LegStateUnconfigured
	case l.ValidationAttempts >= MaxValidationAttempts:
		return LegStateLocked
	default:
		return LegStatePending
	}
}

// RemainingAttempts never goes below zero.
func (l *DeliveryLeg) RemainingAttempts() int {
	if r := MaxValidationAttempts - l.ValidationAttempts; r > 0 {
		return r
	}
	return 0
}

// CodeDispatched reports whether the plaintext already went out to the customer.
func (l *DeliveryLeg) CodeDispatched() bool {
	return l.CodeSentAt != nil
}
