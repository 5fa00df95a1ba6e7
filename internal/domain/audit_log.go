// File: internal/domain/audit_log.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogEntry records one redemption attempt. Rows are only ever inserted.
// AttemptedCode keeps the raw submission for dispute resolution.
type AuditLogEntry struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	DeliveryLegID string    `gorm:"index;not null;size:36" json:"delivery_leg_id"`
	ActorID       string    `gorm:"index;not null;size:36" json:"actor_id"`
	AttemptedCode string    `gorm:"not null;size:64" json:"attempted_code"`
	Success       bool      `gorm:"not null" json:"success"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (e *AuditLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{&Order{}, &DeliveryLeg{}, &AuditLogEntry{}}
}
