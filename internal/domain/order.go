// File: internal/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus tracks the marketplace lifecycle of an order. Only the
// transitions that gate the validation code are modelled here.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a company's delivery request. A driver accepts it and then
// fulfils each of its legs.
type Order struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	CompanyID    string      `gorm:"index;not null;size:36" json:"company_id"`
	DriverUserID *string     `gorm:"index;size:36" json:"driver_user_id,omitempty"`
	Status       OrderStatus `gorm:"not null;size:20;index;default:pending" json:"status"`
	AcceptedAt   *time.Time  `json:"accepted_at,omitempty"`

	Legs []DeliveryLeg `gorm:"constraint:OnDelete:CASCADE" json:"legs,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// IsAssignedTo reports whether driverID is the driver currently holding the order.
func (o *Order) IsAssignedTo(driverID string) bool {
	return driverID != "" && o.DriverUserID != nil && *o.DriverUserID == driverID
}

// AcceptsDispatch reports whether codes may be pushed to customers, which
// requires a driver to be on the order.
func (o *Order) AcceptsDispatch() bool {
	return o.Status == OrderStatusAssigned || o.Status == OrderStatusInTransit
}
