// File: internal/repository/order/gorm_order_repository.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-courier/internal/domain"
)

type gormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// Create inserts the order together with its legs in one transaction.
func (r *gormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.CompanyID == "" {
		return errors.New("order must belong to a company")
	}
	if len(order.Legs) == 0 {
		return errors.New("order must have at least one delivery leg")
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("database error creating order: %w", err)
	}
	return nil
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrOrderNotFound
	}
	var order domain.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	return handleFindError(err, &order)
}

func (r *gormOrderRepository) FindWithLegs(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrOrderNotFound
	}
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Legs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	return handleFindError(err, &order)
}

// AssignDriver moves a pending order to assigned. The conditional update
// makes two drivers racing for the same order resolve to exactly one winner.
func (r *gormOrderRepository) AssignDriver(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	if driverID == "" {
		return nil, errors.New("driver ID is required")
	}
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ? AND driver_user_id IS NULL", orderID, domain.OrderStatusPending).
		Updates(map[string]interface{}{
			"driver_user_id": driverID,
			"status":         domain.OrderStatusAssigned,
			"accepted_at":    now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("database error assigning driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, orderID); err != nil {
			return nil, err
		}
		return nil, ErrOrderNotAvailable
	}
	return r.FindByID(ctx, orderID)
}

func handleFindError(err error, order *domain.Order) (*domain.Order, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error finding order: %w", err)
	}
	return order, nil
}
