package order

import (
	"context"
	"errors"

	"github.com/iyunix/go-courier/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotAvailable = errors.New("order is not open for acceptance")
)

// OrderRepository handles order persistence. Orders are a collaborator of
// the validation code lifecycle; only the fields it gates on are exposed.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindWithLegs(ctx context.Context, id string) (*domain.Order, error)
	AssignDriver(ctx context.Context, orderID, driverID string) (*domain.Order, error)
}
