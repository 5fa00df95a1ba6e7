package delivery_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
)

// orderAccess resolves ownership questions shared by the company-facing services.
type orderAccess struct {
	legRepo   leg.LegRepository
	orderRepo order.OrderRepository
}

// loadLeg fetches a leg and its order, hiding existence from callers who
// could not see it anyway.
func (a orderAccess) loadLeg(ctx context.Context, actor domain.Actor, legID string, allowDriver bool) (*domain.DeliveryLeg, *domain.Order, error) {
	l, err := a.legRepo.FindByID(ctx, legID)
	if err != nil {
		if errors.Is(err, leg.ErrLegNotFound) {
			return nil, nil, a.notFound(actor)
		}
		return nil, nil, fmt.Errorf("failed to load leg: %w", err)
	}
	o, err := a.loadOrder(ctx, actor, l.OrderID, allowDriver)
	if err != nil {
		return nil, nil, err
	}
	return l, o, nil
}

func (a orderAccess) loadOrder(ctx context.Context, actor domain.Actor, orderID string, allowDriver bool) (*domain.Order, error) {
	o, err := a.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, a.notFound(actor)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !canSee(actor, o, allowDriver) {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (a orderAccess) notFound(actor domain.Actor) error {
	if actor.Role == domain.RoleAdmin {
		return ErrNotFound
	}
	return ErrUnauthorized
}

func canSee(actor domain.Actor, o *domain.Order, allowDriver bool) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCompany:
		return actor.ID != "" && o.CompanyID == actor.ID
	case domain.RoleDriver:
		return allowDriver && o.IsAssignedTo(actor.ID)
	default:
		return false
	}
}
