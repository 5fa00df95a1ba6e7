// File: internal/services/delivery_services/order_service.go
package delivery_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/repository/order"
)

// NewLeg is the company-supplied data for one drop-off.
type NewLeg struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Address       string `json:"address"`
}

// CreatedOrder carries the plaintext codes back to the company exactly once.
// They stop working as soon as a dispatch sends fresh codes to the customers,
// which happens on accept when auto-dispatch is on.
type CreatedOrder struct {
	Order *domain.Order `json:"order"`
	Codes IssuedCodes   `json:"codes"`
}

type AcceptedOrder struct {
	Order    *domain.Order   `json:"order"`
	Dispatch *DispatchResult `json:"dispatch,omitempty"`
}

// OrderService covers the slice of the order lifecycle that seeds and
// gates delivery codes.
type OrderService struct {
	orderRepo    order.OrderRepository
	dispatch     *DispatchService
	autoDispatch bool
	logger       Logger
}

func NewOrderService(orderRepo order.OrderRepository, dispatch *DispatchService, autoDispatch bool, logger Logger) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		dispatch:     dispatch,
		autoDispatch: autoDispatch,
		logger:       logger,
	}
}

// CreateOrder stores a new order with one code per leg, hashed before the
// insert so no leg is ever persisted half-configured.
func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Actor, legs []NewLeg) (*CreatedOrder, error) {
	if actor.Role != domain.RoleCompany || actor.ID == "" {
		return nil, ErrUnauthorized
	}
	if len(legs) == 0 {
		return nil, errors.New("order must have at least one delivery leg")
	}

	codes, err := deliverycode.GenerateN(len(legs))
	if err != nil {
		return nil, err
	}

	o := &domain.Order{CompanyID: actor.ID, Status: domain.OrderStatusPending}
	for i, nl := range legs {
		name := strings.TrimSpace(nl.CustomerName)
		if name == "" {
			return nil, fmt.Errorf("leg %d: customer name is required", i+1)
		}
		hash := deliverycode.Hash(codes[i])
		o.Legs = append(o.Legs, domain.DeliveryLeg{
			CustomerName:  name,
			CustomerPhone: strings.TrimSpace(nl.CustomerPhone),
			Address:       strings.TrimSpace(nl.Address),
			CodeHash:      &hash,
		})
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	issued := make(IssuedCodes, len(o.Legs))
	for i, l := range o.Legs {
		issued[l.ID] = codes[i]
	}
	s.logger.Info("order created", "order_id", o.ID, "company_id", actor.ID, "legs", len(o.Legs))
	return &CreatedOrder{Order: o, Codes: issued}, nil
}

// AcceptOrder assigns the driver and, when enabled, pushes the codes to
// customers right away. A dispatch failure does not undo the acceptance.
func (s *OrderService) AcceptOrder(ctx context.Context, actor domain.Actor, orderID string) (*AcceptedOrder, error) {
	if actor.Role != domain.RoleDriver || actor.ID == "" {
		return nil, ErrUnauthorized
	}
	o, err := s.orderRepo.AssignDriver(ctx, orderID, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return nil, ErrNotFound
		case errors.Is(err, order.ErrOrderNotAvailable):
			return nil, ErrOrderNotAvailable
		default:
			return nil, err
		}
	}
	s.logger.Info("order accepted", "order_id", o.ID, "driver_id", actor.ID)

	accepted := &AcceptedOrder{Order: o}
	if s.autoDispatch && s.dispatch != nil {
		result, err := s.dispatch.DispatchCodes(ctx, o.ID, actor.ID)
		if err != nil {
			s.logger.Error("automatic code dispatch failed", "error", err, "order_id", o.ID)
		} else {
			accepted.Dispatch = result
		}
	}
	return accepted, nil
}
