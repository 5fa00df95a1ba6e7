// File: internal/services/delivery_services/code_service.go
package delivery_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
)

// IssuedCodes maps leg ID to the plaintext code just generated for it. The
// caller owns it; nothing else keeps a copy.
type IssuedCodes map[string]string

// CodeService configures the secret of each delivery leg.
type CodeService struct {
	legRepo leg.LegRepository
	access  orderAccess
	logger  Logger
}

func NewCodeService(legRepo leg.LegRepository, orderRepo order.OrderRepository, logger Logger) *CodeService {
	return &CodeService{
		legRepo: legRepo,
		access:  orderAccess{legRepo: legRepo, orderRepo: orderRepo},
		logger:  logger,
	}
}

// SetCodeHash overwrites the leg's active hash and resets its attempt
// counter. Validated legs are terminal and are rejected.
func (s *CodeService) SetCodeHash(ctx context.Context, legID, codeHash string) error {
	if !deliverycode.IsValidHash(codeHash) {
		return ErrInvalidHash
	}
	if err := s.legRepo.SetCodeHash(ctx, legID, codeHash); err != nil {
		switch {
		case errors.Is(err, leg.ErrLegNotFound):
			return ErrNotFound
		case errors.Is(err, leg.ErrLegAlreadyValidated):
			return ErrLegAlreadyValidated
		default:
			return fmt.Errorf("failed to set code hash: %w", err)
		}
	}
	s.logger.Info("delivery code configured", "leg_id", legID)
	return nil
}

// SetCodeHashAs runs SetCodeHash after checking actor may manage the leg.
func (s *CodeService) SetCodeHashAs(ctx context.Context, actor domain.Actor, legID, codeHash string) error {
	if _, _, err := s.access.loadLeg(ctx, actor, legID, false); err != nil {
		return err
	}
	return s.SetCodeHash(ctx, legID, codeHash)
}

// IssueCodes generates a fresh code for every unvalidated leg of an order,
// stores the hashes and hands the plaintext back for manual relay.
func (s *CodeService) IssueCodes(ctx context.Context, actor domain.Actor, orderID string) (IssuedCodes, error) {
	if _, err := s.access.loadOrder(ctx, actor, orderID, false); err != nil {
		return nil, err
	}
	legs, err := s.legRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	issued := make(IssuedCodes, len(legs))
	for _, l := range legs {
		if l.ValidatedAt != nil {
			continue
		}
		code := deliverycode.Generate()
		if err := s.SetCodeHash(ctx, l.ID, deliverycode.Hash(code)); err != nil {
			if errors.Is(err, ErrLegAlreadyValidated) {
				continue
			}
			return nil, err
		}
		issued[l.ID] = code
	}

	s.logger.Info("delivery codes issued", "order_id", orderID, "actor_id", actor.ID, "legs", len(issued))
	return issued, nil
}
