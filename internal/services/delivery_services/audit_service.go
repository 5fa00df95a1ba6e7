// File: internal/services/delivery_services/audit_service.go
package delivery_services

import (
	"context"
	"time"

	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/repository/audit"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
)

type AuditHistory struct {
	LegID   string                 `json:"leg_id"`
	Total   int64                  `json:"total"`
	Entries []domain.AuditLogEntry `json:"entries"`
}

// LegStatus is the read-only view the UI renders badges from. It never
// includes the hash or a plaintext code.
type LegStatus struct {
	LegID              string          `json:"leg_id"`
	OrderID            string          `json:"order_id"`
	State              domain.LegState `json:"state"`
	CodeSentAt         *time.Time      `json:"code_sent_at,omitempty"`
	ValidatedAt        *time.Time      `json:"validated_at,omitempty"`
	ValidationAttempts int             `json:"validation_attempts"`
	RemainingAttempts  int             `json:"remaining_attempts"`
}

// AuditService answers questions about past redemption attempts.
type AuditService struct {
	auditRepo audit.AuditRepository
	access    orderAccess
}

func NewAuditService(auditRepo audit.AuditRepository, legRepo leg.LegRepository, orderRepo order.OrderRepository) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		access:    orderAccess{legRepo: legRepo, orderRepo: orderRepo},
	}
}

// History lists a leg's attempts for admins and the owning company.
func (s *AuditService) History(ctx context.Context, actor domain.Actor, legID string, limit, offset int) (*AuditHistory, error) {
	if _, _, err := s.access.loadLeg(ctx, actor, legID, false); err != nil {
		return nil, err
	}
	total, err := s.auditRepo.CountByLeg(ctx, legID)
	if err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.ListByLeg(ctx, legID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &AuditHistory{LegID: legID, Total: total, Entries: entries}, nil
}

// Status is visible to admins, the owning company and the assigned driver.
func (s *AuditService) Status(ctx context.Context, actor domain.Actor, legID string) (*LegStatus, error) {
	l, _, err := s.access.loadLeg(ctx, actor, legID, true)
	if err != nil {
		return nil, err
	}
	return &LegStatus{
		LegID:              l.ID,
		OrderID:            l.OrderID,
		State:              l.State(),
		CodeSentAt:         l.CodeSentAt,
		ValidatedAt:        l.ValidatedAt,
		ValidationAttempts: l.ValidationAttempts,
		RemainingAttempts:  l.RemainingAttempts(),
	}, nil
}
