// File: internal/services/delivery_services/validation_service.go
package delivery_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/events"
	"github.com/iyunix/go-courier/internal/lock"
	"github.com/iyunix/go-courier/internal/metrics"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
)

const (
	maxConflictRetries = 3
	maxAuditCodeLength = 64
)

// Outcome tags every way a validation call can end.
type Outcome string

const (
	OutcomeValidated        Outcome = "VALIDATED"
	OutcomeNotFound         Outcome = "NOT_FOUND"
	OutcomeNotConfigured    Outcome = "NOT_CONFIGURED"
	OutcomeAlreadyValidated Outcome = "ALREADY_VALIDATED"
	OutcomeAttemptsExceeded Outcome = "ATTEMPTS_EXCEEDED"
	OutcomeUnauthorized     Outcome = "UNAUTHORIZED"
	OutcomeMismatch         Outcome = "MISMATCH"
)

const (
	msgValidated        = "Entrega validada com sucesso!"
	msgNotFound         = "Entrega não encontrada."
	msgNotConfigured    = "Esta entrega não possui código de validação configurado."
	msgAlreadyValidated = "Esta entrega já foi validada."
	msgAttemptsExceeded = "Número máximo de tentativas excedido. Entre em contato com o suporte."
	msgUnauthorized     = "Você não tem permissão para validar esta entrega."
)

// ValidationResult is the single discriminated result of Validate.
// RemainingAttempts is only meaningful for OutcomeMismatch.
type ValidationResult struct {
	Outcome           Outcome    `json:"outcome"`
	Success           bool       `json:"success"`
	Message           string     `json:"message"`
	RemainingAttempts int        `json:"remaining_attempts"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty"`
}

// Retryable reports whether the driver may submit again.
func (r *ValidationResult) Retryable() bool {
	return r.Outcome == OutcomeMismatch && r.RemainingAttempts > 0
}

func failure(outcome Outcome, message string) *ValidationResult {
	return &ValidationResult{Outcome: outcome, Message: message}
}

func mismatchMessage(remaining int) string {
	if remaining == 1 {
		return "Código inválido. Você tem 1 tentativa restante."
	}
	return fmt.Sprintf("Código inválido. Você tem %d tentativas restantes.", remaining)
}

// ValidationService redeems delivery codes submitted by drivers.
type ValidationService struct {
	legRepo   leg.LegRepository
	orderRepo order.OrderRepository
	locker    lock.Locker
	publisher events.Publisher
	logger    Logger
	now       func() time.Time
}

// NewValidationService creates a new validation service
func NewValidationService(legRepo leg.LegRepository, orderRepo order.OrderRepository, locker lock.Locker, publisher events.Publisher, logger Logger) *ValidationService {
	return &ValidationService{
		legRepo:   legRepo,
		orderRepo: orderRepo,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
		now:       utcNow,
	}
}

// Validate checks submittedCode against the leg's stored hash on behalf of
// actorID. Expected failures come back as a result; the error is reserved
// for dependency failures, which leave no partial state behind.
func (s *ValidationService) Validate(ctx context.Context, legID, submittedCode, actorID string) (*ValidationResult, error) {
	for try := 0; try < maxConflictRetries; try++ {
		result, err := s.validateOnce(ctx, legID, submittedCode, actorID)
		if errors.Is(err, leg.ErrStaleLeg) {
			metrics.ValidationConflictsTotal.Inc()
			s.logger.Warn("leg changed during validation, re-reading", "leg_id", legID, "try", try+1)
			continue
		}
		if err != nil {
			s.logger.Error("validation aborted", "error", err, "leg_id", legID, "actor_id", actorID)
			return nil, err
		}
		metrics.ValidationOutcomesTotal.WithLabelValues(string(result.Outcome)).Inc()
		return result, nil
	}
	return nil, ErrConcurrentValidation
}

func (s *ValidationService) validateOnce(ctx context.Context, legID, submittedCode, actorID string) (*ValidationResult, error) {
	unlock, err := s.locker.Lock(ctx, legID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock leg: %w", err)
	}
	defer unlock()

	l, err := s.legRepo.FindByID(ctx, legID)
	if err != nil {
		if errors.Is(err, leg.ErrLegNotFound) {
			return failure(OutcomeNotFound, msgNotFound), nil
		}
		return nil, fmt.Errorf("failed to load leg: %w", err)
	}

	// Short-circuits: none of these touch the counter or the audit log.
	if l.CodeHash == nil {
		return failure(OutcomeNotConfigured, msgNotConfigured), nil
	}
	if l.ValidatedAt != nil {
		return failure(OutcomeAlreadyValidated, msgAlreadyValidated), nil
	}
	if l.ValidationAttempts >= domain.MaxValidationAttempts {
		s.logger.Warn("validation attempted on locked leg", "leg_id", legID, "actor_id", actorID)
		return failure(OutcomeAttemptsExceeded, msgAttemptsExceeded), nil
	}

	o, err := s.orderRepo.FindByID(ctx, l.OrderID)
	if err != nil && !errors.Is(err, order.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if o == nil || !o.IsAssignedTo(actorID) {
		s.logger.Warn("validation attempted by driver not assigned to order", "leg_id", legID, "actor_id", actorID)
		return failure(OutcomeUnauthorized, msgUnauthorized), nil
	}

	matched := deliverycode.Matches(submittedCode, *l.CodeHash)
	now := s.now()
	attempt := leg.Attempt{
		LegID:            l.ID,
		ObservedAttempts: l.ValidationAttempts,
		ObservedHash:     *l.CodeHash,
		Entry: &domain.AuditLogEntry{
			ActorID:       actorID,
			AttemptedCode: truncateRunes(submittedCode, maxAuditCodeLength),
			Success:       matched,
			CreatedAt:     now,
		},
	}
	if matched {
		attempt.ValidatedAt = &now
	}

	// The increment and the audit row commit together even if the caller
	// has already given up on the request.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := s.legRepo.RecordAttempt(commitCtx, attempt); err != nil {
		return nil, err
	}

	attempts := l.ValidationAttempts + 1
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:               events.TypeValidationAttempt,
		OrderID:            l.OrderID,
		DeliveryLegID:      l.ID,
		ActorID:            actorID,
		Success:            matched,
		ValidationAttempts: attempts,
		OccurredAt:         now,
	})

	if matched {
		s.logger.Info("delivery validated", "leg_id", l.ID, "order_id", l.OrderID, "actor_id", actorID, "attempts", attempts)
		return &ValidationResult{
			Outcome:     OutcomeValidated,
			Success:     true,
			Message:     msgValidated,
			ValidatedAt: &now,
		}, nil
	}

	remaining := domain.MaxValidationAttempts - attempts
	s.logger.Warn("delivery code mismatch", "leg_id", l.ID, "actor_id", actorID, "attempts", attempts, "remaining", remaining)
	return &ValidationResult{
		Outcome:           OutcomeMismatch,
		Message:           mismatchMessage(remaining),
		RemainingAttempts: remaining,
	}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
