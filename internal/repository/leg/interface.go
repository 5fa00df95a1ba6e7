package leg

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-courier/internal/domain"
)

var (
	ErrLegNotFound         = errors.New("delivery leg not found")
	ErrLegAlreadyValidated = errors.New("delivery leg already validated")
	ErrCodeAlreadySent     = errors.New("validation code already sent for this leg")
	// ErrStaleLeg means the leg changed between read and write; the caller
	// must re-read and decide again.
	ErrStaleLeg = errors.New("delivery leg changed concurrently")
)

// Attempt is one redemption try to be committed atomically: the counter
// increment, the optional validation stamp and the audit row.
type Attempt struct {
	LegID string
	// ObservedAttempts and ObservedHash are what the caller read before
	// deciding; the write only applies if the row still holds them.
	ObservedAttempts int
	ObservedHash     string
	Entry            *domain.AuditLogEntry
	// ValidatedAt is set only when the submitted code matched.
	ValidatedAt *time.Time
}

// LegRepository handles delivery leg persistence.
type LegRepository interface {
	FindByID(ctx context.Context, id string) (*domain.DeliveryLeg, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.DeliveryLeg, error)
	SetCodeHash(ctx context.Context, id, codeHash string) error
	CommitDispatch(ctx context.Context, id, codeHash string, sentAt time.Time) error
	RecordAttempt(ctx context.Context, attempt Attempt) error
}
