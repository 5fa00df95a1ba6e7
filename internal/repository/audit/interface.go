package audit

import (
	"context"

	"github.com/iyunix/go-courier/internal/domain"
)

// AuditRepository reads the append-only attempt ledger. Entries are written
// by the leg repository in the same transaction as the attempt increment,
// and nothing ever updates or deletes them.
type AuditRepository interface {
	ListByLeg(ctx context.Context, legID string, limit, offset int) ([]domain.AuditLogEntry, error)
	CountByLeg(ctx context.Context, legID string) (int64, error)
}
