// File: internal/repository/audit/gorm_audit_repository.go
package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/go-courier/internal/domain"
)

const maxPageSize = 200

type gormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

// ListByLeg returns entries oldest first.
func (r *gormAuditRepository) ListByLeg(ctx context.Context, legID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	var entries []domain.AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("delivery_leg_id = ?", legID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("database error listing audit entries: %w", err)
	}
	return entries, nil
}

func (r *gormAuditRepository) CountByLeg(ctx context.Context, legID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AuditLogEntry{}).
		Where("delivery_leg_id = ?", legID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error counting audit entries: %w", err)
	}
	return count, nil
}
