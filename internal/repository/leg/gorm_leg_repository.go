// File: internal/repository/leg/gorm_leg_repository.go
package leg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-courier/internal/domain"
)

type gormLegRepository struct {
	db *gorm.DB
}

func NewGormLegRepository(db *gorm.DB) LegRepository {
	return &gormLegRepository{db: db}
}

func (r *gormLegRepository) FindByID(ctx context.Context, id string) (*domain.DeliveryLeg, error) {
	if id == "" {
		return nil, ErrLegNotFound
	}
	var leg domain.DeliveryLeg
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&leg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLegNotFound
		}
		return nil, fmt.Errorf("database error finding leg: %w", err)
	}
	return &leg, nil
}

func (r *gormLegRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.DeliveryLeg, error) {
	var legs []domain.DeliveryLeg
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&legs).Error
	if err != nil {
		return nil, fmt.Errorf("database error listing legs: %w", err)
	}
	return legs, nil
}

// SetCodeHash replaces the active secret and resets the attempt counter.
// A validated leg is terminal and keeps its hash.
func (r *gormLegRepository) SetCodeHash(ctx context.Context, id, codeHash string) error {
	result := r.db.WithContext(ctx).Model(&domain.DeliveryLeg{}).
		Where("id = ? AND validated_at IS NULL", id).
		Updates(map[string]interface{}{
			"code_hash":           codeHash,
			"validation_attempts": 0,
		})
	if result.Error != nil {
		return fmt.Errorf("database error setting code hash: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

// CommitDispatch stores the hash of a code that has just been delivered to
// the customer and stamps the send time. It only applies once per leg.
func (r *gormLegRepository) CommitDispatch(ctx context.Context, id, codeHash string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.DeliveryLeg{}).
		Where("id = ? AND code_sent_at IS NULL AND validated_at IS NULL", id).
		Updates(map[string]interface{}{
			"code_hash":           codeHash,
			"code_sent_at":        sentAt,
			"validation_attempts": 0,
		})
	if result.Error != nil {
		return fmt.Errorf("database error committing dispatch: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		leg, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if leg.ValidatedAt != nil {
			return ErrLegAlreadyValidated
		}
		return ErrCodeAlreadySent
	}
	return nil
}

// RecordAttempt applies the attempt increment and the audit insert as one
// unit: both land or neither does.
func (r *gormLegRepository) RecordAttempt(ctx context.Context, attempt Attempt) error {
	if attempt.Entry == nil {
		return errors.New("attempt must carry an audit entry")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"validation_attempts": gorm.Expr("validation_attempts + 1"),
		}
		if attempt.ValidatedAt != nil {
			updates["validated_at"] = *attempt.ValidatedAt
		}
		result := tx.Model(&domain.DeliveryLeg{}).
			Where("id = ? AND validation_attempts = ? AND validated_at IS NULL AND code_hash = ? AND validation_attempts < ?",
				attempt.LegID, attempt.ObservedAttempts, attempt.ObservedHash, domain.MaxValidationAttempts).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("database error recording attempt: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStaleLeg
		}

		attempt.Entry.DeliveryLegID = attempt.LegID
		if err := tx.Create(attempt.Entry).Error; err != nil {
			return fmt.Errorf("database error appending audit entry: %w", err)
		}
		return nil
	})
}

func (r *gormLegRepository) explainMiss(ctx context.Context, id string) error {
	leg, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if leg.ValidatedAt != nil {
		return ErrLegAlreadyValidated
	}
	return ErrStaleLeg
}
