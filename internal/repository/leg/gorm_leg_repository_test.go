package leg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-courier/internal/database"
	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/domain"
)

func setup(t *testing.T) (*gorm.DB, LegRepository, *domain.DeliveryLeg) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	order := &domain.Order{
		CompanyID: "company-1",
		Legs:      []domain.DeliveryLeg{{CustomerName: "Ana", CustomerPhone: "11987654321"}},
	}
	require.NoError(t, db.Create(order).Error)
	return db, NewGormLegRepository(db), &order.Legs[0]
}

func countAudit(t *testing.T, db *gorm.DB, legID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.AuditLogEntry{}).Where("delivery_leg_id = ?", legID).Count(&n).Error)
	return n
}

func TestFindByIDNotFound(t *testing.T) {
	_, repo, _ := setup(t)
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLegNotFound)
	_, err = repo.FindByID(context.Background(), "")
	assert.ErrorIs(t, err, ErrLegNotFound)
}

func TestListByOrder(t *testing.T) {
	_, repo, l := setup(t)
	legs, err := repo.ListByOrder(context.Background(), l.OrderID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, l.ID, legs[0].ID)
}

func TestSetCodeHashResetsAttempts(t *testing.T) {
	ctx := context.Background()
	db, repo, l := setup(t)
	require.NoError(t, db.Model(l).Update("validation_attempts", 3).Error)

	hash := deliverycode.Hash("ABCDEF")
	require.NoError(t, repo.SetCodeHash(ctx, l.ID, hash))

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CodeHash)
	assert.Equal(t, hash, *got.CodeHash)
	assert.Zero(t, got.ValidationAttempts)
	assert.Equal(t, domain.LegStatePending, got.State())
}

func TestSetCodeHashRejectsValidatedLeg(t *testing.T) {
	ctx := context.Background()
	db, repo, l := setup(t)
	original := deliverycode.Hash("ABCDEF")
	require.NoError(t, repo.SetCodeHash(ctx, l.ID, original))
	require.NoError(t, db.Model(l).Update("validated_at", time.Now()).Error)

	err := repo.SetCodeHash(ctx, l.ID, deliverycode.Hash("GHJKLM"))
	assert.ErrorIs(t, err, ErrLegAlreadyValidated)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, original, *got.CodeHash)

	assert.ErrorIs(t, repo.SetCodeHash(ctx, "missing", original), ErrLegNotFound)
}

func TestCommitDispatchOnlyOnce(t *testing.T) {
	ctx := context.Background()
	_, repo, l := setup(t)
	sentAt := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.CommitDispatch(ctx, l.ID, deliverycode.Hash("ABCDEF"), sentAt))
	err := repo.CommitDispatch(ctx, l.ID, deliverycode.Hash("GHJKLM"), sentAt.Add(time.Minute))
	assert.ErrorIs(t, err, ErrCodeAlreadySent)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CodeSentAt)
	assert.True(t, got.CodeSentAt.Equal(sentAt))
	assert.Equal(t, deliverycode.Hash("ABCDEF"), *got.CodeHash)
}

func TestRecordAttemptIncrementsAndAudits(t *testing.T) {
	ctx := context.Background()
	db, repo, l := setup(t)
	hash := deliverycode.Hash("ABCDEF")
	require.NoError(t, repo.SetCodeHash(ctx, l.ID, hash))

	err := repo.RecordAttempt(ctx, Attempt{
		LegID:            l.ID,
		ObservedAttempts: 0,
		ObservedHash:     hash,
		Entry:            &domain.AuditLogEntry{ActorID: "driver-x", AttemptedCode: "zzzzzz"},
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ValidationAttempts)
	assert.Nil(t, got.ValidatedAt)
	assert.EqualValues(t, 1, countAudit(t, db, l.ID))

	now := time.Now().UTC()
	err = repo.RecordAttempt(ctx, Attempt{
		LegID:            l.ID,
		ObservedAttempts: 1,
		ObservedHash:     hash,
		Entry:            &domain.AuditLogEntry{ActorID: "driver-x", AttemptedCode: "abcdef", Success: true},
		ValidatedAt:      &now,
	})
	require.NoError(t, err)

	got, err = repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ValidationAttempts)
	assert.NotNil(t, got.ValidatedAt)
	assert.EqualValues(t, 2, countAudit(t, db, l.ID))
}

func TestRecordAttemptStaleWritesNothing(t *testing.T) {
	ctx := context.Background()
	db, repo, l := setup(t)
	hash := deliverycode.Hash("ABCDEF")
	require.NoError(t, repo.SetCodeHash(ctx, l.ID, hash))

	cases := []Attempt{
		{LegID: l.ID, ObservedAttempts: 2, ObservedHash: hash},
		{LegID: l.ID, ObservedAttempts: 0, ObservedHash: deliverycode.Hash("OTHER1")},
	}
	for _, a := range cases {
		a.Entry = &domain.AuditLogEntry{ActorID: "driver-x", AttemptedCode: "x"}
		assert.ErrorIs(t, repo.RecordAttempt(ctx, a), ErrStaleLeg)
	}

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ValidationAttempts)
	assert.Zero(t, countAudit(t, db, l.ID))
}

func TestRecordAttemptRespectsCeiling(t *testing.T) {
	ctx := context.Background()
	db, repo, l := setup(t)
	hash := deliverycode.Hash("ABCDEF")
	require.NoError(t, repo.SetCodeHash(ctx, l.ID, hash))
	require.NoError(t, db.Model(l).Update("validation_attempts", domain.MaxValidationAttempts).Error)

	err := repo.RecordAttempt(ctx, Attempt{
		LegID:            l.ID,
		ObservedAttempts: domain.MaxValidationAttempts,
		ObservedHash:     hash,
		Entry:            &domain.AuditLogEntry{ActorID: "driver-x", AttemptedCode: "abcdef"},
	})
	assert.ErrorIs(t, err, ErrStaleLeg)
	assert.Zero(t, countAudit(t, db, l.ID))
}
