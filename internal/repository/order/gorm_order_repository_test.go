package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-courier/internal/database"
	"github.com/iyunix/go-courier/internal/domain"
)

func newRepo(t *testing.T) OrderRepository {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return NewGormOrderRepository(db)
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		CompanyID: "company-1",
		Legs: []domain.DeliveryLeg{
			{CustomerName: "Ana", CustomerPhone: "11987654321"},
			{CustomerName: "Bruno", CustomerPhone: "11912345678"},
		},
	}
}

func TestCreateAndFindWithLegs(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	o := sampleOrder()
	require.NoError(t, repo.Create(ctx, o))
	require.NotEmpty(t, o.ID)
	assert.Equal(t, domain.OrderStatusPending, o.Status)

	found, err := repo.FindWithLegs(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Legs, 2)
	for _, leg := range found.Legs {
		assert.Equal(t, o.ID, leg.OrderID)
		assert.NotEmpty(t, leg.ID)
		assert.Nil(t, leg.CodeHash)
		assert.Zero(t, leg.ValidationAttempts)
	}
}

func TestCreateRejectsEmptyOrders(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	assert.Error(t, repo.Create(ctx, &domain.Order{CompanyID: "c"}))
	assert.Error(t, repo.Create(ctx, &domain.Order{Legs: []domain.DeliveryLeg{{}}}))
}

func TestFindByIDNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAssignDriverOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	o := sampleOrder()
	require.NoError(t, repo.Create(ctx, o))

	assigned, err := repo.AssignDriver(ctx, o.ID, "driver-x")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAssigned, assigned.Status)
	assert.True(t, assigned.IsAssignedTo("driver-x"))
	assert.NotNil(t, assigned.AcceptedAt)

	_, err = repo.AssignDriver(ctx, o.ID, "driver-y")
	assert.ErrorIs(t, err, ErrOrderNotAvailable)

	_, err = repo.AssignDriver(ctx, "missing", "driver-y")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
