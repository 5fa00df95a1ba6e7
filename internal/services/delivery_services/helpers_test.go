package delivery_services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-courier/internal/database"
	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/events"
	"github.com/iyunix/go-courier/internal/lock"
	"github.com/iyunix/go-courier/internal/repository/audit"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
	"github.com/iyunix/go-courier/internal/services"
	"github.com/iyunix/go-courier/internal/services/sms"
)

const (
	companyID = "company-1"
	driverX   = "driver-x"
	driverY   = "driver-y"
)

type fakeProvider struct {
	mu      sync.Mutex
	sent    []sms.Message
	failFor map[string]error
	// block makes every send wait for its context to end.
	block bool
}

func (f *fakeProvider) Name() string                          { return "fake" }
func (f *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeProvider) SendDeliveryCode(ctx context.Context, msg sms.Message) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[msg.Phone]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeProvider) messages() []sms.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sms.Message(nil), f.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type fixture struct {
	db         *gorm.DB
	orderRepo  order.OrderRepository
	legRepo    leg.LegRepository
	auditRepo  audit.AuditRepository
	provider   *fakeProvider
	publisher  *recordingPublisher
	validation *ValidationService
	codes      *CodeService
	dispatch   *DispatchService
	orders     *OrderService
	audits     *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		orderRepo: order.NewGormOrderRepository(db),
		legRepo:   leg.NewGormLegRepository(db),
		auditRepo: audit.NewGormAuditRepository(db),
		provider:  &fakeProvider{failFor: map[string]error{}},
		publisher: &recordingPublisher{},
	}
	logger := &services.NoOpLogger{}
	locker := lock.NewMemoryLocker()
	f.validation = NewValidationService(f.legRepo, f.orderRepo, locker, f.publisher, logger)
	f.codes = NewCodeService(f.legRepo, f.orderRepo, logger)
	f.dispatch = NewDispatchService(f.orderRepo, f.legRepo, f.provider, locker, f.publisher, logger, 2)
	f.orders = NewOrderService(f.orderRepo, f.dispatch, false, logger)
	f.audits = NewAuditService(f.auditRepo, f.legRepo, f.orderRepo)
	return f
}

// seedOrder creates an order assigned to driverX whose legs carry the given
// codes ("" leaves the leg unconfigured).
func (f *fixture) seedOrder(t *testing.T, codes ...string) *domain.Order {
	t.Helper()
	driver := driverX
	o := &domain.Order{CompanyID: companyID, DriverUserID: &driver, Status: domain.OrderStatusAssigned}
	for i, c := range codes {
		l := domain.DeliveryLeg{CustomerName: "Cliente", CustomerPhone: "1198765432" + string(rune('0'+i))}
		if c != "" {
			h := deliverycode.Hash(c)
			l.CodeHash = &h
		}
		o.Legs = append(o.Legs, l)
	}
	require.NoError(t, f.orderRepo.Create(context.Background(), o))
	return o
}

func (f *fixture) leg(t *testing.T, id string) *domain.DeliveryLeg {
	t.Helper()
	l, err := f.legRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) auditCount(t *testing.T, legID string) int64 {
	t.Helper()
	n, err := f.auditRepo.CountByLeg(context.Background(), legID)
	require.NoError(t, err)
	return n
}

var errProviderDown = &sms.SMSError{Type: sms.ErrTypeProvider, Code: 503, Message: "provider unavailable"}

