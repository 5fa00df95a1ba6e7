// File: internal/services/delivery_services/dispatch_service.go
package delivery_services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-courier/internal/deliverycode"
	"github.com/iyunix/go-courier/internal/domain"
	"github.com/iyunix/go-courier/internal/events"
	"github.com/iyunix/go-courier/internal/lock"
	"github.com/iyunix/go-courier/internal/metrics"
	"github.com/iyunix/go-courier/internal/repository/leg"
	"github.com/iyunix/go-courier/internal/repository/order"
	"github.com/iyunix/go-courier/internal/services"
	"github.com/iyunix/go-courier/internal/services/sms"
)

const (
	defaultDispatchConcurrency = 4
	// defaultSendTimeout covers three 10s attempts and their backoff.
	defaultSendTimeout = 40 * time.Second
)

// LegDispatch is the outcome for one leg. Skipped legs already had their
// code sent (or are validated) and were left untouched.
type LegDispatch struct {
	LegID   string `json:"leg_id"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DispatchResult struct {
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped"`
	PerLeg  []LegDispatch `json:"per_leg"`
}

// DispatchService pushes each leg's code to its customer exactly once.
type DispatchService struct {
	orderRepo   order.OrderRepository
	legRepo     leg.LegRepository
	provider    sms.Provider
	locker      lock.Locker
	publisher   events.Publisher
	logger      Logger
	concurrency int
	sendTimeout time.Duration
	now         func() time.Time
}

func NewDispatchService(orderRepo order.OrderRepository, legRepo leg.LegRepository, provider sms.Provider, locker lock.Locker, publisher events.Publisher, logger Logger, concurrency int) *DispatchService {
	if concurrency <= 0 {
		concurrency = defaultDispatchConcurrency
	}
	return &DispatchService{
		orderRepo:   orderRepo,
		legRepo:     legRepo,
		provider:    provider,
		locker:      locker,
		publisher:   publisher,
		logger:      logger,
		concurrency: concurrency,
		sendTimeout: defaultSendTimeout,
		now:         utcNow,
	}
}

// WithSendTimeout caps how long one leg's SMS send, retries included, may
// hold the leg lock.
func (s *DispatchService) WithSendTimeout(d time.Duration) *DispatchService {
	if d > 0 {
		s.sendTimeout = d
	}
	return s
}

// DispatchCodes sends a fresh code to every leg of the order that has not
// had one sent yet. Safe to call repeatedly. Per-leg failures are reported
// in the result and never abort sibling legs.
func (s *DispatchService) DispatchCodes(ctx context.Context, orderID, driverID string) (*DispatchResult, error) {
	o, err := s.orderRepo.FindWithLegs(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !o.AcceptsDispatch() || !o.IsAssignedTo(driverID) {
		s.logger.Warn("code dispatch refused", "order_id", orderID, "driver_id", driverID, "status", o.Status)
		return nil, ErrUnauthorized
	}

	perLeg := make([]LegDispatch, len(o.Legs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range o.Legs {
		i := i
		legID := o.Legs[i].ID
		g.Go(func() error {
			perLeg[i] = s.dispatchLeg(ctx, o, legID, driverID)
			return nil
		})
	}
	_ = g.Wait()

	result := &DispatchResult{PerLeg: perLeg}
	for _, r := range perLeg {
		switch {
		case r.Skipped:
			result.Skipped++
			metrics.DispatchLegsTotal.WithLabelValues("skipped").Inc()
		case r.Success:
			result.Sent++
			metrics.DispatchLegsTotal.WithLabelValues("sent").Inc()
		default:
			result.Failed++
			metrics.DispatchLegsTotal.WithLabelValues("failed").Inc()
		}
	}

	s.logger.Info("code dispatch finished",
		"order_id", orderID,
		"driver_id", driverID,
		"sent", result.Sent,
		"failed", result.Failed,
		"skipped", result.Skipped)
	return result, nil
}

func (s *DispatchService) dispatchLeg(ctx context.Context, o *domain.Order, legID, driverID string) LegDispatch {
	res := LegDispatch{LegID: legID}

	unlock, err := s.locker.Lock(ctx, legID)
	if err != nil {
		res.Error = "could not lock leg"
		return res
	}
	defer unlock()

	// Re-read under the lock; the order snapshot may be stale.
	l, err := s.legRepo.FindByID(ctx, legID)
	if err != nil {
		s.logger.Error("failed to load leg for dispatch", "error", err, "leg_id", legID)
		res.Error = "could not load leg"
		return res
	}
	if l.CodeDispatched() || l.ValidatedAt != nil {
		res.Success, res.Skipped = true, true
		return res
	}

	phone, err := sms.NormalizePhone(l.CustomerPhone)
	if err != nil {
		s.logger.Warn("leg has no usable customer phone", "leg_id", legID, "order_id", o.ID)
		res.Error = describeSMSError(err)
		return res
	}

	code := deliverycode.Generate()
	start := time.Now()
	sendCtx, cancelSend := context.WithTimeout(ctx, s.sendTimeout)
	err = s.provider.SendDeliveryCode(sendCtx, sms.Message{Phone: phone, CustomerName: l.CustomerName, Code: code})
	cancelSend()
	metrics.SMSSendDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("SMS sending failed", "error", err, "leg_id", legID, "phone", services.MaskPhone(phone))
		res.Error = describeSMSError(err)
		return res
	}

	// The hash only replaces the previous one once the customer actually has the code.
	sentAt := s.now()
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := s.legRepo.CommitDispatch(commitCtx, legID, deliverycode.Hash(code), sentAt); err != nil {
		if errors.Is(err, leg.ErrCodeAlreadySent) || errors.Is(err, leg.ErrLegAlreadyValidated) {
			res.Success, res.Skipped = true, true
			return res
		}
		s.logger.Error("code sent but dispatch not recorded", "error", err, "leg_id", legID)
		res.Error = "code sent but not recorded"
		return res
	}

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:          events.TypeCodeDispatched,
		OrderID:       o.ID,
		DeliveryLegID: legID,
		ActorID:       driverID,
		Success:       true,
		OccurredAt:    sentAt,
	})
	s.logger.Info("delivery code sent", "leg_id", legID, "order_id", o.ID, "phone", services.MaskPhone(phone))
	res.Success = true
	return res
}

func describeSMSError(err error) string {
	var smsErr *sms.SMSError
	if errors.As(err, &smsErr) {
		return smsErr.Message
	}
	return "SMS provider error"
}
