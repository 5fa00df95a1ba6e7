package delivery_services

import (
	"context"
	"time"

	"github.com/iyunix/go-courier/internal/events"
)

// Logger interface for all delivery services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

const (
	// commitTimeout bounds the final write once the caller may have gone away.
	commitTimeout  = 10 * time.Second
	publishTimeout = 3 * time.Second
)

func utcNow() time.Time { return time.Now().UTC() }

// publish is best effort: the database row is the record, the event is a copy.
func publish(ctx context.Context, publisher events.Publisher, logger Logger, event events.Event) {
	if publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := publisher.Publish(pctx, event); err != nil {
		logger.Warn("failed to publish code lifecycle event",
			"error", err,
			"type", event.Type,
			"leg_id", event.DeliveryLegID)
	}
}
