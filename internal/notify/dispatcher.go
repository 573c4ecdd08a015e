package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Dispatcher accepts notifications from request handling and persists them on
// a background worker so slow storage never sits on the request path.
type Dispatcher struct {
	store  Store
	inbox  chan Notification
	logger *slog.Logger
}

func NewDispatcher(store Store, buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		store:  store,
		inbox:  make(chan Notification, buffer),
		logger: logger,
	}
}

// Dispatch enqueues a notification without blocking. A full inbox drops the
// notification: the channel is advisory and request latency wins.
func (d *Dispatcher) Dispatch(_ context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	select {
	case d.inbox <- n:
		return nil
	default:
		d.logger.Warn("notification inbox full, dropping",
			"user_id", n.UserID.String(),
			"type", string(n.Type),
		)
		return errors.New("notification inbox full")
	}
}

// Run consumes the inbox and persists notifications until the context is
// cancelled. Persistence errors are logged and the worker keeps going.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-d.inbox:
			if err := d.store.Create(ctx, n); err != nil {
				d.logger.ErrorContext(ctx, "failed to persist notification",
					"error", err,
					"user_id", n.UserID.String(),
				)
			}
		}
	}
}
