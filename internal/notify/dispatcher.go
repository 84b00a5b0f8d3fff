package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/farkle-go/internal/model"
)

// Dispatcher fans a notification set out to a connection roster. Deliveries
// within a call are concurrent, at most once per recipient, with no retries
// and no cross-recipient ordering.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// NotifyAll delivers one message per recipient concurrently and waits for
// every delivery. Stale recipients are logged and excluded from the outcome;
// any other delivery error fails the whole batch. Deliveries that already
// succeeded are not rolled back.
func (d *Dispatcher) NotifyAll(ctx context.Context, recipients []model.ConnectionID, payloadOf func(model.ConnectionID) model.Message) error {
	var g errgroup.Group
	for _, id := range recipients {
		id := id
		g.Go(func() error {
			return d.send(ctx, id, payloadOf(id))
		})
	}
	return g.Wait()
}

// NotifyOne delivers a single message with the same stale-exclusion rule
func (d *Dispatcher) NotifyOne(ctx context.Context, id model.ConnectionID, msg model.Message) error {
	return d.send(ctx, id, msg)
}

func (d *Dispatcher) send(ctx context.Context, id model.ConnectionID, msg model.Message) error {
	err := d.notifier.Send(ctx, id, msg)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStaleConnection) {
		d.logger.Info("found stale connection",
			slog.String("connection_id", string(id)),
		)
		return nil
	}
	d.logger.Error("failed to send message",
		slog.String("connection_id", string(id)),
		slog.String("type", string(msg.Type)),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("send to %s: %w", id, err)
}
