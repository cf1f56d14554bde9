package feed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/djenggot/orderbot/pkg/logging"
)

const channelName = "orders_feed"

var tracer = otel.Tracer("orderbot.internal.feed")

// Listener subscribes to the orders_feed Postgres channel on a dedicated
// connection and hands each decoded event to a deliver callback.
//
// The LISTEN is issued before onReady runs, so a caller that performs its
// bootstrap scan inside onReady observes every event committed after the
// scan started: notifications raised during the scan queue up on the
// connection until WaitForNotification is first called.
type Listener struct {
	pool       *pgxpool.Pool
	logger     *logging.Logger
	retryDelay time.Duration
}

// NewListener creates a feed listener over the given pool.
func NewListener(pool *pgxpool.Pool, retryDelay time.Duration, logger *logging.Logger) *Listener {
	if pool == nil {
		panic("feed: pgx pool required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &Listener{
		pool:       pool,
		logger:     logger,
		retryDelay: retryDelay,
	}
}

// Run listens until ctx is cancelled. onReady runs after every successful
// (re)subscription and before any event is delivered; the caller uses it to
// rebuild state that incremental events alone cannot reconstruct. After a
// connection failure the listener waits a fixed delay and resubscribes.
func (l *Listener) Run(ctx context.Context, onReady func(context.Context) error, deliver func(Event)) error {
	for {
		err := l.listenOnce(ctx, onReady, deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Error("feed subscription lost, retrying", "error", err, "delay", l.retryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context, onReady func(context.Context) error, deliver func(Event)) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+channelName); err != nil {
		return err
	}

	if onReady != nil {
		if err := onReady(ctx); err != nil {
			return err
		}
	}
	l.logger.Info("order change feed attached", "channel", channelName)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		_, span := tracer.Start(ctx, "feed.notification")
		event, perr := ParsePayload([]byte(notification.Payload))
		if perr != nil {
			// Protocol error: log and keep listening.
			l.logger.Warn("dropping malformed feed payload", "error", perr)
			span.RecordError(perr)
			span.End()
			continue
		}
		deliver(event)
		span.End()
	}
}

// IsCancellation reports whether err only reflects context shutdown.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
