package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotListener delivers SlotChannel notifications to a callback. It holds a
// dedicated connection for the lifetime of the listen loop; pooled
// connections cannot be shared while blocked in WaitForNotification.
type SlotListener struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSlotListener(pool *pgxpool.Pool, logger *slog.Logger) *SlotListener {
	return &SlotListener{
		pool: pool,
		log:  logger.With(slog.String("service", "slot-listener")),
	}
}

type CleanupFunc func()

// Run starts the listen loop. Every notification on SlotChannel is decoded
// and passed to fn; malformed payloads are logged and dropped.
func (l *SlotListener) Run(ctx context.Context, fn func(ctx context.Context, change SlotChange)) (CleanupFunc, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf("LISTEN %s", SlotChannel)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen on %s: %w", SlotChannel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.log.ErrorContext(ctx, "error waiting for slot notification",
					slog.Any("error", err))
				return
			}

			var change SlotChange
			if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
				l.log.WarnContext(ctx, "dropping malformed slot notification",
					slog.String("payload", notification.Payload),
					slog.Any("error", err))
				continue
			}

			fn(ctx, change)
		}
	}()

	cleanup := func() {
		cancel()
		<-doneChan
	}

	return cleanup, nil
}
