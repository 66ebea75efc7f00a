package kafka

import (
	"context"
	"log/slog"
)

// IdempotencyStore remembers which event ids have been handled.
type IdempotencyStore interface {
	// Claim records eventID and reports whether it was new. Implementations
	// must make the check and the write atomic.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Release forgets eventID so a failed delivery can be retried.
	Release(ctx context.Context, eventID string) error
}

// IdempotentHandler drops events whose id was already claimed. If the store
// is unavailable the event is handled anyway; duplicates are preferred over
// lost events.
func IdempotentHandler(store IdempotencyStore, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			return inner(ctx, event)
		}

		fresh, err := store.Claim(ctx, event.EventID)
		if err != nil {
			logger.WarnContext(ctx, "idempotency store unavailable, handling event anyway",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			return inner(ctx, event)
		}
		if !fresh {
			logger.DebugContext(ctx, "skipping duplicate event",
				slog.String("event_id", event.EventID),
				slog.String("event_type", event.EventType),
			)
			return ErrDuplicate
		}

		if err := inner(ctx, event); err != nil {
			if rerr := store.Release(ctx, event.EventID); rerr != nil {
				logger.WarnContext(ctx, "failed to release event id",
					slog.String("event_id", event.EventID),
					slog.String("error", rerr.Error()),
				)
			}
			return err
		}
		return nil
	}
}
