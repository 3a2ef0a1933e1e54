package store

import (
	"context"

	"github.com/mkravets/shopcore/internal/logging"
)

// Watch runs query once immediately and again after every touch of the
// given tables, pushing each full result snapshot to the returned
// channel. The stream is infinite until ctx is cancelled, at which
// point the channel is closed; cancelling has no other side effects.
// A failed re-query is logged and skipped, leaving the previous
// snapshot as the subscriber's latest view.
func Watch[T any](ctx context.Context, s *Store, query func(context.Context) (T, error), tables ...string) <-chan T {
	out := make(chan T, 1)
	notify, cancel := s.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() {
			snap, err := query(ctx)
			if err != nil {
				logging.FromContext(ctx).Error("live query failed", "tables", tables, "error", err)
				return
			}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				emit()
			}
		}
	}()

	return out
}
