// Package worker decouples audit persistence from the request path. Services
// write to a channel; the worker drains it into the configured store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	audit "travelogy/pkg/platform/audit"
	"travelogy/pkg/platform/sentinel"
)

// Worker consumes audit events from a channel and persists them. Store
// failures are logged and the event dropped; audit is best-effort and must
// never block or fail a request.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled, then flushes whatever
// is already buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) flush() {
	for {
		select {
		case event := <-w.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("failed to persist audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

// ChannelStore adapts the worker inbox to the audit.Store interface so
// services emit through a Publisher without knowing about the worker.
type ChannelStore struct {
	inbox chan<- audit.Event
}

func NewChannelStore(inbox chan<- audit.Event) *ChannelStore {
	return &ChannelStore{inbox: inbox}
}

// Append enqueues without blocking. A full inbox drops the event; the
// caller treats audit as best-effort and only logs the error.
func (s *ChannelStore) Append(_ context.Context, event audit.Event) error {
	select {
	case s.inbox <- event:
		return nil
	default:
		return fmt.Errorf("audit inbox full: %w", sentinel.ErrUnavailable)
	}
}
