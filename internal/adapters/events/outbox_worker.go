// Package events holds the background loops: outbox mail dispatch,
// activation retry, and subscription expiry.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gradlink/accounts-service/internal/ports"
)

// OutboxWorker drains unsent notification rows and hands them to the mailer.
// This separates transactional writes from relay delivery for reliability.
type OutboxWorker struct {
	logger     *slog.Logger
	outbox     ports.OutboxRepository
	mailer     ports.Mailer
	interval   time.Duration
	batchSize  int
	maxRetries int
}

// NewOutboxWorker constructs the notification dispatch loop with sane defaults.
func NewOutboxWorker(
	logger *slog.Logger,
	outbox ports.OutboxRepository,
	mailer ports.Mailer,
	interval time.Duration,
	batchSize int,
	maxRetries int,
) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxWorker{
		logger:     logger,
		outbox:     outbox,
		mailer:     mailer,
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}
}

// Run executes the periodic dispatch loop until context cancellation.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "outbox_process_once",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) processOnce(ctx context.Context) error {
	records, err := w.outbox.ClaimUnsent(ctx, w.batchSize)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	sent := 0
	failed := 0
	deadLettered := 0
	for _, rec := range records {
		if rec.RetryCount >= w.maxRetries {
			deadLettered++
			_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, "retry threshold reached before send", now)
			continue
		}

		var fields map[string]string
		if err := json.Unmarshal(rec.Payload, &fields); err != nil {
			deadLettered++
			_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, "undecodable payload: "+err.Error(), now)
			continue
		}

		if err := w.mailer.Send(ctx, rec.Recipient, rec.TemplateRole, fields); err != nil {
			failed++
			w.logger.WarnContext(ctx, "notification send failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "send_notification",
				"outcome", "failure",
				"outbox_id", rec.OutboxID,
				"event_type", rec.EventType,
				"retry_count", rec.RetryCount,
				"error", err,
			)
			_ = w.outbox.MarkFailed(ctx, rec.OutboxID, err.Error(), now)
			continue
		}

		sent++
		_ = w.outbox.MarkSent(ctx, rec.OutboxID, now)
	}

	if len(records) > 0 {
		w.logger.InfoContext(ctx, "outbox batch processed",
			"module", "events.outbox_worker",
			"layer", "adapter",
			"operation", "outbox_process_once",
			"outcome", "success",
			"batch_size", len(records),
			"sent_count", sent,
			"failed_count", failed,
			"dead_lettered_count", deadLettered,
		)
	}
	return nil
}
