package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradlink/accounts-service/internal/application"
)

// ExpiryWorker sweeps subscriptions whose paid period has lapsed.
type ExpiryWorker struct {
	logger    *slog.Logger
	service   *application.Service
	interval  time.Duration
	batchSize int
}

func NewExpiryWorker(logger *slog.Logger, service *application.Service, interval time.Duration, batchSize int) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ExpiryWorker{
		logger:    logger,
		service:   service,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run executes the periodic expiry sweep until context cancellation.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		expired, err := w.service.ExpireDueSubscriptions(ctx, w.batchSize)
		if err != nil {
			w.logger.ErrorContext(ctx, "subscription expiry iteration failed",
				"module", "events.expiry_worker",
				"layer", "adapter",
				"operation", "expire_due_subscriptions",
				"outcome", "failure",
				"error", err,
			)
		} else if expired > 0 {
			w.logger.InfoContext(ctx, "subscriptions expired",
				"module", "events.expiry_worker",
				"layer", "adapter",
				"operation", "expire_due_subscriptions",
				"outcome", "success",
				"expired_count", expired,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
