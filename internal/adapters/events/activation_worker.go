package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradlink/accounts-service/internal/application"
)

// ActivationRetryWorker replays parked subscription activations one at a
// time. Sequential replay keeps duplicate-payment detection simple: a retried
// payment either lands or is discarded before the next one is attempted.
type ActivationRetryWorker struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewActivationRetryWorker(logger *slog.Logger, service *application.Service, interval time.Duration) *ActivationRetryWorker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ActivationRetryWorker{
		logger:   logger,
		service:  service,
		interval: interval,
	}
}

// Run executes the retry loop until context cancellation. When the queue has
// items the loop drains eagerly; the ticker only paces the idle case.
func (w *ActivationRetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		processed, err := w.service.ProcessQueuedActivation(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "activation retry iteration failed",
				"module", "events.activation_worker",
				"layer", "adapter",
				"operation", "process_queued_activation",
				"outcome", "failure",
				"error", err,
			)
		}
		if processed && err == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
