package email

import (
	"context"
	"log/slog"
)

// LogMailer logs sends instead of delivering them. Used when no SMTP relay
// is configured so local runs still exercise the notification path.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (m *LogMailer) Send(ctx context.Context, recipient, templateRole string, fields map[string]string) error {
	slog.Default().InfoContext(ctx, "mail send skipped, no relay configured",
		"module", "email",
		"layer", "adapter",
		"operation", "send",
		"outcome", "skipped",
		"recipient", recipient,
		"template_role", templateRole,
		"field_count", len(fields),
	)
	return nil
}
