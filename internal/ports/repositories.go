package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
)

// ProfileRepository persists application user rows. The identity id is the
// primary key, so a retried signup (new identity) never collides with
// dependent rows left behind by a compensated one.
type ProfileRepository interface {
	Insert(ctx context.Context, profile domain.UserProfile) error
	GetByID(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (domain.UserProfile, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	SetOrganization(ctx context.Context, userID, orgID uuid.UUID, updatedAt time.Time) error
}

// RoleRecordRepository stores role-specific extension rows. The tagged
// variant keeps dispatch data-driven; the adapter maps Kind to a table.
type RoleRecordRepository interface {
	Insert(ctx context.Context, record domain.RoleRecord) error
	ExistsForUser(ctx context.Context, kind domain.RoleRecordKind, userID uuid.UUID) (bool, error)
}

// OrganizationRepository persists institutions created by admin signups.
type OrganizationRepository interface {
	Insert(ctx context.Context, org domain.Organization) error
	GetByCode(ctx context.Context, code string) (domain.Organization, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// SubscriptionRepository owns subscription rows. GetByPaymentID is the
// duplicate-payment guard: exact match on the external payment id.
type SubscriptionRepository interface {
	Insert(ctx context.Context, sub domain.Subscription) error
	GetByID(ctx context.Context, subscriptionID uuid.UUID) (domain.Subscription, error)
	GetByPaymentID(ctx context.Context, paymentID string) (domain.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Subscription, error)
	UpdateStatus(ctx context.Context, subscriptionID uuid.UUID, status domain.SubscriptionStatus, updatedAt time.Time) error
	MarkCancelled(ctx context.Context, subscriptionID uuid.UUID, cancelledAt time.Time) error
	ListExpirable(ctx context.Context, before time.Time, limit int) ([]domain.Subscription, error)
}

// PaymentRepository is append-only; there is no update method on purpose.
type PaymentRepository interface {
	Insert(ctx context.Context, txn domain.PaymentTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.PaymentTransaction, error)
}

// OutboxEvent is a durable notification awaiting dispatch. Welcome and
// receipt emails are enqueued in the same transaction as the rows they
// describe and sent best-effort by the worker.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	Recipient    string
	TemplateRole string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord is the stored outbox state with retry metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	Recipient      string
	TemplateRole   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	SentAt         *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the send-retry workflow for notifications.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnsent(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}
