package ports

import (
	"context"
	"time"
)

// VerificationCache memoizes availability-check results for a short TTL so
// double-submitted signup forms do not hammer the identity store. It is an
// injected dependency, never a package-level singleton, so tests can supply a
// fresh instance.
type VerificationCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// QueuedActivation is a subscription-activation request parked for retry
// after a storage failure. Items are keyed by enqueue timestamp.
type QueuedActivation struct {
	QueuedAt  time.Time
	UserID    string
	PaymentID string
	OrderID   string
	Signature string
	PlanType  string
	Amount    int64
	Cycle     string
	Attempts  int
}

// ActivationQueue is the durable retry queue for activation requests.
// Retries are sequential and capped; Discard drops an item permanently after
// the attempt budget is spent.
type ActivationQueue interface {
	Enqueue(ctx context.Context, item QueuedActivation) error
	PeekOldest(ctx context.Context) (*QueuedActivation, error)
	Requeue(ctx context.Context, item QueuedActivation) error
	Discard(ctx context.Context, item QueuedActivation) error
}
