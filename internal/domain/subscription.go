package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus values form a small state machine. The activation
// workflow owns only two transitions: creation into StatusActive and the
// compensating StatusActive -> StatusFailed when post-creation transaction
// logging errors unrecoverably. Cancellation is user-initiated and expiry is
// time-based; both happen outside activation.
type SubscriptionStatus string

const (
	StatusPending   SubscriptionStatus = "pending"
	StatusActive    SubscriptionStatus = "active"
	StatusPaused    SubscriptionStatus = "paused"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusFailed    SubscriptionStatus = "failed"
	StatusExpired   SubscriptionStatus = "expired"
)

// BillingCycle is the subscription period unit.
type BillingCycle string

const (
	CycleMonth BillingCycle = "month"
	CycleYear  BillingCycle = "year"
)

// Subscription ties a user to a paid plan. PaymentID is the external gateway
// payment id and is the duplicate-detection key for idempotent activation.
type Subscription struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	PlanType       string
	Amount         int64
	Currency       string
	BillingCycle   BillingCycle
	StartDate      time.Time
	EndDate        time.Time
	Status         SubscriptionStatus
	PaymentID      string
	OrderID        string
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PeriodEnd computes the subscription end date from its billing cycle.
// End dates are whole calendar periods: exactly +1 month or +1 year from the
// start, never partial. Unrecognized cycle strings default to month.
func PeriodEnd(start time.Time, cycle BillingCycle) time.Time {
	if cycle == CycleYear {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// CanCancel reports whether a user-initiated cancellation is allowed.
func (s Subscription) CanCancel() bool {
	return s.Status == StatusActive
}

// IsExpirable reports whether the expiry sweep may close this subscription.
func (s Subscription) IsExpirable(now time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusCancelled {
		return false
	}
	return s.EndDate.Before(now)
}
