package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentTransaction is an append-only log row. Rows are never mutated after
// insert; a later row supersedes an earlier one for the same subscription.
type PaymentTransaction struct {
	TransactionID  uuid.UUID
	SubscriptionID uuid.UUID
	PaymentID      string
	OrderID        string
	Amount         int64
	Currency       string
	Status         string
	CreatedAt      time.Time
}
