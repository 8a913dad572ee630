package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
)

// CreateIdentityParams are the inputs to the primary resource creator.
// Metadata carries denormalized name/role/phone as opaque key-value pairs so
// the identity remains self-describing if the profile write is lost.
type CreateIdentityParams struct {
	Email    string
	Password string
	Metadata map[string]string
}

// IdentityProvider is the external authentication store. Create is the one
// irreversible, externally visible step of provisioning; Delete is its
// compensating action. FindByEmail returning domain.ErrNotFound means the
// email is free; any other error must abort the caller's workflow.
type IdentityProvider interface {
	Create(ctx context.Context, params CreateIdentityParams) (domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (domain.Identity, error)
	Delete(ctx context.Context, identityID uuid.UUID) error
	VerifyPassword(ctx context.Context, email, password string) (domain.Identity, error)
}

// CheckoutAttempt is the client-side result of a gateway checkout flow.
type CheckoutAttempt struct {
	PaymentID string
	OrderID   string
	Signature string
}

// GatewayPayment is the gateway's view of a captured payment.
type GatewayPayment struct {
	PaymentID string
	OrderID   string
	Amount    int64
	Currency  string
	Status    string
}

// PaymentGateway verifies checkout attempts against the external gateway.
// VerifySignature is a pure HMAC check; FetchPayment is a remote lookup used
// to cross-check the charged amount.
type PaymentGateway interface {
	VerifySignature(attempt CheckoutAttempt) error
	FetchPayment(ctx context.Context, paymentID string) (GatewayPayment, error)
}

// Mailer sends templated HTML email. Sends are fire-and-forget from the
// workflow's perspective: failures are logged and retried by the outbox
// worker, never propagated to the caller.
type Mailer interface {
	Send(ctx context.Context, recipient, templateRole string, fields map[string]string) error
}
