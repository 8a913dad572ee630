package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

func signAttempt(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	const secret = "test_secret"
	gateway := NewRazorpayGateway("rzp_test_key", secret)

	cases := []struct {
		name    string
		attempt ports.CheckoutAttempt
		wantOK  bool
	}{
		{
			name: "valid signature",
			attempt: ports.CheckoutAttempt{
				PaymentID: "pay_123",
				OrderID:   "order_456",
				Signature: signAttempt(secret, "order_456", "pay_123"),
			},
			wantOK: true,
		},
		{
			name: "signature for another payment",
			attempt: ports.CheckoutAttempt{
				PaymentID: "pay_123",
				OrderID:   "order_456",
				Signature: signAttempt(secret, "order_456", "pay_999"),
			},
		},
		{
			name: "signature under a different secret",
			attempt: ports.CheckoutAttempt{
				PaymentID: "pay_123",
				OrderID:   "order_456",
				Signature: signAttempt("other_secret", "order_456", "pay_123"),
			},
		},
		{
			name: "missing payment id",
			attempt: ports.CheckoutAttempt{
				OrderID:   "order_456",
				Signature: signAttempt(secret, "order_456", ""),
			},
		},
		{
			name:    "missing signature",
			attempt: ports.CheckoutAttempt{PaymentID: "pay_123", OrderID: "order_456"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := gateway.VerifySignature(tc.attempt)
			if tc.wantOK {
				if err != nil {
					t.Fatalf("VerifySignature: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrPaymentVerification) {
				t.Fatalf("err = %v, want ErrPaymentVerification", err)
			}
		})
	}
}
