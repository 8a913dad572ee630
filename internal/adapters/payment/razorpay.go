// Package payment implements the Razorpay gateway adapter. Signature
// verification is a local HMAC check; payment lookups go through the
// Razorpay API client.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

// RazorpayGateway verifies checkout attempts against Razorpay. The key
// secret signs the order_id|payment_id pair; a mismatch means the checkout
// result was tampered with or belongs to another account.
type RazorpayGateway struct {
	client    *razorpay.Client
	keySecret string
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

func (g *RazorpayGateway) VerifySignature(attempt ports.CheckoutAttempt) error {
	if attempt.PaymentID == "" || attempt.OrderID == "" || attempt.Signature == "" {
		return fmt.Errorf("%w: missing checkout fields", domain.ErrPaymentVerification)
	}

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(attempt.OrderID + "|" + attempt.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(attempt.Signature)) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrPaymentVerification)
	}
	return nil
}

func (g *RazorpayGateway) FetchPayment(_ context.Context, paymentID string) (ports.GatewayPayment, error) {
	raw, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return ports.GatewayPayment{}, fmt.Errorf("%w: fetch payment %s: %v", domain.ErrExternal, paymentID, err)
	}

	payment := ports.GatewayPayment{PaymentID: paymentID}
	if id, ok := raw["id"].(string); ok {
		payment.PaymentID = id
	}
	if orderID, ok := raw["order_id"].(string); ok {
		payment.OrderID = orderID
	}
	if status, ok := raw["status"].(string); ok {
		payment.Status = status
	}
	if currency, ok := raw["currency"].(string); ok {
		payment.Currency = currency
	}
	// Razorpay reports amounts in the currency's smallest unit as a JSON
	// number, which decodes as float64.
	if amount, ok := raw["amount"].(float64); ok {
		payment.Amount = int64(amount)
	}
	return payment, nil
}
