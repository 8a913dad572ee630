package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
)

type Config struct {
	DefaultCurrency       string
	TokenTTL              time.Duration
	VerificationCacheTTL  time.Duration
	ActivationMaxAttempts int
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`

	// Role-specific attributes; ignored for roles without a record.
	GuardianPhone  string `json:"guardian_phone,omitempty"`
	EnrollmentYear int    `json:"enrollment_year,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
}

type SignupResponse struct {
	UserID uuid.UUID   `json:"user_id"`
	Role   domain.Role `json:"role"`
}

type AdminSignupRequest struct {
	SignupRequest

	OrgType         string `json:"org_type"`
	OrgName         string `json:"org_name"`
	OrgCode         string `json:"org_code"`
	OrgAddress      string `json:"org_address"`
	OrgCity         string `json:"org_city"`
	OrgState        string `json:"org_state"`
	OrgContactPhone string `json:"org_contact_phone"`
	OrgContactEmail string `json:"org_contact_email"`
}

type AdminSignupResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
}

type EventSignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	EventID   string `json:"event_id"`
}

type ActivateSubscriptionRequest struct {
	UserID            uuid.UUID `json:"user_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpaySignature string    `json:"razorpay_signature"`
	PlanType          string    `json:"plan_type"`
	Amount            int64     `json:"amount"`
	BillingCycle      string    `json:"billing_cycle"`
	StartDate         time.Time `json:"start_date,omitempty"`
}

type ActivateSubscriptionResponse struct {
	SubscriptionID uuid.UUID                 `json:"subscription_id"`
	Status         domain.SubscriptionStatus `json:"status"`
	StartDate      time.Time                 `json:"start_date"`
	EndDate        time.Time                 `json:"end_date"`
	AlreadyExists  bool                      `json:"already_exists"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      domain.Role `json:"role"`
	ExpiresIn int64       `json:"expires_in"`
}

type SubscriptionItem struct {
	SubscriptionID uuid.UUID                 `json:"subscription_id"`
	PlanType       string                    `json:"plan_type"`
	Amount         int64                     `json:"amount"`
	Currency       string                    `json:"currency"`
	BillingCycle   domain.BillingCycle       `json:"billing_cycle"`
	StartDate      time.Time                 `json:"start_date"`
	EndDate        time.Time                 `json:"end_date"`
	Status         domain.SubscriptionStatus `json:"status"`
	CancelledAt    *time.Time                `json:"cancelled_at,omitempty"`
}

type PaymentItem struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	PaymentID     string    `json:"payment_id"`
	OrderID       string    `json:"order_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toSubscriptionItem(s domain.Subscription) SubscriptionItem {
	return SubscriptionItem{
		SubscriptionID: s.SubscriptionID,
		PlanType:       s.PlanType,
		Amount:         s.Amount,
		Currency:       s.Currency,
		BillingCycle:   s.BillingCycle,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Status:         s.Status,
		CancelledAt:    s.CancelledAt,
	}
}

func toPaymentItem(t domain.PaymentTransaction) PaymentItem {
	return PaymentItem{
		TransactionID: t.TransactionID,
		PaymentID:     t.PaymentID,
		OrderID:       t.OrderID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
	}
}
