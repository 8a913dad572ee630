package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userProfileModel struct {
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey"`
	Email          string     `gorm:"column:email"`
	FirstName      string     `gorm:"column:first_name"`
	LastName       string     `gorm:"column:last_name"`
	Phone          string     `gorm:"column:phone"`
	Role           string     `gorm:"column:role"`
	IsActive       bool       `gorm:"column:is_active"`
	OrganizationID *uuid.UUID `gorm:"column:organization_id"`
	Metadata       string     `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (userProfileModel) TableName() string { return "user_profiles" }

type studentProfileModel struct {
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	GuardianPhone  string    `gorm:"column:guardian_phone"`
	EnrollmentYear int       `gorm:"column:enrollment_year"`
	ApprovalStatus string    `gorm:"column:approval_status"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (studentProfileModel) TableName() string { return "student_profiles" }

type recruiterProfileModel struct {
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CompanyName        string    `gorm:"column:company_name"`
	CompanyWebsite     string    `gorm:"column:company_website"`
	VerificationStatus string    `gorm:"column:verification_status"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (recruiterProfileModel) TableName() string { return "recruiter_profiles" }

type organizationModel struct {
	OrgID          uuid.UUID `gorm:"column:org_id;type:uuid;primaryKey"`
	OrgType        string    `gorm:"column:org_type"`
	Name           string    `gorm:"column:name"`
	Code           string    `gorm:"column:code"`
	AdminUserID    uuid.UUID `gorm:"column:admin_user_id"`
	ApprovalStatus string    `gorm:"column:approval_status"`
	Address        string    `gorm:"column:address"`
	City           string    `gorm:"column:city"`
	State          string    `gorm:"column:state"`
	ContactPhone   string    `gorm:"column:contact_phone"`
	ContactEmail   string    `gorm:"column:contact_email"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (organizationModel) TableName() string { return "organizations" }

type subscriptionModel struct {
	SubscriptionID uuid.UUID  `gorm:"column:subscription_id;type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id"`
	PlanType       string     `gorm:"column:plan_type"`
	Amount         int64      `gorm:"column:amount"`
	Currency       string     `gorm:"column:currency"`
	BillingCycle   string     `gorm:"column:billing_cycle"`
	StartDate      time.Time  `gorm:"column:start_date"`
	EndDate        time.Time  `gorm:"column:end_date"`
	Status         string     `gorm:"column:status"`
	PaymentID      string     `gorm:"column:payment_id"`
	OrderID        string     `gorm:"column:order_id"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (subscriptionModel) TableName() string { return "subscriptions" }

type paymentTransactionModel struct {
	TransactionID  uuid.UUID `gorm:"column:transaction_id;type:uuid;primaryKey"`
	SubscriptionID uuid.UUID `gorm:"column:subscription_id"`
	PaymentID      string    `gorm:"column:payment_id"`
	OrderID        string    `gorm:"column:order_id"`
	Amount         int64     `gorm:"column:amount"`
	Currency       string    `gorm:"column:currency"`
	Status         string    `gorm:"column:status"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (paymentTransactionModel) TableName() string { return "payment_transactions" }

type notificationOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	Recipient      string     `gorm:"column:recipient"`
	TemplateRole   string     `gorm:"column:template_role"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (notificationOutboxModel) TableName() string { return "notification_outbox" }
