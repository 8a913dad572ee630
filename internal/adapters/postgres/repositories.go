package postgres

import (
	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/ports"
)

// Repositories groups the Postgres-backed port implementations wired at
// bootstrap.
type Repositories struct {
	Profiles      ports.ProfileRepository
	RoleRecords   ports.RoleRecordRepository
	Organizations ports.OrganizationRepository
	Subscriptions ports.SubscriptionRepository
	Payments      ports.PaymentRepository
	Outbox        ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Profiles:      &profileRepository{db: db},
		RoleRecords:   &roleRecordRepository{db: db},
		Organizations: &organizationRepository{db: db},
		Subscriptions: &subscriptionRepository{db: db},
		Payments:      &paymentRepository{db: db},
		Outbox:        &outboxRepository{db: db},
	}
}
