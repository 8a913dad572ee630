package application

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

type Service struct {
	cfg           Config
	identities    ports.IdentityProvider
	profiles      ports.ProfileRepository
	roleRecords   ports.RoleRecordRepository
	organizations ports.OrganizationRepository
	subscriptions ports.SubscriptionRepository
	payments      ports.PaymentRepository
	outbox        ports.OutboxRepository
	gateway       ports.PaymentGateway
	verifications ports.VerificationCache
	activations   ports.ActivationQueue
	tokenSigner   ports.TokenSigner
	logger        *slog.Logger
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Identities    ports.IdentityProvider
	Profiles      ports.ProfileRepository
	RoleRecords   ports.RoleRecordRepository
	Organizations ports.OrganizationRepository
	Subscriptions ports.SubscriptionRepository
	Payments      ports.PaymentRepository
	Outbox        ports.OutboxRepository
	Gateway       ports.PaymentGateway
	Verifications ports.VerificationCache
	Activations   ports.ActivationQueue
	TokenSigner   ports.TokenSigner
	Logger        *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg.ActivationMaxAttempts <= 0 {
		cfg.ActivationMaxAttempts = 3
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}
	if cfg.VerificationCacheTTL <= 0 {
		cfg.VerificationCacheTTL = 2 * time.Minute
	}
	return &Service{
		cfg:           cfg,
		identities:    deps.Identities,
		profiles:      deps.Profiles,
		roleRecords:   deps.RoleRecords,
		organizations: deps.Organizations,
		subscriptions: deps.Subscriptions,
		payments:      deps.Payments,
		outbox:        deps.Outbox,
		gateway:       deps.Gateway,
		verifications: deps.Verifications,
		activations:   deps.Activations,
		tokenSigner:   deps.TokenSigner,
		logger:        logger,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

func normalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}
