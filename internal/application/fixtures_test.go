package application_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gradlink/accounts-service/internal/application"
	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

type fixture struct {
	service       *application.Service
	identities    *fakeIdentities
	profiles      *fakeProfiles
	roleRecords   *fakeRoleRecords
	organizations *fakeOrganizations
	subscriptions *fakeSubscriptions
	payments      *fakePayments
	outbox        *fakeOutbox
	gateway       *fakeGateway
	verifications *fakeVerificationCache
	activations   *fakeActivationQueue
}

func newFixture() *fixture {
	identities := &fakeIdentities{byEmail: map[string]domain.Identity{}}
	profiles := &fakeProfiles{byID: map[uuid.UUID]domain.UserProfile{}}
	roleRecords := &fakeRoleRecords{}
	organizations := &fakeOrganizations{byCode: map[string]domain.Organization{}}
	subscriptions := &fakeSubscriptions{byID: map[uuid.UUID]domain.Subscription{}}
	payments := &fakePayments{}
	outbox := &fakeOutbox{}
	gateway := &fakeGateway{payments: map[string]ports.GatewayPayment{}}
	verifications := &fakeVerificationCache{items: map[string]string{}}
	activations := &fakeActivationQueue{}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			DefaultCurrency:       "INR",
			TokenTTL:              24 * time.Hour,
			VerificationCacheTTL:  2 * time.Minute,
			ActivationMaxAttempts: 3,
		},
		Identities:    identities,
		Profiles:      profiles,
		RoleRecords:   roleRecords,
		Organizations: organizations,
		Subscriptions: subscriptions,
		Payments:      payments,
		Outbox:        outbox,
		Gateway:       gateway,
		Verifications: verifications,
		Activations:   activations,
		TokenSigner:   &fakeSigner{tokens: map[string]ports.AuthClaims{}},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &fixture{
		service:       svc,
		identities:    identities,
		profiles:      profiles,
		roleRecords:   roleRecords,
		organizations: organizations,
		subscriptions: subscriptions,
		payments:      payments,
		outbox:        outbox,
		gateway:       gateway,
		verifications: verifications,
		activations:   activations,
	}
}

func portsCreate(email string) ports.CreateIdentityParams {
	return ports.CreateIdentityParams{Email: email, Password: "secret1"}
}

type fakeIdentities struct {
	mu       sync.Mutex
	byEmail  map[string]domain.Identity
	deleted  []uuid.UUID
	failNext error
}

func (f *fakeIdentities) Create(_ context.Context, params ports.CreateIdentityParams) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return domain.Identity{}, err
	}
	if _, ok := f.byEmail[params.Email]; ok {
		return domain.Identity{}, domain.ErrAlreadyRegistered
	}
	identity := domain.Identity{
		ID:        uuid.New(),
		Email:     params.Email,
		Confirmed: true,
		Metadata:  params.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	f.byEmail[params.Email] = identity
	return identity, nil
}

func (f *fakeIdentities) FindByEmail(_ context.Context, email string) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.byEmail[email]
	if !ok {
		return domain.Identity{}, domain.ErrNotFound
	}
	return identity, nil
}

func (f *fakeIdentities) Delete(_ context.Context, identityID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, identity := range f.byEmail {
		if identity.ID == identityID {
			delete(f.byEmail, email)
			f.deleted = append(f.deleted, identityID)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeIdentities) VerifyPassword(_ context.Context, email, password string) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.byEmail[email]
	if !ok || password == "wrong" {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return identity, nil
}

func (f *fakeIdentities) exists(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok
}

type fakeProfiles struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]domain.UserProfile
	failNext error
}

func (f *fakeProfiles) Insert(_ context.Context, profile domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	if _, ok := f.byID[profile.UserID]; ok {
		return domain.ErrConflict
	}
	f.byID[profile.UserID] = profile
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, userID uuid.UUID) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byID[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.byID {
		if profile.Email == email {
			return profile, nil
		}
	}
	return domain.UserProfile{}, domain.ErrNotFound
}

func (f *fakeProfiles) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.byID {
		if profile.Email == email {
			return true, nil
		}
		if phone != "" && profile.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfiles) SetOrganization(_ context.Context, userID, orgID uuid.UUID, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	profile.OrganizationID = &orgID
	profile.UpdatedAt = updatedAt
	f.byID[userID] = profile
	return nil
}

func (f *fakeProfiles) setActive(userID uuid.UUID, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := f.byID[userID]
	profile.IsActive = active
	f.byID[userID] = profile
}

type fakeRoleRecords struct {
	mu       sync.Mutex
	records  []domain.RoleRecord
	failNext error
}

func (f *fakeRoleRecords) Insert(_ context.Context, record domain.RoleRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRoleRecords) ExistsForUser(_ context.Context, kind domain.RoleRecordKind, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.Kind == kind && record.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeOrganizations struct {
	mu       sync.Mutex
	byCode   map[string]domain.Organization
	failNext error
}

func (f *fakeOrganizations) Insert(_ context.Context, org domain.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	if _, ok := f.byCode[org.Code]; ok {
		return domain.ErrConflict
	}
	f.byCode[org.Code] = org
	return nil
}

func (f *fakeOrganizations) GetByCode(_ context.Context, code string) (domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.byCode[code]
	if !ok {
		return domain.Organization{}, domain.ErrNotFound
	}
	return org, nil
}

func (f *fakeOrganizations) ExistsByCode(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byCode[code]
	return ok, nil
}

type fakeSubscriptions struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]domain.Subscription
	failNext error
}

func (f *fakeSubscriptions) Insert(_ context.Context, sub domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	for _, existing := range f.byID {
		if existing.PaymentID == sub.PaymentID {
			return domain.ErrConflict
		}
	}
	f.byID[sub.SubscriptionID] = sub
	return nil
}

func (f *fakeSubscriptions) GetByID(_ context.Context, subscriptionID uuid.UUID) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byID[subscriptionID]
	if !ok {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return sub, nil
}

func (f *fakeSubscriptions) GetByPaymentID(_ context.Context, paymentID string) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.byID {
		if sub.PaymentID == paymentID {
			return sub, nil
		}
	}
	return domain.Subscription{}, domain.ErrNotFound
}

func (f *fakeSubscriptions) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var subs []domain.Subscription
	for _, sub := range f.byID {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (f *fakeSubscriptions) UpdateStatus(_ context.Context, subscriptionID uuid.UUID, status domain.SubscriptionStatus, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byID[subscriptionID]
	if !ok {
		return domain.ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = updatedAt
	f.byID[subscriptionID] = sub
	return nil
}

func (f *fakeSubscriptions) MarkCancelled(_ context.Context, subscriptionID uuid.UUID, cancelledAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byID[subscriptionID]
	if !ok {
		return domain.ErrNotFound
	}
	if sub.Status != domain.StatusActive {
		return domain.ErrSubscriptionState
	}
	sub.Status = domain.StatusCancelled
	sub.CancelledAt = &cancelledAt
	sub.UpdatedAt = cancelledAt
	f.byID[subscriptionID] = sub
	return nil
}

func (f *fakeSubscriptions) ListExpirable(_ context.Context, before time.Time, limit int) ([]domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var subs []domain.Subscription
	for _, sub := range f.byID {
		if sub.IsExpirable(before) {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (f *fakeSubscriptions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakePayments struct {
	mu       sync.Mutex
	rows     []domain.PaymentTransaction
	failNext error
}

func (f *fakePayments) Insert(_ context.Context, txn domain.PaymentTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.rows = append(f.rows, txn)
	return nil
}

func (f *fakePayments) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.PaymentTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PaymentTransaction(nil), f.rows...), nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ClaimUnsent(context.Context, int) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(context.Context, uuid.UUID, time.Time) error           { return nil }
func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (f *fakeOutbox) lastEventType() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1].EventType
}

type fakeGateway struct {
	mu              sync.Mutex
	payments        map[string]ports.GatewayPayment
	rejectSignature bool
	fetchErr        error
}

func (f *fakeGateway) VerifySignature(attempt ports.CheckoutAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectSignature || attempt.Signature == "bad" {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func (f *fakeGateway) FetchPayment(_ context.Context, paymentID string) (ports.GatewayPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return ports.GatewayPayment{}, f.fetchErr
	}
	if payment, ok := f.payments[paymentID]; ok {
		return payment, nil
	}
	return ports.GatewayPayment{PaymentID: paymentID, Status: "captured"}, nil
}

type fakeVerificationCache struct {
	mu    sync.Mutex
	items map[string]string
}

func (f *fakeVerificationCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.items[key]
	return value, ok, nil
}

func (f *fakeVerificationCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return nil
}

type fakeActivationQueue struct {
	mu    sync.Mutex
	items []ports.QueuedActivation
}

func (f *fakeActivationQueue) Enqueue(_ context.Context, item ports.QueuedActivation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return nil
}

func (f *fakeActivationQueue) PeekOldest(context.Context) (*ports.QueuedActivation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return nil, nil
	}
	item := f.items[0]
	return &item, nil
}

func (f *fakeActivationQueue) Requeue(_ context.Context, item ports.QueuedActivation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].PaymentID == item.PaymentID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeActivationQueue) Discard(_ context.Context, item ports.QueuedActivation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].PaymentID == item.PaymentID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeActivationQueue) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeSigner struct {
	mu     sync.Mutex
	tokens map[string]ports.AuthClaims
}

func (f *fakeSigner) Sign(claims ports.AuthClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "token-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.AuthClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}
