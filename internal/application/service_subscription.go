package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

// ActivateSubscription verifies a completed checkout and creates the active
// subscription plus its transaction log row. Calling it twice with the same
// payment id is safe: the duplicate-payment guard returns the existing row as
// an idempotent success. Requests that cannot reach storage are parked on the
// retry queue and surfaced as an external error.
func (s *Service) ActivateSubscription(ctx context.Context, req ActivateSubscriptionRequest) (ActivateSubscriptionResponse, error) {
	return s.activate(ctx, req, true)
}

func (s *Service) activate(ctx context.Context, req ActivateSubscriptionRequest, parkOnStorageFailure bool) (ActivateSubscriptionResponse, error) {
	if err := validateActivation(req); err != nil {
		return ActivateSubscriptionResponse{}, err
	}

	// Duplicate-payment guard: exact match on the external payment id.
	// Presence means "already done"; only a definitive not-found means
	// "safe to proceed".
	existing, err := s.subscriptions.GetByPaymentID(ctx, req.RazorpayPaymentID)
	if err == nil {
		return alreadyActiveResponse(existing), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return ActivateSubscriptionResponse{}, fmt.Errorf("%w: duplicate check failed", domain.ErrExternal)
	}

	if err := s.gateway.VerifySignature(ports.CheckoutAttempt{
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
	}); err != nil {
		return ActivateSubscriptionResponse{}, fmt.Errorf("%w: %v", domain.ErrPaymentVerification, err)
	}
	payment, err := s.gateway.FetchPayment(ctx, req.RazorpayPaymentID)
	if err != nil {
		return ActivateSubscriptionResponse{}, fmt.Errorf("%w: payment lookup failed", domain.ErrExternal)
	}
	if payment.Amount > 0 && payment.Amount != req.Amount {
		return ActivateSubscriptionResponse{}, fmt.Errorf("%w: amount mismatch", domain.ErrPaymentVerification)
	}

	now := s.nowFn()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}
	cycle := domain.BillingCycle(strings.ToLower(strings.TrimSpace(req.BillingCycle)))
	if cycle != domain.CycleYear {
		cycle = domain.CycleMonth
	}
	currency := payment.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	sub := domain.Subscription{
		SubscriptionID: uuid.New(),
		UserID:         req.UserID,
		PlanType:       strings.TrimSpace(req.PlanType),
		Amount:         req.Amount,
		Currency:       currency,
		BillingCycle:   cycle,
		StartDate:      start,
		EndDate:        domain.PeriodEnd(start, cycle),
		Status:         domain.StatusActive,
		PaymentID:      req.RazorpayPaymentID,
		OrderID:        req.RazorpayOrderID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.subscriptions.Insert(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Unique constraint on payment_id closed the race window; the
			// other request won. Return its row.
			if winner, gErr := s.subscriptions.GetByPaymentID(ctx, req.RazorpayPaymentID); gErr == nil {
				return alreadyActiveResponse(winner), nil
			}
			return ActivateSubscriptionResponse{}, fmt.Errorf("%w: duplicate check failed", domain.ErrExternal)
		}
		if parkOnStorageFailure {
			s.parkActivation(ctx, req)
		}
		return ActivateSubscriptionResponse{}, fmt.Errorf("%w: subscription store unavailable", domain.ErrExternal)
	}

	if err := s.payments.Insert(ctx, domain.PaymentTransaction{
		TransactionID:  uuid.New(),
		SubscriptionID: sub.SubscriptionID,
		PaymentID:      req.RazorpayPaymentID,
		OrderID:        req.RazorpayOrderID,
		Amount:         req.Amount,
		Currency:       currency,
		Status:         "captured",
		CreatedAt:      now,
	}); err != nil {
		// Compensating transition: the caller must see the logging error,
		// not a rollback-specific one.
		s.failSubscription(ctx, sub.SubscriptionID, err)
		return ActivateSubscriptionResponse{}, err
	}

	s.enqueueReceipt(ctx, sub)
	return ActivateSubscriptionResponse{
		SubscriptionID: sub.SubscriptionID,
		Status:         sub.Status,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
	}, nil
}

func validateActivation(req ActivateSubscriptionRequest) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.RazorpayPaymentID) == "" || strings.TrimSpace(req.RazorpayOrderID) == "" {
		return fmt.Errorf("%w: payment id and order id are required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.RazorpaySignature) == "" {
		return fmt.Errorf("%w: payment signature is required", domain.ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.PlanType) == "" {
		return fmt.Errorf("%w: plan type is required", domain.ErrInvalidInput)
	}
	return nil
}

func alreadyActiveResponse(sub domain.Subscription) ActivateSubscriptionResponse {
	return ActivateSubscriptionResponse{
		SubscriptionID: sub.SubscriptionID,
		Status:         sub.Status,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		AlreadyExists:  true,
	}
}

// failSubscription is the activation compensator: active -> failed. Failures
// here are logged only; the original transaction-logging error is what the
// caller sees.
func (s *Service) failSubscription(ctx context.Context, subscriptionID uuid.UUID, cause error) {
	if err := s.subscriptions.UpdateStatus(ctx, subscriptionID, domain.StatusFailed, s.nowFn()); err != nil {
		s.logger.ErrorContext(ctx, "subscription compensation failed",
			"operation", "activation_compensate",
			"outcome", "failure",
			"subscription_id", subscriptionID.String(),
			"cause", cause.Error(),
			"update_error", err.Error(),
		)
		return
	}
	s.logger.WarnContext(ctx, "subscription marked failed after logging error",
		"operation", "activation_compensate",
		"outcome", "success",
		"subscription_id", subscriptionID.String(),
		"cause", cause.Error(),
	)
}

func (s *Service) parkActivation(ctx context.Context, req ActivateSubscriptionRequest) {
	if s.activations == nil {
		return
	}
	item := ports.QueuedActivation{
		QueuedAt:  s.nowFn(),
		UserID:    req.UserID.String(),
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
		PlanType:  req.PlanType,
		Amount:    req.Amount,
		Cycle:     req.BillingCycle,
	}
	if err := s.activations.Enqueue(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "activation park failed",
			"operation", "activation_park",
			"outcome", "failure",
			"payment_id", req.RazorpayPaymentID,
			"error", err.Error(),
		)
	}
}

// ProcessQueuedActivation retries the oldest parked activation once. It
// returns false when the queue is empty. Items are retried sequentially up to
// the attempt cap; after that they are discarded and the failure is permanent.
func (s *Service) ProcessQueuedActivation(ctx context.Context) (bool, error) {
	item, err := s.activations.PeekOldest(ctx)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	userID, parseErr := uuid.Parse(item.UserID)
	if parseErr != nil {
		_ = s.activations.Discard(ctx, *item)
		return true, nil
	}
	_, actErr := s.activate(ctx, ActivateSubscriptionRequest{
		UserID:            userID,
		RazorpayPaymentID: item.PaymentID,
		RazorpayOrderID:   item.OrderID,
		RazorpaySignature: item.Signature,
		PlanType:          item.PlanType,
		Amount:            item.Amount,
		BillingCycle:      item.Cycle,
	}, false)
	switch {
	case actErr == nil,
		errors.Is(actErr, domain.ErrPaymentVerification),
		errors.Is(actErr, domain.ErrInvalidInput):
		// Done, or permanently rejectable: retrying cannot change either.
		_ = s.activations.Discard(ctx, *item)
		return true, nil
	default:
		item.Attempts++
		if item.Attempts >= s.cfg.ActivationMaxAttempts {
			_ = s.activations.Discard(ctx, *item)
			s.logger.ErrorContext(ctx, "activation permanently failed",
				"operation", "activation_retry",
				"outcome", "failure",
				"payment_id", item.PaymentID,
				"attempts", strconv.Itoa(item.Attempts),
				"error", actErr.Error(),
			)
			return true, nil
		}
		if err := s.activations.Requeue(ctx, *item); err != nil {
			return true, err
		}
		return true, nil
	}
}

// CancelSubscription is the user-initiated active -> cancelled transition.
func (s *Service) CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	sub, err := s.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return domain.ErrForbidden
	}
	if !sub.CanCancel() {
		return fmt.Errorf("%w: only active subscriptions can be cancelled", domain.ErrSubscriptionState)
	}
	return s.subscriptions.MarkCancelled(ctx, subscriptionID, s.nowFn())
}

// ListSubscriptions is a pass-through read for the account's subscriptions.
func (s *Service) ListSubscriptions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]SubscriptionItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	subs, err := s.subscriptions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]SubscriptionItem, 0, len(subs))
	for _, sub := range subs {
		items = append(items, toSubscriptionItem(sub))
	}
	return items, nil
}

// ListPayments returns the account's payment history, newest first.
func (s *Service) ListPayments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PaymentItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	txns, err := s.payments.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentItem, 0, len(txns))
	for _, txn := range txns {
		items = append(items, toPaymentItem(txn))
	}
	return items, nil
}

// ExpireDueSubscriptions closes active or cancelled subscriptions whose end
// date has passed. It is invoked by the worker, not by request handlers.
func (s *Service) ExpireDueSubscriptions(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	due, err := s.subscriptions.ListExpirable(ctx, s.nowFn(), limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, sub := range due {
		if !sub.IsExpirable(s.nowFn()) {
			continue
		}
		if err := s.subscriptions.UpdateStatus(ctx, sub.SubscriptionID, domain.StatusExpired, s.nowFn()); err != nil {
			s.logger.WarnContext(ctx, "expiry update failed",
				"operation", "subscription_expire",
				"outcome", "failure",
				"subscription_id", sub.SubscriptionID.String(),
				"error", err.Error(),
			)
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *Service) enqueueReceipt(ctx context.Context, sub domain.Subscription) {
	profile, err := s.profiles.GetByID(ctx, sub.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "receipt email skipped",
			"operation", "activation_notify",
			"outcome", "failure",
			"subscription_id", sub.SubscriptionID.String(),
			"error", err.Error(),
		)
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"first_name": profile.FirstName,
		"plan_type":  sub.PlanType,
		"amount":     strconv.FormatInt(sub.Amount, 10),
		"currency":   sub.Currency,
		"end_date":   sub.EndDate.Format("2006-01-02"),
		"payment_id": sub.PaymentID,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "subscription.receipt",
		Recipient:    profile.Email,
		TemplateRole: "receipt",
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		s.logger.WarnContext(ctx, "receipt email enqueue failed",
			"operation", "activation_notify",
			"outcome", "failure",
			"recipient", profile.Email,
			"error", err.Error(),
		)
	}
}
