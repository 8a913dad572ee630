package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
)

type subscriptionRepository struct {
	db *gorm.DB
}

func (r *subscriptionRepository) Insert(ctx context.Context, sub domain.Subscription) error {
	rec := subscriptionModel{
		SubscriptionID: sub.SubscriptionID,
		UserID:         sub.UserID,
		PlanType:       sub.PlanType,
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		BillingCycle:   string(sub.BillingCycle),
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		Status:         string(sub.Status),
		PaymentID:      sub.PaymentID,
		OrderID:        sub.OrderID,
		CancelledAt:    sub.CancelledAt,
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, subscriptionID uuid.UUID) (domain.Subscription, error) {
	var rec subscriptionModel
	if err := r.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}
	return toDomainSubscription(rec), nil
}

func (r *subscriptionRepository) GetByPaymentID(ctx context.Context, paymentID string) (domain.Subscription, error) {
	var rec subscriptionModel
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}
	return toDomainSubscription(rec), nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Subscription, error) {
	var rows []subscriptionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Subscription, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainSubscription(row))
	}
	return result, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, subscriptionID uuid.UUID, status domain.SubscriptionStatus, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&subscriptionModel{}).
		Where("subscription_id = ?", subscriptionID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) MarkCancelled(ctx context.Context, subscriptionID uuid.UUID, cancelledAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&subscriptionModel{}).
		Where("subscription_id = ?", subscriptionID).
		Where("status = ?", string(domain.StatusActive)).
		Updates(map[string]any{
			"status":       string(domain.StatusCancelled),
			"cancelled_at": cancelledAt,
			"updated_at":   cancelledAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSubscriptionState
	}
	return nil
}

func (r *subscriptionRepository) ListExpirable(ctx context.Context, before time.Time, limit int) ([]domain.Subscription, error) {
	var rows []subscriptionModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(domain.StatusActive), string(domain.StatusCancelled)}).
		Where("end_date < ?", before).
		Order("end_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Subscription, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainSubscription(row))
	}
	return result, nil
}
