package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
)

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) Insert(ctx context.Context, txn domain.PaymentTransaction) error {
	rec := paymentTransactionModel{
		TransactionID:  txn.TransactionID,
		SubscriptionID: txn.SubscriptionID,
		PaymentID:      txn.PaymentID,
		OrderID:        txn.OrderID,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		Status:         txn.Status,
		CreatedAt:      txn.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.PaymentTransaction, error) {
	var rows []paymentTransactionModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.subscription_id = payment_transactions.subscription_id").
		Where("subscriptions.user_id = ?", userID).
		Order("payment_transactions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.PaymentTransaction, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainPayment(row))
	}
	return result, nil
}
