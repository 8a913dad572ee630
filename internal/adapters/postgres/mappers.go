package postgres

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
)

func encodeMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func decodeMetadata(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil
	}
	return metadata
}

func toDomainProfile(rec userProfileModel) domain.UserProfile {
	return domain.UserProfile{
		UserID:         rec.UserID,
		Email:          rec.Email,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Phone:          rec.Phone,
		Role:           domain.Role(rec.Role),
		IsActive:       rec.IsActive,
		OrganizationID: rec.OrganizationID,
		Metadata:       decodeMetadata(rec.Metadata),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func toDomainOrganization(rec organizationModel) domain.Organization {
	return domain.Organization{
		OrgID:          rec.OrgID,
		Type:           domain.OrganizationType(rec.OrgType),
		Name:           rec.Name,
		Code:           rec.Code,
		AdminUserID:    rec.AdminUserID,
		ApprovalStatus: rec.ApprovalStatus,
		Address:        rec.Address,
		City:           rec.City,
		State:          rec.State,
		ContactPhone:   rec.ContactPhone,
		ContactEmail:   rec.ContactEmail,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func toDomainSubscription(rec subscriptionModel) domain.Subscription {
	return domain.Subscription{
		SubscriptionID: rec.SubscriptionID,
		UserID:         rec.UserID,
		PlanType:       rec.PlanType,
		Amount:         rec.Amount,
		Currency:       rec.Currency,
		BillingCycle:   domain.BillingCycle(rec.BillingCycle),
		StartDate:      rec.StartDate,
		EndDate:        rec.EndDate,
		Status:         domain.SubscriptionStatus(rec.Status),
		PaymentID:      rec.PaymentID,
		OrderID:        rec.OrderID,
		CancelledAt:    rec.CancelledAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func toDomainPayment(rec paymentTransactionModel) domain.PaymentTransaction {
	return domain.PaymentTransaction{
		TransactionID:  rec.TransactionID,
		SubscriptionID: rec.SubscriptionID,
		PaymentID:      rec.PaymentID,
		OrderID:        rec.OrderID,
		Amount:         rec.Amount,
		Currency:       rec.Currency,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
