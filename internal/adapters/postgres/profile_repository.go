package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
)

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) Insert(ctx context.Context, profile domain.UserProfile) error {
	rec := userProfileModel{
		UserID:         profile.UserID,
		Email:          profile.Email,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Phone:          profile.Phone,
		Role:           string(profile.Role),
		IsActive:       profile.IsActive,
		OrganizationID: profile.OrganizationID,
		Metadata:       encodeMetadata(profile.Metadata),
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error) {
	var rec userProfileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, err
	}
	return toDomainProfile(rec), nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	var rec userProfileModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, err
	}
	return toDomainProfile(rec), nil
}

func (r *profileRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&userProfileModel{})
	if phone != "" {
		query = query.Where("email = ? OR phone = ?", email, phone)
	} else {
		query = query.Where("email = ?", email)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *profileRepository) SetOrganization(ctx context.Context, userID, orgID uuid.UUID, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&userProfileModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"organization_id": orgID,
			"updated_at":      updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
