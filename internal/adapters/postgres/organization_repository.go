package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
)

type organizationRepository struct {
	db *gorm.DB
}

func (r *organizationRepository) Insert(ctx context.Context, org domain.Organization) error {
	rec := organizationModel{
		OrgID:          org.OrgID,
		OrgType:        string(org.Type),
		Name:           org.Name,
		Code:           org.Code,
		AdminUserID:    org.AdminUserID,
		ApprovalStatus: org.ApprovalStatus,
		Address:        org.Address,
		City:           org.City,
		State:          org.State,
		ContactPhone:   org.ContactPhone,
		ContactEmail:   org.ContactEmail,
		CreatedAt:      org.CreatedAt,
		UpdatedAt:      org.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *organizationRepository) GetByCode(ctx context.Context, code string) (domain.Organization, error) {
	var rec organizationModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Organization{}, domain.ErrNotFound
		}
		return domain.Organization{}, err
	}
	return toDomainOrganization(rec), nil
}

func (r *organizationRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&organizationModel{}).
		Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
