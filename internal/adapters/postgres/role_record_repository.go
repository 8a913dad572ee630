package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
)

type roleRecordRepository struct {
	db *gorm.DB
}

func (r *roleRecordRepository) Insert(ctx context.Context, record domain.RoleRecord) error {
	switch record.Kind {
	case domain.RecordStudent:
		if record.Student == nil {
			return fmt.Errorf("%w: student record without details", domain.ErrInvalidInput)
		}
		rec := studentProfileModel{
			UserID:         record.UserID,
			GuardianPhone:  record.Student.GuardianPhone,
			EnrollmentYear: record.Student.EnrollmentYear,
			ApprovalStatus: record.Student.ApprovalStatus,
			CreatedAt:      record.CreatedAt,
		}
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	case domain.RecordRecruiter:
		if record.Recruiter == nil {
			return fmt.Errorf("%w: recruiter record without details", domain.ErrInvalidInput)
		}
		rec := recruiterProfileModel{
			UserID:             record.UserID,
			CompanyName:        record.Recruiter.CompanyName,
			CompanyWebsite:     record.Recruiter.CompanyWebsite,
			VerificationStatus: record.Recruiter.VerificationStatus,
			CreatedAt:          record.CreatedAt,
		}
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role record kind %q", domain.ErrInvalidInput, record.Kind)
	}
}

func (r *roleRecordRepository) ExistsForUser(ctx context.Context, kind domain.RoleRecordKind, userID uuid.UUID) (bool, error) {
	var (
		count int64
		err   error
	)
	switch kind {
	case domain.RecordStudent:
		err = r.db.WithContext(ctx).Model(&studentProfileModel{}).
			Where("user_id = ?", userID).Count(&count).Error
	case domain.RecordRecruiter:
		err = r.db.WithContext(ctx).Model(&recruiterProfileModel{}).
			Where("user_id = ?", userID).Count(&count).Error
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
