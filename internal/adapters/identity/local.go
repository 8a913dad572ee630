package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

type localIdentityModel struct {
	IdentityID   uuid.UUID  `gorm:"column:identity_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"column:email"`
	PasswordHash string     `gorm:"column:password_hash"`
	Confirmed    bool       `gorm:"column:confirmed"`
	Metadata     string     `gorm:"column:metadata;type:jsonb"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
}

func (localIdentityModel) TableName() string { return "identities" }

// LocalStore is a Postgres-backed identity store for single-binary
// deployments without a hosted identity service. Delete soft-deletes so a
// compensated signup leaves an audit trail.
type LocalStore struct {
	db     *gorm.DB
	hasher ports.PasswordHasher
	nowFn  func() time.Time
}

func NewLocalStore(db *gorm.DB, hasher ports.PasswordHasher) *LocalStore {
	return &LocalStore{
		db:     db,
		hasher: hasher,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *LocalStore) Create(ctx context.Context, params ports.CreateIdentityParams) (domain.Identity, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	metadata := "{}"
	if len(params.Metadata) > 0 {
		if raw, mErr := json.Marshal(params.Metadata); mErr == nil {
			metadata = string(raw)
		}
	}

	rec := localIdentityModel{
		Email:        params.Email,
		PasswordHash: hash,
		Confirmed:    true,
		Metadata:     metadata,
		CreatedAt:    s.nowFn(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Identity{}, domain.ErrAlreadyRegistered
		}
		return domain.Identity{}, err
	}
	return toLocalIdentity(rec), nil
}

func (s *LocalStore) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	rec, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, err
	}
	return toLocalIdentity(rec), nil
}

func (s *LocalStore) Delete(ctx context.Context, identityID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&localIdentityModel{}).
		Where("identity_id = ?", identityID).
		Where("deleted_at IS NULL").
		Update("deleted_at", s.nowFn())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *LocalStore) VerifyPassword(ctx context.Context, email, password string) (domain.Identity, error) {
	rec, err := s.lookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}
	if err := s.hasher.Compare(rec.PasswordHash, password); err != nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return toLocalIdentity(rec), nil
}

func (s *LocalStore) lookupByEmail(ctx context.Context, email string) (localIdentityModel, error) {
	var rec localIdentityModel
	err := s.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		Where("deleted_at IS NULL").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return localIdentityModel{}, domain.ErrNotFound
		}
		return localIdentityModel{}, err
	}
	return rec, nil
}

func toLocalIdentity(rec localIdentityModel) domain.Identity {
	var metadata map[string]string
	if rec.Metadata != "" {
		_ = json.Unmarshal([]byte(rec.Metadata), &metadata)
	}
	return domain.Identity{
		ID:        rec.IdentityID,
		Email:     rec.Email,
		Confirmed: rec.Confirmed,
		Metadata:  metadata,
		CreatedAt: rec.CreatedAt,
	}
}
