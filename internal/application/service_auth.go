package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

// Login checks credentials against the identity store and issues a session
// token carrying the profile role.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}
	if req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	identity, err := s.identities.VerifyPassword(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			return LoginResponse{}, domain.ErrInvalidCredentials
		}
		return LoginResponse{}, fmt.Errorf("%w: login unavailable", domain.ErrExternal)
	}

	profile, err := s.profiles.GetByID(ctx, identity.ID)
	if err != nil {
		// An identity without a profile is the orphan the compensator is
		// meant to prevent; treat it as invalid credentials, not a 500.
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResponse{}, domain.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}
	if !profile.IsActive {
		return LoginResponse{}, domain.ErrForbidden
	}

	now := s.nowFn()
	token, err := s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    profile.UserID,
		Email:     profile.Email,
		Role:      profile.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResponse{
		Token:     token,
		UserID:    profile.UserID,
		Role:      profile.Role,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

// ValidateToken parses the bearer token for the HTTP auth middleware and the
// internal gRPC surface.
func (s *Service) ValidateToken(_ context.Context, token string) (ports.AuthClaims, error) {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return ports.AuthClaims{}, domain.ErrTokenExpired
		}
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}

// GetAccountStatus resolves a profile by raw user id for sibling services.
func (s *Service) GetAccountStatus(ctx context.Context, rawUserID string) (domain.UserProfile, error) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("%w: user id %q", domain.ErrInvalidInput, rawUserID)
	}
	return s.profiles.GetByID(ctx, userID)
}
