package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

// SignupUser provisions a student, educator or recruiter account.
// Role-specific rows come from the domain.RoleSpecs dispatch table; educator
// signups intentionally produce no role record (the extension row is created
// later by an admin approval flow).
func (s *Service) SignupUser(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return SignupResponse{}, err
	}
	role, ok := domain.ParseRole(strings.TrimSpace(req.Role))
	if !ok {
		return SignupResponse{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return SignupResponse{}, fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}
	phone := normalizePhone(req.Phone)

	if err := s.checkAvailability(ctx, email, phone, ""); err != nil {
		return SignupResponse{}, err
	}

	identity, err := s.provision(ctx, ports.CreateIdentityParams{
		Email:    email,
		Password: req.Password,
		Metadata: map[string]string{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"role":       string(role),
			"phone":      phone,
		},
	}, func(identity domain.Identity) []provisionStep {
		return []provisionStep{
			{name: "insert_profile", run: func(ctx context.Context) error {
				return s.insertProfile(ctx, identity.ID, email, phone, role, req, nil)
			}},
			{name: "insert_role_record", run: func(ctx context.Context) error {
				return s.insertRoleRecord(ctx, identity.ID, role, req)
			}},
		}
	})
	if err != nil {
		return SignupResponse{}, err
	}

	s.enqueueWelcome(ctx, email, role, req.FirstName)
	return SignupResponse{UserID: identity.ID, Role: role}, nil
}

// SignupOrganizationAdmin provisions an institution admin together with the
// institution itself. The organization insert and the profile patch are
// dependent steps of the same run, so a failure in either removes the
// identity as well.
func (s *Service) SignupOrganizationAdmin(ctx context.Context, req AdminSignupRequest) (AdminSignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AdminSignupResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return AdminSignupResponse{}, err
	}
	orgType, ok := domain.ParseOrganizationType(strings.TrimSpace(req.OrgType))
	if !ok {
		return AdminSignupResponse{}, fmt.Errorf("%w: unknown organization type %q", domain.ErrInvalidInput, req.OrgType)
	}
	role := adminRoleFor(orgType)
	orgCode := strings.ToUpper(strings.TrimSpace(req.OrgCode))
	if orgCode == "" || strings.TrimSpace(req.OrgName) == "" {
		return AdminSignupResponse{}, fmt.Errorf("%w: organization name and code are required", domain.ErrInvalidInput)
	}
	phone := normalizePhone(req.Phone)

	if err := s.checkAvailability(ctx, email, phone, orgCode); err != nil {
		return AdminSignupResponse{}, err
	}

	orgID := uuid.New()
	identity, err := s.provision(ctx, ports.CreateIdentityParams{
		Email:    email,
		Password: req.Password,
		Metadata: map[string]string{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"role":       string(role),
			"phone":      phone,
			"org_code":   orgCode,
		},
	}, func(identity domain.Identity) []provisionStep {
		return []provisionStep{
			{name: "insert_profile", run: func(ctx context.Context) error {
				return s.insertProfile(ctx, identity.ID, email, phone, role, req.SignupRequest, nil)
			}},
			{name: "insert_organization", run: func(ctx context.Context) error {
				now := s.nowFn()
				return s.organizations.Insert(ctx, domain.Organization{
					OrgID:          orgID,
					Type:           orgType,
					Name:           strings.TrimSpace(req.OrgName),
					Code:           orgCode,
					AdminUserID:    identity.ID,
					ApprovalStatus: "pending",
					Address:        req.OrgAddress,
					City:           req.OrgCity,
					State:          req.OrgState,
					ContactPhone:   req.OrgContactPhone,
					ContactEmail:   req.OrgContactEmail,
					CreatedAt:      now,
					UpdatedAt:      now,
				})
			}},
			{name: "link_profile_organization", run: func(ctx context.Context) error {
				return s.profiles.SetOrganization(ctx, identity.ID, orgID, s.nowFn())
			}},
		}
	})
	if err != nil {
		return AdminSignupResponse{}, err
	}

	s.enqueueWelcome(ctx, email, role, req.FirstName)
	return AdminSignupResponse{UserID: identity.ID, OrganizationID: orgID}, nil
}

// RegisterEventAttendee creates a student account as part of event
// registration. It reuses the same provisioning run; the event id travels in
// identity metadata and profile metadata for later attribution.
func (s *Service) RegisterEventAttendee(ctx context.Context, req EventSignupRequest) (SignupResponse, error) {
	if strings.TrimSpace(req.EventID) == "" {
		return SignupResponse{}, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return SignupResponse{}, err
	}
	phone := normalizePhone(req.Phone)

	if err := s.checkAvailability(ctx, email, phone, ""); err != nil {
		return SignupResponse{}, err
	}

	signup := SignupRequest{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     phone,
		Role:      string(domain.RoleStudent),
	}
	identity, err := s.provision(ctx, ports.CreateIdentityParams{
		Email:    email,
		Password: req.Password,
		Metadata: map[string]string{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"role":       string(domain.RoleStudent),
			"phone":      phone,
			"event_id":   req.EventID,
		},
	}, func(identity domain.Identity) []provisionStep {
		return []provisionStep{
			{name: "insert_profile", run: func(ctx context.Context) error {
				return s.insertProfile(ctx, identity.ID, email, phone, domain.RoleStudent, signup,
					map[string]string{"event_id": req.EventID})
			}},
			{name: "insert_role_record", run: func(ctx context.Context) error {
				return s.insertRoleRecord(ctx, identity.ID, domain.RoleStudent, signup)
			}},
		}
	})
	if err != nil {
		return SignupResponse{}, err
	}

	s.enqueueWelcome(ctx, email, domain.RoleStudent, req.FirstName)
	return SignupResponse{UserID: identity.ID, Role: domain.RoleStudent}, nil
}

func adminRoleFor(orgType domain.OrganizationType) domain.Role {
	switch orgType {
	case domain.OrgSchool:
		return domain.RoleSchoolAdmin
	case domain.OrgCollege:
		return domain.RoleCollegeAdmin
	default:
		return domain.RoleUniversityAdmin
	}
}

// checkAvailability is the precondition checker. Both the identity store and
// the profile table are consulted because the two can diverge; an error from
// either check aborts the signup rather than being read as "does not exist".
func (s *Service) checkAvailability(ctx context.Context, email, phone, orgCode string) error {
	if s.verifications != nil {
		if cached, ok, _ := s.verifications.Get(ctx, "signup:taken:"+email); ok && cached == "taken" {
			return domain.ErrAlreadyRegistered
		}
	}

	taken, err := s.profiles.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return fmt.Errorf("%w: account creation failed", domain.ErrExternal)
	}
	if !taken {
		_, err := s.identities.FindByEmail(ctx, email)
		switch {
		case err == nil:
			taken = true
		case errors.Is(err, domain.ErrNotFound):
			// Email is free in both stores.
		default:
			return fmt.Errorf("%w: account creation failed", domain.ErrExternal)
		}
	}
	if taken {
		if s.verifications != nil {
			_ = s.verifications.Set(ctx, "signup:taken:"+email, "taken", s.cfg.VerificationCacheTTL)
		}
		return domain.ErrAlreadyRegistered
	}

	if orgCode != "" {
		exists, err := s.organizations.ExistsByCode(ctx, orgCode)
		if err != nil {
			return fmt.Errorf("%w: account creation failed", domain.ErrExternal)
		}
		if exists {
			return fmt.Errorf("%w: organization code already in use", domain.ErrConflict)
		}
	}
	return nil
}

func (s *Service) insertProfile(ctx context.Context, userID uuid.UUID, email, phone string, role domain.Role, req SignupRequest, metadata map[string]string) error {
	now := s.nowFn()
	return s.profiles.Insert(ctx, domain.UserProfile{
		UserID:    userID,
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     phone,
		Role:      role,
		IsActive:  true,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) insertRoleRecord(ctx context.Context, userID uuid.UUID, role domain.Role, req SignupRequest) error {
	spec, ok := domain.RoleSpecs[role]
	if !ok || spec.Kind == domain.RecordNone {
		return nil
	}
	record := spec.Build(userID, domain.SignupAttributes{
		GuardianPhone:  req.GuardianPhone,
		EnrollmentYear: req.EnrollmentYear,
		CompanyName:    req.CompanyName,
		CompanyWebsite: req.CompanyWebsite,
	}, s.nowFn())
	return s.roleRecords.Insert(ctx, record)
}

// enqueueWelcome records the best-effort welcome email. It runs after
// provisioning has committed and never participates in the rollback contract.
func (s *Service) enqueueWelcome(ctx context.Context, email string, role domain.Role, firstName string) {
	payload, _ := json.Marshal(map[string]string{
		"first_name": firstName,
		"role":       string(role),
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "account.welcome",
		Recipient:    email,
		TemplateRole: string(role),
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		s.logger.WarnContext(ctx, "welcome email enqueue failed",
			"operation", "signup_notify",
			"outcome", "failure",
			"recipient", email,
			"error", err.Error(),
		)
	}
}
