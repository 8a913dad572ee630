package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gradlink/accounts-service/internal/application"
	"github.com/gradlink/accounts-service/internal/domain"
)

func studentSignup() application.SignupRequest {
	return application.SignupRequest{
		Email:          "asha@example.com",
		Password:       "secret1",
		FirstName:      "Asha",
		LastName:       "Rao",
		Phone:          "+919800000001",
		Role:           "student",
		GuardianPhone:  "+919800000002",
		EnrollmentYear: 2024,
	}
}

func TestSignupUserRoleRecords(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		role     string
		wantKind domain.RoleRecordKind
	}{
		{name: "student gets a student record", role: "student", wantKind: domain.RecordStudent},
		{name: "recruiter gets a recruiter record", role: "recruiter", wantKind: domain.RecordRecruiter},
		{name: "educator gets no record", role: "educator", wantKind: domain.RecordNone},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()

			req := studentSignup()
			req.Role = tc.role
			req.CompanyName = "Hireline"

			res, err := f.service.SignupUser(context.Background(), req)
			if err != nil {
				t.Fatalf("SignupUser: %v", err)
			}
			if res.Role != domain.Role(tc.role) {
				t.Fatalf("role = %q, want %q", res.Role, tc.role)
			}

			if tc.wantKind == domain.RecordNone {
				if len(f.roleRecords.records) != 0 {
					t.Fatalf("expected no role record, got %d", len(f.roleRecords.records))
				}
				return
			}
			if len(f.roleRecords.records) != 1 {
				t.Fatalf("expected one role record, got %d", len(f.roleRecords.records))
			}
			record := f.roleRecords.records[0]
			if record.Kind != tc.wantKind {
				t.Fatalf("record kind = %q, want %q", record.Kind, tc.wantKind)
			}
			if record.UserID != res.UserID {
				t.Fatalf("record user id = %s, want %s", record.UserID, res.UserID)
			}
		})
	}
}

func TestSignupUserValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*application.SignupRequest)
	}{
		{name: "short password", mutate: func(r *application.SignupRequest) { r.Password = "12345" }},
		{name: "empty email", mutate: func(r *application.SignupRequest) { r.Email = "" }},
		{name: "malformed email", mutate: func(r *application.SignupRequest) { r.Email = "not-an-email" }},
		{name: "unknown role", mutate: func(r *application.SignupRequest) { r.Role = "admin" }},
		{name: "missing first name", mutate: func(r *application.SignupRequest) { r.FirstName = "  " }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()

			req := studentSignup()
			tc.mutate(&req)

			if _, err := f.service.SignupUser(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if len(f.identities.deleted) != 0 {
				t.Fatalf("validation failures must not touch the identity store")
			}
		})
	}
}

func TestSignupUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newFixture()

	if _, err := f.service.SignupUser(context.Background(), studentSignup()); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	req := studentSignup()
	req.Phone = "+919800000099"
	if _, err := f.service.SignupUser(context.Background(), req); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestSignupUserDuplicatePhone(t *testing.T) {
	t.Parallel()
	f := newFixture()

	if _, err := f.service.SignupUser(context.Background(), studentSignup()); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	req := studentSignup()
	req.Email = "other@example.com"
	if _, err := f.service.SignupUser(context.Background(), req); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestSignupUserOrphanIdentityBlocksEmail(t *testing.T) {
	t.Parallel()
	f := newFixture()

	// Identity exists with no profile: a previous compensation that failed.
	// The email must still read as taken.
	if _, err := f.identities.Create(context.Background(), portsCreate("asha@example.com")); err != nil {
		t.Fatalf("seed identity: %v", err)
	}

	if _, err := f.service.SignupUser(context.Background(), studentSignup()); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestSignupUserCompensatesOnRoleRecordFailure(t *testing.T) {
	t.Parallel()
	f := newFixture()

	stepErr := errors.New("student table unavailable")
	f.roleRecords.failNext = stepErr

	_, err := f.service.SignupUser(context.Background(), studentSignup())
	if !errors.Is(err, stepErr) {
		t.Fatalf("err = %v, want the original step error", err)
	}
	if len(f.identities.deleted) != 1 {
		t.Fatalf("expected one compensating delete, got %d", len(f.identities.deleted))
	}
	if f.identities.exists("asha@example.com") {
		t.Fatalf("identity must be removed after a failed dependent write")
	}
	if f.outbox.lastEventType() != "" {
		t.Fatalf("no notification may be enqueued for a compensated signup")
	}
}

func TestSignupUserCompensatesOnProfileFailure(t *testing.T) {
	t.Parallel()
	f := newFixture()

	stepErr := errors.New("profiles unavailable")
	f.profiles.failNext = stepErr

	_, err := f.service.SignupUser(context.Background(), studentSignup())
	if !errors.Is(err, stepErr) {
		t.Fatalf("err = %v, want the original step error", err)
	}
	if len(f.identities.deleted) != 1 {
		t.Fatalf("expected one compensating delete, got %d", len(f.identities.deleted))
	}
}

func TestSignupUserEnqueuesWelcome(t *testing.T) {
	t.Parallel()
	f := newFixture()

	if _, err := f.service.SignupUser(context.Background(), studentSignup()); err != nil {
		t.Fatalf("SignupUser: %v", err)
	}
	if got := f.outbox.lastEventType(); got != "account.welcome" {
		t.Fatalf("event type = %q, want account.welcome", got)
	}
	if f.outbox.events[0].Recipient != "asha@example.com" {
		t.Fatalf("recipient = %q", f.outbox.events[0].Recipient)
	}
	if f.outbox.events[0].TemplateRole != "student" {
		t.Fatalf("template role = %q", f.outbox.events[0].TemplateRole)
	}
}

func TestSignupOrganizationAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture()

	req := application.AdminSignupRequest{
		SignupRequest: application.SignupRequest{
			Email:     "dean@college.example.com",
			Password:  "secret1",
			FirstName: "Meera",
			LastName:  "Iyer",
			Phone:     "+919800000010",
		},
		OrgType: "college",
		OrgName: "Crestview College",
		OrgCode: "crest01",
		OrgCity: "Pune",
	}
	res, err := f.service.SignupOrganizationAdmin(context.Background(), req)
	if err != nil {
		t.Fatalf("SignupOrganizationAdmin: %v", err)
	}

	org, err := f.organizations.GetByCode(context.Background(), "CREST01")
	if err != nil {
		t.Fatalf("organization not stored under the uppercased code: %v", err)
	}
	if org.OrgID != res.OrganizationID {
		t.Fatalf("org id = %s, want %s", org.OrgID, res.OrganizationID)
	}
	if org.ApprovalStatus != "pending" {
		t.Fatalf("approval status = %q, want pending", org.ApprovalStatus)
	}
	if org.AdminUserID != res.UserID {
		t.Fatalf("admin user id = %s, want %s", org.AdminUserID, res.UserID)
	}

	profile, err := f.profiles.GetByID(context.Background(), res.UserID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Role != domain.RoleCollegeAdmin {
		t.Fatalf("role = %q, want %q", profile.Role, domain.RoleCollegeAdmin)
	}
	if profile.OrganizationID == nil || *profile.OrganizationID != res.OrganizationID {
		t.Fatalf("profile is not linked to the organization")
	}
	if len(f.roleRecords.records) != 0 {
		t.Fatalf("admins must not get a role record")
	}
}

func TestSignupOrganizationAdminCompensatesOnOrgFailure(t *testing.T) {
	t.Parallel()
	f := newFixture()

	stepErr := errors.New("organizations unavailable")
	f.organizations.failNext = stepErr

	req := application.AdminSignupRequest{
		SignupRequest: application.SignupRequest{
			Email:     "dean@college.example.com",
			Password:  "secret1",
			FirstName: "Meera",
		},
		OrgType: "school",
		OrgName: "Crestview School",
		OrgCode: "CREST02",
	}
	_, err := f.service.SignupOrganizationAdmin(context.Background(), req)
	if !errors.Is(err, stepErr) {
		t.Fatalf("err = %v, want the original step error", err)
	}
	if len(f.identities.deleted) != 1 {
		t.Fatalf("expected one compensating delete, got %d", len(f.identities.deleted))
	}
}

func TestSignupOrganizationAdminDuplicateCode(t *testing.T) {
	t.Parallel()
	f := newFixture()

	seed := domain.Organization{Code: "CREST03", Name: "Existing"}
	if err := f.organizations.Insert(context.Background(), seed); err != nil {
		t.Fatalf("seed organization: %v", err)
	}

	req := application.AdminSignupRequest{
		SignupRequest: application.SignupRequest{
			Email:     "dean@college.example.com",
			Password:  "secret1",
			FirstName: "Meera",
		},
		OrgType: "university",
		OrgName: "Crestview University",
		OrgCode: "crest03",
	}
	if _, err := f.service.SignupOrganizationAdmin(context.Background(), req); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if f.identities.exists("dean@college.example.com") {
		t.Fatalf("precondition failures must not create an identity")
	}
}

func TestRegisterEventAttendee(t *testing.T) {
	t.Parallel()
	f := newFixture()

	res, err := f.service.RegisterEventAttendee(context.Background(), application.EventSignupRequest{
		Email:     "guest@example.com",
		Password:  "secret1",
		FirstName: "Ravi",
		EventID:   "career-fair-2026",
	})
	if err != nil {
		t.Fatalf("RegisterEventAttendee: %v", err)
	}
	if res.Role != domain.RoleStudent {
		t.Fatalf("role = %q, want student", res.Role)
	}
	if len(f.roleRecords.records) != 1 || f.roleRecords.records[0].Kind != domain.RecordStudent {
		t.Fatalf("event attendees must get a student record")
	}

	profile, err := f.profiles.GetByID(context.Background(), res.UserID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Metadata["event_id"] != "career-fair-2026" {
		t.Fatalf("event id not carried in profile metadata: %v", profile.Metadata)
	}
}

func TestRegisterEventAttendeeRequiresEventID(t *testing.T) {
	t.Parallel()
	f := newFixture()

	_, err := f.service.RegisterEventAttendee(context.Background(), application.EventSignupRequest{
		Email:     "guest@example.com",
		Password:  "secret1",
		FirstName: "Ravi",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
