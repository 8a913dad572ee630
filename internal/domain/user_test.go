package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"student", "educator", "recruiter", "university_admin", "college_admin", "school_admin"} {
		if _, ok := ParseRole(raw); !ok {
			t.Fatalf("expected %q to parse", raw)
		}
	}
	for _, raw := range []string{"", "admin", "Student", "teacher"} {
		if _, ok := ParseRole(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestRoleSpecsDispatch(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	attrs := SignupAttributes{
		GuardianPhone:  "9999999999",
		EnrollmentYear: 2024,
		CompanyName:    "Acme",
		CompanyWebsite: "https://acme.example",
	}

	// Only student and recruiter carry a role record.
	withRecord := map[Role]RoleRecordKind{
		RoleStudent:   RecordStudent,
		RoleRecruiter: RecordRecruiter,
	}
	for role, spec := range RoleSpecs {
		wantKind, want := withRecord[role]
		if !want {
			if spec.Kind != RecordNone {
				t.Fatalf("role %s should have no record, got kind %q", role, spec.Kind)
			}
			if spec.Build != nil {
				t.Fatalf("role %s should have no builder", role)
			}
			continue
		}
		if spec.Kind != wantKind {
			t.Fatalf("role %s kind = %q, want %q", role, spec.Kind, wantKind)
		}
		record := spec.Build(userID, attrs, at)
		if record.UserID != userID || record.Kind != wantKind {
			t.Fatalf("role %s built record %+v", role, record)
		}
	}

	student := RoleSpecs[RoleStudent].Build(userID, attrs, at)
	if student.Student == nil || student.Recruiter != nil {
		t.Fatalf("student record should carry only student details")
	}
	if student.Student.ApprovalStatus != "pending" {
		t.Fatalf("student approval status = %q, want pending", student.Student.ApprovalStatus)
	}
	if student.Student.GuardianPhone != attrs.GuardianPhone || student.Student.EnrollmentYear != attrs.EnrollmentYear {
		t.Fatalf("student details not copied: %+v", student.Student)
	}

	recruiter := RoleSpecs[RoleRecruiter].Build(userID, attrs, at)
	if recruiter.Recruiter == nil || recruiter.Student != nil {
		t.Fatalf("recruiter record should carry only recruiter details")
	}
	if recruiter.Recruiter.VerificationStatus != "unverified" {
		t.Fatalf("recruiter verification status = %q, want unverified", recruiter.Recruiter.VerificationStatus)
	}
}
