package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the application-level account role. The set is closed; role-specific
// persistence is driven by RoleSpecs rather than per-role code paths.
type Role string

const (
	RoleStudent         Role = "student"
	RoleEducator        Role = "educator"
	RoleRecruiter       Role = "recruiter"
	RoleUniversityAdmin Role = "university_admin"
	RoleCollegeAdmin    Role = "college_admin"
	RoleSchoolAdmin     Role = "school_admin"
)

// ParseRole validates a raw role string against the closed role set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleStudent, RoleEducator, RoleRecruiter,
		RoleUniversityAdmin, RoleCollegeAdmin, RoleSchoolAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// Identity is the authentication principal held by the external identity
// store. Only the fields the provisioning workflow reads are modeled; the
// password hash never leaves the store.
type Identity struct {
	ID        uuid.UUID
	Email     string
	Confirmed bool
	Metadata  map[string]string
	CreatedAt time.Time
}

// UserProfile is the application user row, keyed by the identity id.
// It is never created without a corresponding Identity; the compensator
// guarantees the converse direction best-effort.
type UserProfile struct {
	UserID         uuid.UUID
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	Role           Role
	IsActive       bool
	OrganizationID *uuid.UUID
	Metadata       map[string]string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RoleRecordKind tags the role-specific profile extension variant.
type RoleRecordKind string

const (
	RecordNone      RoleRecordKind = ""
	RecordStudent   RoleRecordKind = "student"
	RecordRecruiter RoleRecordKind = "recruiter"
)

// StudentDetails is the student-role extension row.
type StudentDetails struct {
	GuardianPhone  string
	EnrollmentYear int
	ApprovalStatus string
}

// RecruiterDetails is the recruiter-role extension row.
type RecruiterDetails struct {
	CompanyName        string
	CompanyWebsite     string
	VerificationStatus string
}

// RoleRecord is the tagged variant passed to the role-record repository.
// Exactly one of the detail pointers is set, matching Kind.
type RoleRecord struct {
	Kind      RoleRecordKind
	UserID    uuid.UUID
	Student   *StudentDetails
	Recruiter *RecruiterDetails
	CreatedAt time.Time
}

// SignupAttributes carries the role-specific parts of a signup payload into
// the role-record builders.
type SignupAttributes struct {
	GuardianPhone  string
	EnrollmentYear int
	CompanyName    string
	CompanyWebsite string
}

// RoleSpec describes how a role maps onto dependent persistence. Adding a
// role is a data change in RoleSpecs, not a new branch in the writer.
type RoleSpec struct {
	Kind  RoleRecordKind
	Build func(userID uuid.UUID, attrs SignupAttributes, at time.Time) RoleRecord
}

// RoleSpecs is the role dispatch table. Educator and the admin roles
// intentionally have no record: educator extension rows are created later by
// an admin-driven approval flow, and admins are fully described by the
// profile plus organization rows.
var RoleSpecs = map[Role]RoleSpec{
	RoleStudent: {
		Kind: RecordStudent,
		Build: func(userID uuid.UUID, attrs SignupAttributes, at time.Time) RoleRecord {
			return RoleRecord{
				Kind:   RecordStudent,
				UserID: userID,
				Student: &StudentDetails{
					GuardianPhone:  attrs.GuardianPhone,
					EnrollmentYear: attrs.EnrollmentYear,
					ApprovalStatus: "pending",
				},
				CreatedAt: at,
			}
		},
	},
	RoleRecruiter: {
		Kind: RecordRecruiter,
		Build: func(userID uuid.UUID, attrs SignupAttributes, at time.Time) RoleRecord {
			return RoleRecord{
				Kind:   RecordRecruiter,
				UserID: userID,
				Recruiter: &RecruiterDetails{
					CompanyName:        attrs.CompanyName,
					CompanyWebsite:     attrs.CompanyWebsite,
					VerificationStatus: "unverified",
				},
				CreatedAt: at,
			}
		},
	},
	RoleEducator:        {Kind: RecordNone},
	RoleUniversityAdmin: {Kind: RecordNone},
	RoleCollegeAdmin:    {Kind: RecordNone},
	RoleSchoolAdmin:     {Kind: RecordNone},
}
