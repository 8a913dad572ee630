package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationType distinguishes the institution kinds an admin signup can create.
type OrganizationType string

const (
	OrgSchool     OrganizationType = "school"
	OrgCollege    OrganizationType = "college"
	OrgUniversity OrganizationType = "university"
)

// ParseOrganizationType validates a raw organization type string.
func ParseOrganizationType(raw string) (OrganizationType, bool) {
	switch OrganizationType(raw) {
	case OrgSchool, OrgCollege, OrgUniversity:
		return OrganizationType(raw), true
	default:
		return "", false
	}
}

// Organization is an institution created during an admin signup flow.
// Code is unique platform-wide and is part of the precondition check.
type Organization struct {
	OrgID          uuid.UUID
	Type           OrganizationType
	Name           string
	Code           string
	AdminUserID    uuid.UUID
	ApprovalStatus string
	Address        string
	City           string
	State          string
	ContactPhone   string
	ContactEmail   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
