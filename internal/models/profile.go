package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents a capability role a profile can hold
// #IMPLEMENTATION_DECISION: UPPERCASE in Go code, lowercase in JSON serialization
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleEmployee     Role = "EMPLOYEE"
)

// MarshalJSON converts Role to lowercase for JSON serialization
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(r)))
}

// UnmarshalJSON converts lowercase JSON to Role
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Role(strings.ToUpper(s))
	return nil
}

// Lower returns the lowercase wire form of the role
func (r Role) Lower() string {
	return strings.ToLower(string(r))
}

// IsValid checks if the Role is a valid value
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleEmployee:
		return true
	}
	return false
}

// AllRoles returns the maximal role set.
// #BUSINESS_RULE: Allowlisted identities always resolve to this set regardless of stored data
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleCompanyAdmin, RoleEmployee}
}

// Profile represents an employee account with a set of roles and one active role
// #DATA_ASSUMPTION: Email is unique across entire system (not per company)
// #DATA_ASSUMPTION: Profiles belong to at most ONE company (no multi-company membership)
// #BUSINESS_RULE: ActiveRole must be a member of Roles; the profiles collection is the
// system of record, the JWT claims mirror is stale-tolerant and repaired via sync-access
type Profile struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email     string              `bson:"email" json:"email"`
	FullName  string              `bson:"full_name,omitempty" json:"full_name,omitempty"`
	CompanyID *primitive.ObjectID `bson:"company_id,omitempty" json:"company_id,omitempty"`

	// Role set and the single role currently governing the UI lens
	Roles      []Role `bson:"roles" json:"roles"`
	ActiveRole Role   `bson:"active_role" json:"active_role"`

	// Status
	IsActive    bool       `bson:"is_active" json:"is_active"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	// Preferences
	Language string `bson:"language" json:"language"`
	Timezone string `bson:"timezone,omitempty" json:"timezone,omitempty"`

	// Audit fields with soft delete support
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for profiles
func (Profile) CollectionName() string {
	return "profiles"
}

// IsDeleted returns true if the profile has been soft deleted
func (p *Profile) IsDeleted() bool {
	return p.DeletedAt != nil
}

// BeforeCreate sets default values before inserting a new profile
func (p *Profile) BeforeCreate() {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsActive = true

	if len(p.Roles) == 0 {
		p.Roles = []Role{RoleEmployee}
	}
	if p.ActiveRole == "" {
		p.ActiveRole = p.Roles[0]
	}
	if p.Language == "" {
		p.Language = "es"
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (p *Profile) BeforeUpdate() {
	p.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the profile as deleted and inactive
func (p *Profile) SoftDelete() {
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	p.IsActive = false
}

// HasRole returns true if the profile holds the given role
func (p *Profile) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole appends a role to the profile's role set if not already present
// #BUSINESS_RULE: Roles is an append-only-by-privileged-action set
func (p *Profile) GrantRole(role Role) {
	if p.HasRole(role) {
		return
	}
	p.Roles = append(p.Roles, role)
	p.UpdatedAt = time.Now().UTC()
}

// SetActiveRole switches the active role; the role must already be held
func (p *Profile) SetActiveRole(role Role) error {
	if !p.HasRole(role) {
		return ErrRoleNotPermitted
	}
	p.ActiveRole = role
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IsSuperAdmin returns true if the profile holds the super admin role
func (p *Profile) IsSuperAdmin() bool {
	return p.HasRole(RoleSuperAdmin)
}

// IsCompanyAdmin returns true if the profile holds the company admin role
func (p *Profile) IsCompanyAdmin() bool {
	return p.HasRole(RoleCompanyAdmin)
}

// UpdateLastLogin updates the last login timestamp
func (p *Profile) UpdateLastLogin() {
	now := time.Now().UTC()
	p.LastLoginAt = &now
	p.UpdatedAt = now
}

// CanManageCompany returns true if the profile can manage company settings and employees
func (p *Profile) CanManageCompany() bool {
	return (p.IsCompanyAdmin() || p.IsSuperAdmin()) && p.IsActive && !p.IsDeleted()
}

// CanManageSurveys returns true if the profile can import, activate, and archive surveys
func (p *Profile) CanManageSurveys() bool {
	return p.IsSuperAdmin() && p.IsActive && !p.IsDeleted()
}
