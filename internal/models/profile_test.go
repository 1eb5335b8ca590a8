package models

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRole_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected string
	}{
		{"SuperAdmin lowercase", RoleSuperAdmin, `"super_admin"`},
		{"CompanyAdmin lowercase", RoleCompanyAdmin, `"company_admin"`},
		{"Employee lowercase", RoleEmployee, `"employee"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.role)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("MarshalJSON() = %v, want %v", string(got), tt.expected)
			}
		})
	}
}

func TestRole_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Role
	}{
		{"SuperAdmin from lowercase", `"super_admin"`, RoleSuperAdmin},
		{"Employee from lowercase", `"employee"`, RoleEmployee},
		{"Employee from uppercase", `"EMPLOYEE"`, RoleEmployee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Role
			err := json.Unmarshal([]byte(tt.input), &got)
			if err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("UnmarshalJSON() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"SuperAdmin is valid", RoleSuperAdmin, true},
		{"CompanyAdmin is valid", RoleCompanyAdmin, true},
		{"Employee is valid", RoleEmployee, true},
		{"Invalid role", Role("INVALID"), false},
		{"Empty role", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestProfile_BeforeCreate(t *testing.T) {
	profile := &Profile{
		Email: "test@example.com",
	}

	profile.BeforeCreate()

	if profile.ID.IsZero() {
		t.Error("ID should be set")
	}
	if profile.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if !profile.IsActive {
		t.Error("IsActive should be true by default")
	}
	if len(profile.Roles) != 1 || profile.Roles[0] != RoleEmployee {
		t.Errorf("Roles = %v, want [employee]", profile.Roles)
	}
	if profile.ActiveRole != RoleEmployee {
		t.Errorf("ActiveRole = %v, want employee", profile.ActiveRole)
	}
	if profile.Language != "es" {
		t.Errorf("Language = %v, want es", profile.Language)
	}
}

func TestProfile_BeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := primitive.NewObjectID()
	profile := &Profile{
		ID:    existingID,
		Email: "test@example.com",
	}

	profile.BeforeCreate()

	if profile.ID != existingID {
		t.Error("BeforeCreate should preserve existing ID")
	}
}

func TestProfile_HasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []Role
		check    Role
		expected bool
	}{
		{"Has employee", []Role{RoleEmployee}, RoleEmployee, true},
		{"Multi-role has admin", []Role{RoleEmployee, RoleCompanyAdmin}, RoleCompanyAdmin, true},
		{"Missing role", []Role{RoleEmployee}, RoleCompanyAdmin, false},
		{"Empty set", nil, RoleEmployee, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &Profile{Roles: tt.roles}
			if got := profile.HasRole(tt.check); got != tt.expected {
				t.Errorf("HasRole() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestProfile_GrantRole(t *testing.T) {
	profile := &Profile{Roles: []Role{RoleEmployee}}

	profile.GrantRole(RoleCompanyAdmin)

	if !profile.HasRole(RoleCompanyAdmin) {
		t.Error("GrantRole should add the role")
	}

	profile.GrantRole(RoleCompanyAdmin)

	if len(profile.Roles) != 2 {
		t.Errorf("GrantRole should be idempotent, got %v", profile.Roles)
	}
}

func TestProfile_SetActiveRole(t *testing.T) {
	profile := &Profile{
		Roles:      []Role{RoleEmployee, RoleCompanyAdmin},
		ActiveRole: RoleEmployee,
	}

	if err := profile.SetActiveRole(RoleCompanyAdmin); err != nil {
		t.Fatalf("SetActiveRole() error = %v", err)
	}
	if profile.ActiveRole != RoleCompanyAdmin {
		t.Errorf("ActiveRole = %v, want company_admin", profile.ActiveRole)
	}
}

func TestProfile_SetActiveRole_NotHeld(t *testing.T) {
	profile := &Profile{
		Roles:      []Role{RoleEmployee},
		ActiveRole: RoleEmployee,
	}

	err := profile.SetActiveRole(RoleSuperAdmin)
	if err != ErrRoleNotPermitted {
		t.Errorf("SetActiveRole() error = %v, want ErrRoleNotPermitted", err)
	}
	if profile.ActiveRole != RoleEmployee {
		t.Error("ActiveRole must not change on rejection")
	}
}

func TestProfile_SoftDelete(t *testing.T) {
	profile := &Profile{Email: "test@example.com"}
	profile.BeforeCreate()

	if profile.IsDeleted() {
		t.Error("Profile should not be deleted initially")
	}

	profile.SoftDelete()

	if !profile.IsDeleted() {
		t.Error("Profile should be deleted after SoftDelete")
	}
	if profile.IsActive {
		t.Error("Profile should be inactive after SoftDelete")
	}
}

func TestProfile_CanManageCompany(t *testing.T) {
	tests := []struct {
		name      string
		roles     []Role
		isActive  bool
		isDeleted bool
		expected  bool
	}{
		{"Active company admin can manage", []Role{RoleCompanyAdmin}, true, false, true},
		{"Active super admin can manage", []Role{RoleSuperAdmin}, true, false, true},
		{"Inactive admin cannot manage", []Role{RoleCompanyAdmin}, false, false, false},
		{"Deleted admin cannot manage", []Role{RoleCompanyAdmin}, true, true, false},
		{"Active employee cannot manage", []Role{RoleEmployee}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &Profile{
				Roles:    tt.roles,
				IsActive: tt.isActive,
			}
			if tt.isDeleted {
				now := time.Now()
				profile.DeletedAt = &now
			}
			if got := profile.CanManageCompany(); got != tt.expected {
				t.Errorf("CanManageCompany() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAllRoles(t *testing.T) {
	roles := AllRoles()
	if len(roles) != 3 {
		t.Fatalf("AllRoles() returned %d roles, want 3", len(roles))
	}
	profile := &Profile{Roles: roles}
	for _, r := range []Role{RoleSuperAdmin, RoleCompanyAdmin, RoleEmployee} {
		if !profile.HasRole(r) {
			t.Errorf("AllRoles() missing %v", r)
		}
	}
}

func TestProfile_CollectionName(t *testing.T) {
	profile := Profile{}
	if got := profile.CollectionName(); got != "profiles" {
		t.Errorf("CollectionName() = %v, want profiles", got)
	}
}
