package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ebi360/bs360_backend/internal/auth"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleService handles role resolution, active-role switching, and the
// reconciliation between the profiles collection and the JWT claims mirror.
// #BUSINESS_RULE: The profiles collection is the system of record for access.
// Token claims are a stale-tolerant cache repaired on refresh or sync.
type RoleService interface {
	RoleResolver

	// SwitchActiveRole changes the caller's active role. The role must be a
	// member of the caller's resolved role set; the store is written first
	// and a fresh token pair is issued to keep the claims mirror current.
	SwitchActiveRole(ctx context.Context, userID primitive.ObjectID, requested models.Role, requestID string) (*models.Profile, *auth.TokenPair, error)

	// SyncAccess re-derives the caller's role set from the profile store,
	// repairs any drift, and issues a fresh token pair. Idempotent.
	SyncAccess(ctx context.Context, userID primitive.ObjectID, requestID string) (*models.Profile, *auth.TokenPair, error)

	// GrantRole adds a role to a target profile. Privileged operation.
	GrantRole(ctx context.Context, actorUserID, targetUserID primitive.ObjectID, role models.Role, requestID string) (*models.Profile, error)
}

// roleService implements RoleService
type roleService struct {
	profileRepo   repository.ProfileRepository
	jwtService    auth.JWTService
	audit         *AuditHelpers
	isAllowlisted func(email string) bool
}

// NewRoleService creates a new role service.
// isAllowlisted reports whether an email is on the super-admin allowlist
// (injected from config so the rule has a single source of truth).
func NewRoleService(
	profileRepo repository.ProfileRepository,
	jwtService auth.JWTService,
	audit *AuditHelpers,
	isAllowlisted func(email string) bool,
) RoleService {
	return &roleService{
		profileRepo:   profileRepo,
		jwtService:    jwtService,
		audit:         audit,
		isAllowlisted: isAllowlisted,
	}
}

var _ RoleService = (*roleService)(nil)

// ResolveRoles returns the effective role set for a profile.
// #BUSINESS_RULE: Allowlisted emails always resolve to the maximal role set,
// regardless of what the profile record stores. Everyone else gets their
// stored roles, defaulting to employee.
func (s *roleService) ResolveRoles(profile *models.Profile) []models.Role {
	if s.isAllowlisted != nil && s.isAllowlisted(profile.Email) {
		return models.AllRoles()
	}
	if len(profile.Roles) == 0 {
		return []models.Role{models.RoleEmployee}
	}
	roles := make([]models.Role, len(profile.Roles))
	copy(roles, profile.Roles)
	return roles
}

// SwitchActiveRole changes the caller's active role
func (s *roleService) SwitchActiveRole(ctx context.Context, userID primitive.ObjectID, requested models.Role, requestID string) (*models.Profile, *auth.TokenPair, error) {
	if !requested.IsValid() {
		return nil, nil, models.ErrInvalidRole
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !profile.IsActive || profile.IsDeleted() {
		return nil, nil, models.ErrProfileInactive
	}

	resolved := s.ResolveRoles(profile)
	if !containsRole(resolved, requested) {
		// Rejected requests leave the store untouched
		return nil, nil, models.ErrRoleNotPermitted
	}

	previous := profile.ActiveRole

	// Primary write: the profile store changes first
	if err := s.profileRepo.UpdateRoles(ctx, userID, resolved, requested); err != nil {
		return nil, nil, fmt.Errorf("failed to update active role: %w", err)
	}
	profile.Roles = resolved
	profile.ActiveRole = requested

	if s.audit != nil {
		s.audit.LogRoleSwitch(userID, profile.CompanyID, profile.Email, previous, requested, requestID)
	}

	// Mirror write: fresh tokens so claims match the store.
	// #IMPLEMENTATION_DECISION: Token issuance failure does not roll back the
	// switch; the stale mirror self-heals on the next refresh or sync.
	tokenPair, err := s.jwtService.GenerateTokenPair(s.tokenSubjectFor(profile, resolved))
	if err != nil {
		log.Printf("Warning: role switch for %s succeeded but token refresh failed: %v", profile.Email, err)
		return profile, nil, nil
	}

	return profile, tokenPair, nil
}

// SyncAccess re-derives roles from the profile store and repairs drift
func (s *roleService) SyncAccess(ctx context.Context, userID primitive.ObjectID, requestID string) (*models.Profile, *auth.TokenPair, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !profile.IsActive || profile.IsDeleted() {
		return nil, nil, models.ErrProfileInactive
	}

	resolved := s.ResolveRoles(profile)

	activeRole := profile.ActiveRole
	if !containsRole(resolved, activeRole) {
		// Active role fell out of the set, demote to the first resolved role
		activeRole = resolved[0]
	}

	if !rolesEqual(profile.Roles, resolved) || profile.ActiveRole != activeRole {
		if err := s.profileRepo.UpdateRoles(ctx, userID, resolved, activeRole); err != nil {
			return nil, nil, fmt.Errorf("failed to sync roles: %w", err)
		}
		profile.Roles = resolved
		profile.ActiveRole = activeRole
	}

	if s.audit != nil {
		s.audit.LogAccessSync(userID, profile.CompanyID, profile.Email, resolved, requestID)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(s.tokenSubjectFor(profile, resolved))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return profile, tokenPair, nil
}

// GrantRole adds a role to a target profile
func (s *roleService) GrantRole(ctx context.Context, actorUserID, targetUserID primitive.ObjectID, role models.Role, requestID string) (*models.Profile, error) {
	if !role.IsValid() {
		return nil, models.ErrInvalidRole
	}

	profile, err := s.profileRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	if profile.HasRole(role) {
		// Already held, nothing to do
		return profile, nil
	}

	roles := append(append([]models.Role{}, profile.Roles...), role)
	if err := s.profileRepo.UpdateRoles(ctx, targetUserID, roles, profile.ActiveRole); err != nil {
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}
	profile.Roles = roles

	if s.audit != nil {
		s.audit.LogRoleGrant(actorUserID, targetUserID, profile.CompanyID, role, requestID)
	}

	return profile, nil
}

// tokenSubjectFor builds the token claims from a profile and its resolved roles
func (s *roleService) tokenSubjectFor(profile *models.Profile, roles []models.Role) auth.TokenSubject {
	roleStrings := make([]string, 0, len(roles))
	for _, r := range roles {
		roleStrings = append(roleStrings, r.Lower())
	}

	companyID := ""
	if profile.CompanyID != nil {
		companyID = profile.CompanyID.Hex()
	}

	return auth.TokenSubject{
		UserID:     profile.ID.Hex(),
		CompanyID:  companyID,
		Email:      profile.Email,
		Roles:      roleStrings,
		ActiveRole: profile.ActiveRole.Lower(),
	}
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func rolesEqual(a, b []models.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
