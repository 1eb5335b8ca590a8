package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebi360/bs360_backend/internal/auth"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeProfileRepo is an in-memory ProfileRepository for testing
type fakeProfileRepo struct {
	profiles        map[primitive.ObjectID]*models.Profile
	updateRoleCalls int
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: make(map[primitive.ObjectID]*models.Profile)}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	for _, p := range f.profiles {
		if p.Email == profile.Email {
			return models.ErrEmailAlreadyExists
		}
	}
	profile.BeforeCreate()
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, models.ErrProfileNotFound
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) UpdateRoles(ctx context.Context, id primitive.ObjectID, roles []models.Role, activeRole models.Role) error {
	p, ok := f.profiles[id]
	if !ok {
		return models.ErrProfileNotFound
	}
	f.updateRoleCalls++
	p.Roles = roles
	p.ActiveRole = activeRole
	return nil
}

func (f *fakeProfileRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	p, ok := f.profiles[id]
	if !ok {
		return models.ErrProfileNotFound
	}
	p.SoftDelete()
	return nil
}

func (f *fakeProfileRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeProfileRepo) ListByCompany(ctx context.Context, companyID primitive.ObjectID, includeInactive bool, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Profile], error) {
	return &repository.PaginatedResult[models.Profile]{}, nil
}

func (f *fakeProfileRepo) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return int64(len(f.profiles)), nil
}

// fakeJWTService issues placeholder tokens and records the last subject
type fakeJWTService struct {
	lastSubject auth.TokenSubject
	failPair    bool
}

func (f *fakeJWTService) GenerateAccessToken(subject auth.TokenSubject) (string, time.Time, error) {
	f.lastSubject = subject
	return "access-token", time.Now().Add(time.Hour), nil
}

func (f *fakeJWTService) GenerateRefreshToken(userID string) (string, error) {
	return "refresh-token", nil
}

func (f *fakeJWTService) GenerateTokenPair(subject auth.TokenSubject) (*auth.TokenPair, error) {
	if f.failPair {
		return nil, errors.New("signing unavailable")
	}
	f.lastSubject = subject
	return &auth.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
		ExpiresIn:    3600,
	}, nil
}

func (f *fakeJWTService) ValidateAccessToken(tokenString string) (*auth.Claims, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeJWTService) ValidateRefreshToken(tokenString string) (*auth.RefreshClaims, error) {
	return nil, errors.New("not implemented")
}

func testProfile(roles []models.Role, active models.Role) *models.Profile {
	companyID := primitive.NewObjectID()
	return &models.Profile{
		ID:         primitive.NewObjectID(),
		Email:      "ana@empresa.com",
		FullName:   "Ana García",
		CompanyID:  &companyID,
		Roles:      roles,
		ActiveRole: active,
		IsActive:   true,
	}
}

func notAllowlisted(string) bool { return false }

func TestRoleService_SwitchActiveRole_Success(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee, models.RoleCompanyAdmin}, models.RoleEmployee)
	repo := newFakeProfileRepo(profile)
	jwtSvc := &fakeJWTService{}
	svc := NewRoleService(repo, jwtSvc, nil, notAllowlisted)

	updated, pair, err := svc.SwitchActiveRole(context.Background(), profile.ID, models.RoleCompanyAdmin, "req-1")
	if err != nil {
		t.Fatalf("SwitchActiveRole() error = %v", err)
	}
	if updated.ActiveRole != models.RoleCompanyAdmin {
		t.Errorf("ActiveRole = %v, want %v", updated.ActiveRole, models.RoleCompanyAdmin)
	}
	if pair == nil || pair.AccessToken == "" {
		t.Error("expected a fresh token pair")
	}
	if jwtSvc.lastSubject.ActiveRole != "company_admin" {
		t.Errorf("token active role = %q, want %q", jwtSvc.lastSubject.ActiveRole, "company_admin")
	}
	if repo.updateRoleCalls != 1 {
		t.Errorf("UpdateRoles calls = %d, want 1", repo.updateRoleCalls)
	}
}

func TestRoleService_SwitchActiveRole_NotHeldRejectedWithoutMutation(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	repo := newFakeProfileRepo(profile)
	svc := NewRoleService(repo, &fakeJWTService{}, nil, notAllowlisted)

	_, _, err := svc.SwitchActiveRole(context.Background(), profile.ID, models.RoleCompanyAdmin, "req-1")
	if !errors.Is(err, models.ErrRoleNotPermitted) {
		t.Fatalf("SwitchActiveRole() error = %v, want ErrRoleNotPermitted", err)
	}
	if repo.updateRoleCalls != 0 {
		t.Errorf("UpdateRoles calls = %d, want 0 (store must not change on rejection)", repo.updateRoleCalls)
	}
	if profile.ActiveRole != models.RoleEmployee {
		t.Errorf("ActiveRole = %v, want unchanged employee", profile.ActiveRole)
	}
}

func TestRoleService_SwitchActiveRole_InvalidRole(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	svc := NewRoleService(newFakeProfileRepo(profile), &fakeJWTService{}, nil, notAllowlisted)

	_, _, err := svc.SwitchActiveRole(context.Background(), profile.ID, models.Role("OVERLORD"), "req-1")
	if !errors.Is(err, models.ErrInvalidRole) {
		t.Errorf("SwitchActiveRole() error = %v, want ErrInvalidRole", err)
	}
}

func TestRoleService_SwitchActiveRole_TokenFailureStillSucceeds(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee, models.RoleCompanyAdmin}, models.RoleEmployee)
	repo := newFakeProfileRepo(profile)
	svc := NewRoleService(repo, &fakeJWTService{failPair: true}, nil, notAllowlisted)

	updated, pair, err := svc.SwitchActiveRole(context.Background(), profile.ID, models.RoleCompanyAdmin, "req-1")
	if err != nil {
		t.Fatalf("SwitchActiveRole() error = %v, want nil (store write already committed)", err)
	}
	if pair != nil {
		t.Error("expected nil token pair when signing fails")
	}
	if updated.ActiveRole != models.RoleCompanyAdmin {
		t.Errorf("ActiveRole = %v, want %v", updated.ActiveRole, models.RoleCompanyAdmin)
	}
}

func TestRoleService_SwitchActiveRole_InactiveProfile(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	profile.IsActive = false
	svc := NewRoleService(newFakeProfileRepo(profile), &fakeJWTService{}, nil, notAllowlisted)

	_, _, err := svc.SwitchActiveRole(context.Background(), profile.ID, models.RoleEmployee, "req-1")
	if !errors.Is(err, models.ErrProfileInactive) {
		t.Errorf("SwitchActiveRole() error = %v, want ErrProfileInactive", err)
	}
}

func TestRoleService_ResolveRoles_AllowlistSynthesizesAllRoles(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	profile.Email = "root@ebi360.io"
	allowlist := func(email string) bool { return email == "root@ebi360.io" }
	svc := NewRoleService(newFakeProfileRepo(profile), &fakeJWTService{}, nil, allowlist)

	roles := svc.ResolveRoles(profile)
	if len(roles) != len(models.AllRoles()) {
		t.Fatalf("ResolveRoles() = %v, want all roles", roles)
	}
	if !containsRole(roles, models.RoleSuperAdmin) {
		t.Error("allowlisted email must resolve super_admin")
	}
}

func TestRoleService_ResolveRoles_EmptyDefaultsToEmployee(t *testing.T) {
	profile := testProfile(nil, "")
	svc := NewRoleService(newFakeProfileRepo(profile), &fakeJWTService{}, nil, notAllowlisted)

	roles := svc.ResolveRoles(profile)
	if len(roles) != 1 || roles[0] != models.RoleEmployee {
		t.Errorf("ResolveRoles() = %v, want [EMPLOYEE]", roles)
	}
}

func TestRoleService_SyncAccess_RepairsDrift(t *testing.T) {
	// Stored roles drifted: active role no longer in resolved set after
	// the allowlist no longer matches
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleSuperAdmin)
	repo := newFakeProfileRepo(profile)
	jwtSvc := &fakeJWTService{}
	svc := NewRoleService(repo, jwtSvc, nil, notAllowlisted)

	updated, pair, err := svc.SyncAccess(context.Background(), profile.ID, "req-1")
	if err != nil {
		t.Fatalf("SyncAccess() error = %v", err)
	}
	if updated.ActiveRole != models.RoleEmployee {
		t.Errorf("ActiveRole = %v, want demoted to EMPLOYEE", updated.ActiveRole)
	}
	if pair == nil {
		t.Fatal("expected a token pair")
	}
	if repo.updateRoleCalls != 1 {
		t.Errorf("UpdateRoles calls = %d, want 1", repo.updateRoleCalls)
	}
}

func TestRoleService_SyncAccess_Idempotent(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	repo := newFakeProfileRepo(profile)
	svc := NewRoleService(repo, &fakeJWTService{}, nil, notAllowlisted)

	for i := 0; i < 3; i++ {
		if _, _, err := svc.SyncAccess(context.Background(), profile.ID, "req-1"); err != nil {
			t.Fatalf("SyncAccess() run %d error = %v", i, err)
		}
	}
	if repo.updateRoleCalls != 0 {
		t.Errorf("UpdateRoles calls = %d, want 0 when nothing drifted", repo.updateRoleCalls)
	}
}

func TestRoleService_GrantRole_AppendsOnce(t *testing.T) {
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	repo := newFakeProfileRepo(profile)
	svc := NewRoleService(repo, &fakeJWTService{}, nil, notAllowlisted)
	actor := primitive.NewObjectID()

	updated, err := svc.GrantRole(context.Background(), actor, profile.ID, models.RoleCompanyAdmin, "req-1")
	if err != nil {
		t.Fatalf("GrantRole() error = %v", err)
	}
	if !updated.HasRole(models.RoleCompanyAdmin) {
		t.Error("granted role missing from profile")
	}
	if updated.ActiveRole != models.RoleEmployee {
		t.Errorf("ActiveRole = %v, grant must not change the active role", updated.ActiveRole)
	}

	// Second grant is a no-op
	again, err := svc.GrantRole(context.Background(), actor, profile.ID, models.RoleCompanyAdmin, "req-2")
	if err != nil {
		t.Fatalf("GrantRole() repeat error = %v", err)
	}
	if len(again.Roles) != 2 {
		t.Errorf("Roles = %v, want no duplicate entries", again.Roles)
	}
	if repo.updateRoleCalls != 1 {
		t.Errorf("UpdateRoles calls = %d, want 1", repo.updateRoleCalls)
	}
}
