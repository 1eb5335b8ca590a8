package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeSecureLinkRepo records created links in memory
type fakeSecureLinkRepo struct {
	links []*models.SecureLink
}

func (f *fakeSecureLinkRepo) Create(ctx context.Context, link *models.SecureLink) error {
	link.BeforeCreate()
	f.links = append(f.links, link)
	return nil
}

func (f *fakeSecureLinkRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.SecureLink, error) {
	for _, l := range f.links {
		if l.SecureIdentifier == identifier {
			return l, nil
		}
	}
	return nil, models.ErrSecureLinkNotFound
}

func (f *fakeSecureLinkRepo) MarkAsUsed(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeSecureLinkRepo) Invalidate(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeSecureLinkRepo) InvalidateAllForEmail(ctx context.Context, email string) error {
	return nil
}

func (f *fakeSecureLinkRepo) CountRecentByEmail(ctx context.Context, email string, withinMinutes int) (int64, error) {
	return 0, nil
}

func (f *fakeSecureLinkRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// fakeCompanyRepo serves a single fixed company
type fakeCompanyRepo struct {
	company *models.Company
}

func (f *fakeCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	company.BeforeCreate()
	f.company = company
	return nil
}

func (f *fakeCompanyRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	if f.company == nil || f.company.ID != id {
		return nil, models.ErrCompanyNotFound
	}
	return f.company, nil
}

func (f *fakeCompanyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	if f.company == nil || f.company.Slug != slug {
		return nil, models.ErrCompanyNotFound
	}
	return f.company, nil
}

func (f *fakeCompanyRepo) Update(ctx context.Context, company *models.Company) error {
	f.company = company
	return nil
}

func (f *fakeCompanyRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeCompanyRepo) List(ctx context.Context, plan *models.SubscriptionPlan, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Company], error) {
	return &repository.PaginatedResult[models.Company]{}, nil
}

func (f *fakeCompanyRepo) Count(ctx context.Context) (int64, error) {
	return 1, nil
}

func TestEmployeeService_BulkCreate_PartialSuccess(t *testing.T) {
	companyID := primitive.NewObjectID()
	existing := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	existing.Email = "dup@empresa.com"
	profileRepo := newFakeProfileRepo(existing)

	svc := NewEmployeeService(profileRepo, &fakeCompanyRepo{}, &fakeSecureLinkRepo{}, NewMockMailService(), nil, "https://app.bs360.io")

	inputs := []EmployeeInput{
		{Email: "nueva@empresa.com", FullName: "Nueva Empleada"},
		{Email: "dup@empresa.com", FullName: "Duplicado"},
		{Email: "sin-arroba", FullName: "Email Roto"},
		{Email: "otra@empresa.com", FullName: "Otra Empleada"},
	}

	result, err := svc.BulkCreate(context.Background(), companyID, inputs, primitive.NewObjectID(), "req-1")
	if err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}

	if len(result.Created) != 2 {
		t.Errorf("Created = %d, want 2", len(result.Created))
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Errors = %d, want 2: %v", len(result.Errors), result.Errors)
	}
	if result.Errors[0] != "dup@empresa.com: Usuario ya existe" {
		t.Errorf("duplicate error = %q, want %q", result.Errors[0], "dup@empresa.com: Usuario ya existe")
	}
	if !strings.HasPrefix(result.Errors[1], "sin-arroba:") {
		t.Errorf("invalid email error = %q, want prefixed with the row email", result.Errors[1])
	}

	// Successes persisted despite sibling failures
	if _, err := profileRepo.GetByEmail(context.Background(), "nueva@empresa.com"); err != nil {
		t.Error("nueva@empresa.com was not persisted")
	}
	if _, err := profileRepo.GetByEmail(context.Background(), "otra@empresa.com"); err != nil {
		t.Error("otra@empresa.com was not persisted")
	}
}

func TestEmployeeService_BulkCreate_AllValid(t *testing.T) {
	companyID := primitive.NewObjectID()
	svc := NewEmployeeService(newFakeProfileRepo(), &fakeCompanyRepo{}, &fakeSecureLinkRepo{}, NewMockMailService(), nil, "https://app.bs360.io")

	result, err := svc.BulkCreate(context.Background(), companyID, []EmployeeInput{
		{Email: "a@empresa.com"},
		{Email: "b@empresa.com"},
	}, primitive.NewObjectID(), "req-1")
	if err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	if len(result.Created) != 2 || len(result.Errors) != 0 {
		t.Errorf("Created = %d, Errors = %d, want 2 and 0", len(result.Created), len(result.Errors))
	}
}

func TestEmployeeService_CreateEmployee_NormalizesEmail(t *testing.T) {
	companyID := primitive.NewObjectID()
	svc := NewEmployeeService(newFakeProfileRepo(), &fakeCompanyRepo{}, &fakeSecureLinkRepo{}, NewMockMailService(), nil, "https://app.bs360.io")

	profile, err := svc.CreateEmployee(context.Background(), companyID, EmployeeInput{Email: "  Ana@Empresa.COM "})
	if err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}
	if profile.Email != "ana@empresa.com" {
		t.Errorf("Email = %q, want lowercased and trimmed", profile.Email)
	}
	if profile.CompanyID == nil || *profile.CompanyID != companyID {
		t.Error("CompanyID not assigned")
	}
	// BeforeCreate defaults apply
	if len(profile.Roles) != 1 || profile.Roles[0] != models.RoleEmployee {
		t.Errorf("Roles = %v, want default [EMPLOYEE]", profile.Roles)
	}
}

func TestEmployeeService_CreateEmployee_InvalidRole(t *testing.T) {
	svc := NewEmployeeService(newFakeProfileRepo(), &fakeCompanyRepo{}, &fakeSecureLinkRepo{}, NewMockMailService(), nil, "https://app.bs360.io")

	_, err := svc.CreateEmployee(context.Background(), primitive.NewObjectID(), EmployeeInput{
		Email: "x@empresa.com",
		Roles: []models.Role{models.Role("WIZARD")},
	})
	if err != models.ErrInvalidRole {
		t.Errorf("CreateEmployee() error = %v, want ErrInvalidRole", err)
	}
}

func TestEmployeeService_InviteEmployee_SendsLinkWithBranding(t *testing.T) {
	company := &models.Company{
		ID:   primitive.NewObjectID(),
		Name: "Empresa Uno",
		Slug: "empresa-uno",
		Branding: models.Branding{
			LogoURL: "https://cdn.empresa.com/logo.png",
		},
	}
	profile := testProfile([]models.Role{models.RoleEmployee}, models.RoleEmployee)
	profile.CompanyID = &company.ID

	linkRepo := &fakeSecureLinkRepo{}
	mail := NewMockMailService()
	svc := NewEmployeeService(newFakeProfileRepo(profile), &fakeCompanyRepo{company: company}, linkRepo, mail, nil, "https://app.bs360.io")

	if err := svc.InviteEmployee(context.Background(), profile.ID, primitive.NewObjectID(), "req-1"); err != nil {
		t.Fatalf("InviteEmployee() error = %v", err)
	}

	if len(linkRepo.links) != 1 {
		t.Fatalf("secure links = %d, want 1", len(linkRepo.links))
	}
	link := linkRepo.links[0]
	if link.Type != models.SecureLinkTypeInvitation {
		t.Errorf("link type = %v, want invitation", link.Type)
	}
	if len(link.SecureIdentifier) != 64 {
		t.Errorf("identifier length = %d, want 64", len(link.SecureIdentifier))
	}
	if len(mail.SentInvitations) != 1 || mail.SentInvitations[0] != profile.Email {
		t.Errorf("invitations sent = %v, want [%s]", mail.SentInvitations, profile.Email)
	}
}
