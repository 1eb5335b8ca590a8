package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyInput describes a company to create or update
type CompanyInput struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Plan        models.SubscriptionPlan `json:"plan,omitempty"`
	Branding    *models.Branding        `json:"branding,omitempty"`
}

// CompanyService manages client companies
type CompanyService interface {
	// CreateCompany creates a company with a slug derived from its name
	CreateCompany(ctx context.Context, input CompanyInput, actorUserID primitive.ObjectID, requestID string) (*models.Company, error)

	// GetCompany returns a company by ID
	GetCompany(ctx context.Context, id primitive.ObjectID) (*models.Company, error)

	// GetBySlug returns a company by its URL slug
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)

	// UpdateCompany updates mutable company fields
	UpdateCompany(ctx context.Context, id primitive.ObjectID, input CompanyInput) (*models.Company, error)

	// DeactivateCompany soft deletes a company
	DeactivateCompany(ctx context.Context, id primitive.ObjectID) error

	// ListCompanies lists companies with optional plan filtering
	ListCompanies(ctx context.Context, plan *models.SubscriptionPlan, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Company], error)
}

// companyService implements CompanyService
type companyService struct {
	companyRepo repository.CompanyRepository
	audit       *AuditHelpers
}

// NewCompanyService creates a new company service
func NewCompanyService(companyRepo repository.CompanyRepository, audit *AuditHelpers) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		audit:       audit,
	}
}

var _ CompanyService = (*companyService)(nil)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a company name
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	// Common Spanish characters flattened before stripping
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
	)
	slug = replacer.Replace(slug)
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CreateCompany creates a company with a slug derived from its name
func (s *companyService) CreateCompany(ctx context.Context, input CompanyInput, actorUserID primitive.ObjectID, requestID string) (*models.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", models.ErrInvalidInput)
	}
	if input.Plan != "" && !input.Plan.IsValid() {
		return nil, models.ErrInvalidPlan
	}

	company := &models.Company{
		Name:        name,
		Slug:        Slugify(name),
		Description: input.Description,
		Plan:        input.Plan,
	}
	if input.Branding != nil {
		company.Branding = *input.Branding
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogCompanyCreate(actorUserID, company.ID, company.Name, requestID)
	}

	return company, nil
}

// GetCompany returns a company by ID
func (s *companyService) GetCompany(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

// GetBySlug returns a company by its URL slug
func (s *companyService) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return s.companyRepo.GetBySlug(ctx, slug)
}

// UpdateCompany updates mutable company fields.
// #BUSINESS_RULE: The slug never changes after creation; external links depend on it
func (s *companyService) UpdateCompany(ctx context.Context, id primitive.ObjectID, input CompanyInput) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		company.Name = name
	}
	if input.Description != "" {
		company.Description = input.Description
	}
	if input.Plan != "" {
		if !input.Plan.IsValid() {
			return nil, models.ErrInvalidPlan
		}
		company.Plan = input.Plan
	}
	if input.Branding != nil {
		company.Branding = *input.Branding
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

// DeactivateCompany soft deletes a company
func (s *companyService) DeactivateCompany(ctx context.Context, id primitive.ObjectID) error {
	return s.companyRepo.SoftDelete(ctx, id)
}

// ListCompanies lists companies with optional plan filtering
func (s *companyService) ListCompanies(ctx context.Context, plan *models.SubscriptionPlan, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Company], error) {
	return s.companyRepo.List(ctx, plan, opts)
}
