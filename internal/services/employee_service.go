package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmployeeInput describes one employee to create
type EmployeeInput struct {
	Email    string        `json:"email"`
	FullName string        `json:"full_name"`
	Roles    []models.Role `json:"roles,omitempty"`
	Language string        `json:"language,omitempty"`
}

// BulkUploadResult reports the outcome of a bulk employee upload.
// #BUSINESS_RULE: Partial success is the contract: valid rows persist even
// when sibling rows fail, and every failure names its row.
type BulkUploadResult struct {
	Created []models.Profile `json:"created"`
	Errors  []string         `json:"errors"`
}

// EmployeeService manages employee profiles within a company
type EmployeeService interface {
	// CreateEmployee creates a single employee profile
	CreateEmployee(ctx context.Context, companyID primitive.ObjectID, input EmployeeInput) (*models.Profile, error)

	// BulkCreate creates employees one by one, collecting per-item errors
	BulkCreate(ctx context.Context, companyID primitive.ObjectID, inputs []EmployeeInput, actorUserID primitive.ObjectID, requestID string) (*BulkUploadResult, error)

	// InviteEmployee sends an invitation mail with a secure link
	InviteEmployee(ctx context.Context, profileID, actorUserID primitive.ObjectID, requestID string) error

	// GetEmployee returns an employee profile
	GetEmployee(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)

	// UpdateEmployee updates mutable profile fields
	UpdateEmployee(ctx context.Context, id primitive.ObjectID, fullName, language, timezone string) (*models.Profile, error)

	// DeactivateEmployee soft deletes an employee profile
	DeactivateEmployee(ctx context.Context, id primitive.ObjectID) error

	// ListEmployees lists employees in a company
	ListEmployees(ctx context.Context, companyID primitive.ObjectID, includeInactive bool, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Profile], error)
}

// employeeService implements EmployeeService
type employeeService struct {
	profileRepo    repository.ProfileRepository
	companyRepo    repository.CompanyRepository
	secureLinkRepo repository.SecureLinkRepository
	mailService    MailService
	audit          *AuditHelpers
	inviteBaseURL  string
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	profileRepo repository.ProfileRepository,
	companyRepo repository.CompanyRepository,
	secureLinkRepo repository.SecureLinkRepository,
	mailService MailService,
	audit *AuditHelpers,
	inviteBaseURL string,
) EmployeeService {
	return &employeeService{
		profileRepo:    profileRepo,
		companyRepo:    companyRepo,
		secureLinkRepo: secureLinkRepo,
		mailService:    mailService,
		audit:          audit,
		inviteBaseURL:  inviteBaseURL,
	}
}

var _ EmployeeService = (*employeeService)(nil)

// CreateEmployee creates a single employee profile
func (s *employeeService) CreateEmployee(ctx context.Context, companyID primitive.ObjectID, input EmployeeInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", models.ErrInvalidInput)
	}

	for _, r := range input.Roles {
		if !r.IsValid() {
			return nil, models.ErrInvalidRole
		}
	}

	profile := &models.Profile{
		Email:     email,
		FullName:  strings.TrimSpace(input.FullName),
		CompanyID: &companyID,
		Roles:     input.Roles,
		Language:  input.Language,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// BulkCreate creates employees sequentially, collecting one error line per
// failed row and keeping every successful row persisted.
// #IMPLEMENTATION_DECISION: Sequential, not batched: the unique email index
// decides duplicates and each row needs its own verdict.
func (s *employeeService) BulkCreate(ctx context.Context, companyID primitive.ObjectID, inputs []EmployeeInput, actorUserID primitive.ObjectID, requestID string) (*BulkUploadResult, error) {
	result := &BulkUploadResult{
		Created: []models.Profile{},
		Errors:  []string{},
	}

	for _, input := range inputs {
		profile, err := s.CreateEmployee(ctx, companyID, input)
		if err != nil {
			result.Errors = append(result.Errors, bulkErrorLine(input.Email, err))
			continue
		}
		result.Created = append(result.Created, *profile)

		if s.audit != nil {
			s.audit.LogEmployeeInvite(actorUserID, &companyID, profile.ID, profile.Email, requestID)
		}
	}

	log.Printf("Bulk upload for company %s: %d created, %d failed", companyID.Hex(), len(result.Created), len(result.Errors))
	return result, nil
}

// bulkErrorLine formats one per-row upload error
func bulkErrorLine(email string, err error) string {
	switch {
	case errors.Is(err, models.ErrEmailAlreadyExists):
		return fmt.Sprintf("%s: Usuario ya existe", email)
	case errors.Is(err, models.ErrInvalidInput):
		return fmt.Sprintf("%s: Email inválido", email)
	case errors.Is(err, models.ErrInvalidRole):
		return fmt.Sprintf("%s: Rol inválido", email)
	default:
		return fmt.Sprintf("%s: %v", email, err)
	}
}

// InviteEmployee sends an invitation mail with a secure link
func (s *employeeService) InviteEmployee(ctx context.Context, profileID, actorUserID primitive.ObjectID, requestID string) error {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return err
	}

	companyName := "Bs360"
	var branding *models.Branding
	if profile.CompanyID != nil {
		company, err := s.companyRepo.GetByID(ctx, *profile.CompanyID)
		if err == nil {
			companyName = company.Name
			if company.HasBranding() {
				branding = &company.Branding
			}
		}
	}

	identifier, err := generateSecureIdentifier()
	if err != nil {
		return fmt.Errorf("failed to generate invitation identifier: %w", err)
	}

	link := &models.SecureLink{
		SecureIdentifier: identifier,
		Type:             models.SecureLinkTypeInvitation,
		Email:            profile.Email,
		UserID:           &profile.ID,
		CompanyID:        profile.CompanyID,
	}
	if err := s.secureLinkRepo.Create(ctx, link); err != nil {
		return fmt.Errorf("failed to create invitation link: %w", err)
	}

	inviteLink := fmt.Sprintf("%s/auth/invite/%s", s.inviteBaseURL, identifier)
	if err := s.mailService.SendInvitation(ctx, profile.Email, companyName, inviteLink, branding); err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}

	if s.audit != nil {
		s.audit.LogEmployeeInvite(actorUserID, profile.CompanyID, profile.ID, profile.Email, requestID)
	}

	return nil
}

// GetEmployee returns an employee profile
func (s *employeeService) GetEmployee(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// UpdateEmployee updates mutable profile fields
func (s *employeeService) UpdateEmployee(ctx context.Context, id primitive.ObjectID, fullName, language, timezone string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fullName != "" {
		profile.FullName = fullName
	}
	if language != "" {
		profile.Language = language
	}
	if timezone != "" {
		profile.Timezone = timezone
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// DeactivateEmployee soft deletes an employee profile
func (s *employeeService) DeactivateEmployee(ctx context.Context, id primitive.ObjectID) error {
	return s.profileRepo.SoftDelete(ctx, id)
}

// ListEmployees lists employees in a company
func (s *employeeService) ListEmployees(ctx context.Context, companyID primitive.ObjectID, includeInactive bool, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Profile], error) {
	return s.profileRepo.ListByCompany(ctx, companyID, includeInactive, opts)
}
