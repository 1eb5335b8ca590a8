// Package repository defines interfaces for data access and their MongoDB implementations
// #ORM_PATTERN: Repository pattern with interfaces for testability and abstraction
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ebi360/bs360_backend/internal/models"
)

// PaginationOptions contains pagination parameters
type PaginationOptions struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir int // 1 for ascending, -1 for descending
}

// DefaultPaginationOptions returns default pagination settings
// #DATA_ASSUMPTION: Pagination defaults to 20 items per page
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{
		Page:    1,
		Limit:   20,
		SortBy:  "created_at",
		SortDir: -1,
	}
}

// PaginatedResult contains paginated query results
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// CompanyRepository defines operations for companies
// #QUERY_INTERFACE: Company data access patterns
type CompanyRepository interface {
	// Create creates a new company
	Create(ctx context.Context, company *models.Company) error

	// GetByID finds a company by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error)

	// GetBySlug finds a company by slug
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)

	// Update updates a company
	Update(ctx context.Context, company *models.Company) error

	// SoftDelete soft deletes a company
	SoftDelete(ctx context.Context, id primitive.ObjectID) error

	// List lists companies with optional plan filtering and pagination
	List(ctx context.Context, plan *models.SubscriptionPlan, opts PaginationOptions) (*PaginatedResult[models.Company], error)

	// Count counts active companies
	Count(ctx context.Context) (int64, error)
}

// ProfileRepository defines operations for employee profiles
// #QUERY_INTERFACE: Profile data access patterns
type ProfileRepository interface {
	// Create creates a new profile
	Create(ctx context.Context, profile *models.Profile) error

	// GetByID finds a profile by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)

	// GetByEmail finds a profile by email
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)

	// Update updates a profile
	Update(ctx context.Context, profile *models.Profile) error

	// UpdateRoles replaces the roles set and active role of a profile
	UpdateRoles(ctx context.Context, id primitive.ObjectID, roles []models.Role, activeRole models.Role) error

	// SoftDelete soft deletes a profile
	SoftDelete(ctx context.Context, id primitive.ObjectID) error

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error

	// ListByCompany lists profiles in a company
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, includeInactive bool, opts PaginationOptions) (*PaginatedResult[models.Profile], error)

	// CountByCompany counts active profiles in a company
	CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

// SurveyRepository defines operations for survey definitions
// #QUERY_INTERFACE: Survey data access patterns
type SurveyRepository interface {
	// Create creates a new survey
	Create(ctx context.Context, survey *models.Survey) error

	// GetByID finds a survey by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Survey, error)

	// GetByCode finds a survey by its unique code
	GetByCode(ctx context.Context, code string) (*models.Survey, error)

	// Update updates a survey
	Update(ctx context.Context, survey *models.Survey) error

	// Delete deletes a survey (draft only)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// List lists surveys with optional status filtering and pagination
	List(ctx context.Context, status *models.SurveyStatus, opts PaginationOptions) (*PaginatedResult[models.Survey], error)

	// ListActive lists all active surveys
	ListActive(ctx context.Context) ([]models.Survey, error)
}

// QuestionRepository defines operations for survey questions
// #QUERY_INTERFACE: Question data access patterns
type QuestionRepository interface {
	// Create creates a new question
	Create(ctx context.Context, question *models.Question) error

	// CreateMany creates all questions of a survey in one write
	CreateMany(ctx context.Context, questions []models.Question) error

	// GetByID finds a question by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error)

	// Update updates a question
	Update(ctx context.Context, question *models.Question) error

	// ListBySurvey lists all questions for a survey ordered by number
	ListBySurvey(ctx context.Context, surveyID primitive.ObjectID) ([]models.Question, error)

	// DeleteBySurvey deletes all questions for a survey
	DeleteBySurvey(ctx context.Context, surveyID primitive.ObjectID) (int64, error)

	// CountBySurvey counts questions for a survey
	CountBySurvey(ctx context.Context, surveyID primitive.ObjectID) (int64, error)
}

// ResultRepository defines operations for computed survey results
// #IMPLEMENTATION_DECISION: Results are append-only history, no update or delete operations
type ResultRepository interface {
	// Create creates a new result
	Create(ctx context.Context, result *models.Result) error

	// GetByID finds a result by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Result, error)

	// GetLatestByUser finds the most recent result for a user
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Result, error)

	// ListByUser lists results for a user, newest first
	ListByUser(ctx context.Context, userID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Result], error)

	// ListByCompany lists results for a company within a date range
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time, opts PaginationOptions) (*PaginatedResult[models.Result], error)

	// ListByCompanyAndSurvey lists results for one survey within a company
	ListByCompanyAndSurvey(ctx context.Context, companyID, surveyID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Result], error)

	// CountByUser counts results for a user
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)

	// CountByCompany counts results for a company
	CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)

	// AverageGlobalScoreByCompany computes the mean global score for a company
	AverageGlobalScoreByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (float64, error)

	// DomainAveragesByCompany computes per-domain mean scores for a company
	DomainAveragesByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (map[string]float64, error)
}

// SecureLinkRepository defines operations for secure links
// #QUERY_INTERFACE: Secure link data access patterns
type SecureLinkRepository interface {
	// Create creates a new secure link
	Create(ctx context.Context, link *models.SecureLink) error

	// GetByIdentifier finds a secure link by its identifier
	GetByIdentifier(ctx context.Context, identifier string) (*models.SecureLink, error)

	// MarkAsUsed marks a secure link as used
	MarkAsUsed(ctx context.Context, id primitive.ObjectID) error

	// Invalidate invalidates a secure link
	Invalidate(ctx context.Context, id primitive.ObjectID) error

	// InvalidateAllForEmail invalidates all links for an email
	InvalidateAllForEmail(ctx context.Context, email string) error

	// CountRecentByEmail counts recent links for rate limiting
	CountRecentByEmail(ctx context.Context, email string, withinMinutes int) (int64, error)

	// DeleteExpired deletes expired links (TTL fallback)
	DeleteExpired(ctx context.Context) (int64, error)
}
