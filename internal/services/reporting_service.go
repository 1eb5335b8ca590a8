package services

import (
	"context"
	"sync"
	"time"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyDashboard aggregates company-level wellbeing metrics
type CompanyDashboard struct {
	CompanyID        primitive.ObjectID `json:"company_id"`
	EmployeeCount    int64              `json:"employee_count"`
	ResultCount      int64              `json:"result_count"`
	AverageScore     float64            `json:"average_score"`
	DomainAverages   map[string]float64 `json:"domain_averages"`
	ParticipationPct float64            `json:"participation_pct"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// ReportingService computes aggregate wellbeing reports for companies
type ReportingService interface {
	// CompanyDashboard computes the company dashboard, optionally limited
	// to results created since the given time
	CompanyDashboard(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (*CompanyDashboard, error)

	// CompanyResults lists raw results for a company within a date range
	CompanyResults(ctx context.Context, companyID primitive.ObjectID, since *time.Time, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error)

	// SurveyResults lists results for one survey within a company
	SurveyResults(ctx context.Context, companyID, surveyID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error)
}

// reportingService implements ReportingService
type reportingService struct {
	resultRepo  repository.ResultRepository
	profileRepo repository.ProfileRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(resultRepo repository.ResultRepository, profileRepo repository.ProfileRepository) ReportingService {
	return &reportingService{
		resultRepo:  resultRepo,
		profileRepo: profileRepo,
	}
}

var _ ReportingService = (*reportingService)(nil)

// CompanyDashboard gathers the dashboard aggregates concurrently.
// #IMPLEMENTATION_DECISION: The four aggregates are independent read-only
// queries, so they fan out in parallel and the first error wins.
func (s *reportingService) CompanyDashboard(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (*CompanyDashboard, error) {
	dashboard := &CompanyDashboard{
		CompanyID:   companyID,
		GeneratedAt: time.Now().UTC(),
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(4)

	go func() {
		defer wg.Done()
		count, err := s.profileRepo.CountByCompany(ctx, companyID)
		if err != nil {
			errCh <- err
			return
		}
		dashboard.EmployeeCount = count
	}()

	go func() {
		defer wg.Done()
		count, err := s.resultRepo.CountByCompany(ctx, companyID)
		if err != nil {
			errCh <- err
			return
		}
		dashboard.ResultCount = count
	}()

	go func() {
		defer wg.Done()
		avg, err := s.resultRepo.AverageGlobalScoreByCompany(ctx, companyID, since)
		if err != nil {
			errCh <- err
			return
		}
		dashboard.AverageScore = avg
	}()

	go func() {
		defer wg.Done()
		averages, err := s.resultRepo.DomainAveragesByCompany(ctx, companyID, since)
		if err != nil {
			errCh <- err
			return
		}
		dashboard.DomainAverages = averages
	}()

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, err
	}

	if dashboard.DomainAverages == nil {
		dashboard.DomainAverages = map[string]float64{}
	}
	if dashboard.EmployeeCount > 0 {
		dashboard.ParticipationPct = float64(dashboard.ResultCount) / float64(dashboard.EmployeeCount) * 100
	}

	return dashboard, nil
}

// CompanyResults lists raw results for a company within a date range
func (s *reportingService) CompanyResults(ctx context.Context, companyID primitive.ObjectID, since *time.Time, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error) {
	return s.resultRepo.ListByCompany(ctx, companyID, since, opts)
}

// SurveyResults lists results for one survey within a company
func (s *reportingService) SurveyResults(ctx context.Context, companyID, surveyID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error) {
	return s.resultRepo.ListByCompanyAndSurvey(ctx, companyID, surveyID, opts)
}
