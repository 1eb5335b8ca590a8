package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"github.com/ebi360/bs360_backend/internal/scoring"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DomainInsight is the per-domain outcome of a check-in: the score, its level,
// and the recommendation narrative shown to the employee.
type DomainInsight struct {
	Domain      string        `json:"domain"`
	Score       float64       `json:"score"`
	Level       scoring.Level `json:"level"`
	Message     string        `json:"message,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// CheckInOutcome bundles the persisted result with its resolved insights
type CheckInOutcome struct {
	Result   *models.Result  `json:"result"`
	Insights []DomainInsight `json:"insights"`
}

// CheckInService handles survey completion: answer validation, scoring,
// result persistence, and recommendation resolution.
type CheckInService interface {
	// SubmitCheckIn validates and scores an answer set against an active
	// survey and persists an immutable result.
	SubmitCheckIn(ctx context.Context, userID primitive.ObjectID, companyID *primitive.ObjectID, surveyID primitive.ObjectID, answers map[int]int) (*CheckInOutcome, error)

	// GetResult returns a single result by ID
	GetResult(ctx context.Context, id primitive.ObjectID) (*models.Result, error)

	// GetLatestResult returns the most recent result for a user
	GetLatestResult(ctx context.Context, userID primitive.ObjectID) (*models.Result, error)

	// ListResults lists a user's result history
	ListResults(ctx context.Context, userID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error)
}

// checkInService implements CheckInService
type checkInService struct {
	surveyRepo   repository.SurveyRepository
	questionRepo repository.QuestionRepository
	resultRepo   repository.ResultRepository
	insights     InsightsClient
}

// NewCheckInService creates a new check-in service.
// insights may be nil; the deterministic recommendation table then serves
// every response.
func NewCheckInService(
	surveyRepo repository.SurveyRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.ResultRepository,
	insights InsightsClient,
) CheckInService {
	return &checkInService{
		surveyRepo:   surveyRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		insights:     insights,
	}
}

var _ CheckInService = (*checkInService)(nil)

// SubmitCheckIn validates, scores, and persists one completed answer set.
// #BUSINESS_RULE: Results are append-only; concurrent submissions by the same
// user both persist and reporting reads the latest by created_at.
func (s *checkInService) SubmitCheckIn(ctx context.Context, userID primitive.ObjectID, companyID *primitive.ObjectID, surveyID primitive.ObjectID, answers map[int]int) (*CheckInOutcome, error) {
	if len(answers) == 0 {
		return nil, models.ErrEmptyAnswerSet
	}

	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive() {
		return nil, models.ErrSurveyNotActive
	}

	questions, err := s.questionRepo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.Number] = true
	}

	for number, value := range answers {
		if !known[number] {
			return nil, fmt.Errorf("question %d: %w", number, models.ErrUnknownQuestionNumber)
		}
		if !models.IsValidAnswerValue(value) {
			return nil, fmt.Errorf("question %d: %w", number, models.ErrInvalidAnswerValue)
		}
	}

	scores := scoring.ComputeScores(answers, questions, survey.Algorithm)

	result := &models.Result{
		UserID:       userID,
		SurveyID:     surveyID,
		CompanyID:    companyID,
		GlobalScore:  scores.GlobalScore,
		DomainScores: scores.DomainScores,
	}
	result.SetAnswers(answers)

	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, err
	}

	return &CheckInOutcome{
		Result:   result,
		Insights: s.resolveInsights(ctx, scores.DomainScores, survey.Algorithm.Recommendations),
	}, nil
}

// resolveInsights resolves the recommendation for every scored domain.
// #INTEGRATION_POINT: The insights API enriches the narrative when reachable;
// any failure degrades silently to the deterministic table.
func (s *checkInService) resolveInsights(ctx context.Context, domainScores map[string]float64, surveyRecommendations map[string]string) []DomainInsight {
	domains := make([]string, 0, len(domainScores))
	for domain := range domainScores {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	insights := make([]DomainInsight, 0, len(domains))
	for _, domain := range domains {
		score := domainScores[domain]
		insight := DomainInsight{
			Domain: domain,
			Score:  score,
			Level:  scoring.LevelForScore(score),
		}

		if rec := scoring.Resolve(domain, score, surveyRecommendations); rec != nil {
			insight.Message = rec.Message
			insight.Suggestions = rec.Suggestions
		}

		if s.insights != nil {
			enriched, err := s.insights.EnrichRecommendation(ctx, InsightRequest{
				Domain:      domain,
				Score:       score,
				Level:       string(insight.Level),
				BaseMessage: insight.Message,
				Language:    "es",
			})
			if err != nil {
				log.Printf("Insights enrichment failed for domain %s, using table: %v", domain, err)
			} else {
				insight.Message = enriched.Message
				if len(enriched.Suggestions) > 0 {
					insight.Suggestions = enriched.Suggestions
				}
			}
		}

		insights = append(insights, insight)
	}

	return insights
}

// GetResult returns a single result by ID
func (s *checkInService) GetResult(ctx context.Context, id primitive.ObjectID) (*models.Result, error) {
	return s.resultRepo.GetByID(ctx, id)
}

// GetLatestResult returns the most recent result for a user
func (s *checkInService) GetLatestResult(ctx context.Context, userID primitive.ObjectID) (*models.Result, error) {
	return s.resultRepo.GetLatestByUser(ctx, userID)
}

// ListResults lists a user's result history
func (s *checkInService) ListResults(ctx context.Context, userID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error) {
	return s.resultRepo.ListByUser(ctx, userID, opts)
}
