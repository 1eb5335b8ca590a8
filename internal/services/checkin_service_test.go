package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"github.com/ebi360/bs360_backend/internal/scoring"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeSurveyRepo is an in-memory SurveyRepository for testing
type fakeSurveyRepo struct {
	surveys map[primitive.ObjectID]*models.Survey
}

func newFakeSurveyRepo(surveys ...*models.Survey) *fakeSurveyRepo {
	repo := &fakeSurveyRepo{surveys: make(map[primitive.ObjectID]*models.Survey)}
	for _, s := range surveys {
		repo.surveys[s.ID] = s
	}
	return repo
}

func (f *fakeSurveyRepo) Create(ctx context.Context, survey *models.Survey) error {
	for _, s := range f.surveys {
		if s.Code == survey.Code {
			return models.ErrSurveyCodeExists
		}
	}
	survey.BeforeCreate()
	f.surveys[survey.ID] = survey
	return nil
}

func (f *fakeSurveyRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Survey, error) {
	s, ok := f.surveys[id]
	if !ok {
		return nil, models.ErrSurveyNotFound
	}
	return s, nil
}

func (f *fakeSurveyRepo) GetByCode(ctx context.Context, code string) (*models.Survey, error) {
	for _, s := range f.surveys {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, models.ErrSurveyNotFound
}

func (f *fakeSurveyRepo) Update(ctx context.Context, survey *models.Survey) error {
	f.surveys[survey.ID] = survey
	return nil
}

func (f *fakeSurveyRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	s, ok := f.surveys[id]
	if !ok {
		return models.ErrSurveyNotFound
	}
	if s.Status != models.SurveyStatusDraft {
		return models.ErrSurveyNotDraft
	}
	delete(f.surveys, id)
	return nil
}

func (f *fakeSurveyRepo) List(ctx context.Context, status *models.SurveyStatus, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Survey], error) {
	return &repository.PaginatedResult[models.Survey]{}, nil
}

func (f *fakeSurveyRepo) ListActive(ctx context.Context) ([]models.Survey, error) {
	var active []models.Survey
	for _, s := range f.surveys {
		if s.IsActive() {
			active = append(active, *s)
		}
	}
	return active, nil
}

// fakeQuestionRepo is an in-memory QuestionRepository for testing
type fakeQuestionRepo struct {
	questions []models.Question
}

func (f *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	f.questions = append(f.questions, *question)
	return nil
}

func (f *fakeQuestionRepo) CreateMany(ctx context.Context, questions []models.Question) error {
	f.questions = append(f.questions, questions...)
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	return nil, models.ErrQuestionNotFound
}

func (f *fakeQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	return nil
}

func (f *fakeQuestionRepo) ListBySurvey(ctx context.Context, surveyID primitive.ObjectID) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		if q.SurveyID == surveyID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) DeleteBySurvey(ctx context.Context, surveyID primitive.ObjectID) (int64, error) {
	var kept []models.Question
	var removed int64
	for _, q := range f.questions {
		if q.SurveyID == surveyID {
			removed++
			continue
		}
		kept = append(kept, q)
	}
	f.questions = kept
	return removed, nil
}

func (f *fakeQuestionRepo) CountBySurvey(ctx context.Context, surveyID primitive.ObjectID) (int64, error) {
	n, _ := f.ListBySurvey(ctx, surveyID)
	return int64(len(n)), nil
}

// fakeResultRepo is an in-memory ResultRepository for testing
type fakeResultRepo struct {
	results []*models.Result
	failing bool
}

func (f *fakeResultRepo) Create(ctx context.Context, result *models.Result) error {
	if f.failing {
		return errors.New("write unavailable")
	}
	result.BeforeCreate()
	f.results = append(f.results, result)
	return nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Result, error) {
	for _, r := range f.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, models.ErrResultNotFound
}

func (f *fakeResultRepo) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Result, error) {
	var latest *models.Result
	for _, r := range f.results {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, models.ErrResultNotFound
	}
	return latest, nil
}

func (f *fakeResultRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error) {
	var items []models.Result
	for _, r := range f.results {
		if r.UserID == userID {
			items = append(items, *r)
		}
	}
	return &repository.PaginatedResult[models.Result]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeResultRepo) ListByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error) {
	var items []models.Result
	for _, r := range f.results {
		if r.CompanyID != nil && *r.CompanyID == companyID {
			items = append(items, *r)
		}
	}
	return &repository.PaginatedResult[models.Result]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeResultRepo) ListByCompanyAndSurvey(ctx context.Context, companyID, surveyID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Result], error) {
	return &repository.PaginatedResult[models.Result]{}, nil
}

func (f *fakeResultRepo) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, _ := f.ListByUser(ctx, userID, repository.PaginationOptions{})
	return res.TotalCount, nil
}

func (f *fakeResultRepo) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	res, _ := f.ListByCompany(ctx, companyID, nil, repository.PaginationOptions{})
	return res.TotalCount, nil
}

func (f *fakeResultRepo) AverageGlobalScoreByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (float64, error) {
	var sum float64
	var n int
	for _, r := range f.results {
		if r.CompanyID != nil && *r.CompanyID == companyID {
			sum += r.GlobalScore
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeResultRepo) DomainAveragesByCompany(ctx context.Context, companyID primitive.ObjectID, since *time.Time) (map[string]float64, error) {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range f.results {
		if r.CompanyID == nil || *r.CompanyID != companyID {
			continue
		}
		for domain, score := range r.DomainScores {
			sums[domain] += score
			counts[domain]++
		}
	}
	averages := make(map[string]float64, len(sums))
	for domain, sum := range sums {
		averages[domain] = sum / float64(counts[domain])
	}
	return averages, nil
}

// activeSurveyWithQuestions builds an active two-domain survey and its questions
func activeSurveyWithQuestions() (*models.Survey, []models.Question) {
	survey := &models.Survey{
		ID:   primitive.NewObjectID(),
		Code: "BS360-BASE",
		Name: "Encuesta Base",
		Type: models.SurveyTypeBase,
		Algorithm: models.Algorithm{
			ScoringMethod: models.ScoringMethodWeightedAverage,
			Domains: []models.AlgorithmDomain{
				{Name: "Físico", Weight: 1, Questions: []int{1, 2}},
				{Name: "Emocional", Weight: 1, Questions: []int{3}},
			},
		},
		Status: models.SurveyStatusActive,
	}

	questions := []models.Question{
		{SurveyID: survey.ID, Number: 1, Domain: "Físico", Text: "¿Duermes bien?", Weight: 1, Severity: 1},
		{SurveyID: survey.ID, Number: 2, Domain: "Físico", Text: "¿Haces ejercicio?", Weight: 1, Severity: 1},
		{SurveyID: survey.ID, Number: 3, Domain: "Emocional", Text: "¿Te sientes tranquilo?", Weight: 1, Severity: 1},
	}

	return survey, questions
}

func TestCheckInService_SubmitCheckIn_Success(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	questionRepo := &fakeQuestionRepo{questions: questions}
	resultRepo := &fakeResultRepo{}
	svc := NewCheckInService(newFakeSurveyRepo(survey), questionRepo, resultRepo, nil)

	userID := primitive.NewObjectID()
	companyID := primitive.NewObjectID()

	outcome, err := svc.SubmitCheckIn(context.Background(), userID, &companyID, survey.ID, map[int]int{1: 5, 2: 5, 3: 5})
	if err != nil {
		t.Fatalf("SubmitCheckIn() error = %v", err)
	}
	if outcome.Result.GlobalScore != 10 {
		t.Errorf("GlobalScore = %v, want 10", outcome.Result.GlobalScore)
	}
	if len(resultRepo.results) != 1 {
		t.Fatalf("persisted results = %d, want 1", len(resultRepo.results))
	}
	if outcome.Result.AnswerCount() != 3 {
		t.Errorf("AnswerCount() = %d, want 3", outcome.Result.AnswerCount())
	}
	if len(outcome.Insights) != 2 {
		t.Fatalf("insights = %d, want one per domain", len(outcome.Insights))
	}
	// Sorted by domain name
	if outcome.Insights[0].Domain != "Emocional" || outcome.Insights[1].Domain != "Físico" {
		t.Errorf("insight order = [%s, %s], want sorted", outcome.Insights[0].Domain, outcome.Insights[1].Domain)
	}
	for _, insight := range outcome.Insights {
		if insight.Level != scoring.LevelHigh {
			t.Errorf("domain %s level = %v, want high", insight.Domain, insight.Level)
		}
		if insight.Message == "" {
			t.Errorf("domain %s has no recommendation message", insight.Domain)
		}
	}
}

func TestCheckInService_SubmitCheckIn_EmptyAnswers(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, &fakeResultRepo{}, nil)

	_, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{})
	if !errors.Is(err, models.ErrEmptyAnswerSet) {
		t.Errorf("SubmitCheckIn() error = %v, want ErrEmptyAnswerSet", err)
	}
}

func TestCheckInService_SubmitCheckIn_SurveyNotActive(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	survey.Status = models.SurveyStatusDraft
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, &fakeResultRepo{}, nil)

	_, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{1: 3})
	if !errors.Is(err, models.ErrSurveyNotActive) {
		t.Errorf("SubmitCheckIn() error = %v, want ErrSurveyNotActive", err)
	}
}

func TestCheckInService_SubmitCheckIn_OutOfRangeValue(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	resultRepo := &fakeResultRepo{}
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, resultRepo, nil)

	_, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{1: 6})
	if !errors.Is(err, models.ErrInvalidAnswerValue) {
		t.Errorf("SubmitCheckIn() error = %v, want ErrInvalidAnswerValue", err)
	}
	if len(resultRepo.results) != 0 {
		t.Error("invalid submission must not persist anything")
	}
}

func TestCheckInService_SubmitCheckIn_UnknownQuestionNumber(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, &fakeResultRepo{}, nil)

	_, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{99: 3})
	if !errors.Is(err, models.ErrUnknownQuestionNumber) {
		t.Errorf("SubmitCheckIn() error = %v, want ErrUnknownQuestionNumber", err)
	}
}

func TestCheckInService_SubmitCheckIn_PartialAnswersScoreAnsweredOnly(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, &fakeResultRepo{}, nil)

	// Only the Emocional question answered; Físico scores 0 and drags the mean
	outcome, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{3: 5})
	if err != nil {
		t.Fatalf("SubmitCheckIn() error = %v", err)
	}
	if got, ok := outcome.Result.DomainScore("Emocional"); !ok || got != 10 {
		t.Errorf("Emocional score = %v, want 10", got)
	}
	if got, ok := outcome.Result.DomainScore("Físico"); !ok || got != 0 {
		t.Errorf("Físico score = %v, want 0", got)
	}
	if outcome.Result.GlobalScore != 5 {
		t.Errorf("GlobalScore = %v, want 5", outcome.Result.GlobalScore)
	}
}

func TestCheckInService_SubmitCheckIn_InsightsEnrichment(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	insights := &MockInsightsClient{MockMessage: "Narrativa enriquecida"}
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, &fakeResultRepo{}, insights)

	outcome, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{1: 4, 2: 4, 3: 4})
	if err != nil {
		t.Fatalf("SubmitCheckIn() error = %v", err)
	}
	for _, insight := range outcome.Insights {
		if insight.Message != "Narrativa enriquecida" {
			t.Errorf("domain %s message = %q, want enriched narrative", insight.Domain, insight.Message)
		}
	}
}

func TestCheckInService_SubmitCheckIn_InsightsFailureFallsBack(t *testing.T) {
	survey, questions := activeSurveyWithQuestions()
	insights := &MockInsightsClient{Fail: true}
	svc := NewCheckInService(newFakeSurveyRepo(survey), &fakeQuestionRepo{questions: questions}, &fakeResultRepo{}, insights)

	outcome, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), nil, survey.ID, map[int]int{1: 5, 2: 5, 3: 5})
	if err != nil {
		t.Fatalf("SubmitCheckIn() error = %v", err)
	}
	for _, insight := range outcome.Insights {
		if insight.Message == "" {
			t.Errorf("domain %s lost its fallback recommendation", insight.Domain)
		}
	}
}
