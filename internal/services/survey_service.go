package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ebi360/bs360_backend/internal/importer"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveyService handles survey definition lifecycle: import, activation,
// archival, and catalog queries.
type SurveyService interface {
	// ImportWorkbook parses and validates an XLSX workbook and persists the
	// survey as a draft with its questions. Validation problems are collected
	// and returned as a list; nothing is persisted when the list is non-empty.
	ImportWorkbook(ctx context.Context, r io.Reader, actorUserID primitive.ObjectID, requestID string) (*models.Survey, []string, error)

	// GetSurvey returns a survey with its questions
	GetSurvey(ctx context.Context, id primitive.ObjectID) (*models.Survey, []models.Question, error)

	// GetByCode returns a survey by its unique code
	GetByCode(ctx context.Context, code string) (*models.Survey, error)

	// Activate promotes a draft survey to active
	Activate(ctx context.Context, id, actorUserID primitive.ObjectID, requestID string) (*models.Survey, error)

	// Archive freezes an active survey from new check-ins
	Archive(ctx context.Context, id, actorUserID primitive.ObjectID, requestID string) (*models.Survey, error)

	// DeleteDraft deletes a draft survey and its questions
	DeleteDraft(ctx context.Context, id primitive.ObjectID) error

	// List lists surveys with optional status filtering
	List(ctx context.Context, status *models.SurveyStatus, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Survey], error)

	// ListActive lists all active surveys
	ListActive(ctx context.Context) ([]models.Survey, error)
}

// surveyService implements SurveyService
type surveyService struct {
	surveyRepo   repository.SurveyRepository
	questionRepo repository.QuestionRepository
	audit        *AuditHelpers
}

// NewSurveyService creates a new survey service
func NewSurveyService(
	surveyRepo repository.SurveyRepository,
	questionRepo repository.QuestionRepository,
	audit *AuditHelpers,
) SurveyService {
	return &surveyService{
		surveyRepo:   surveyRepo,
		questionRepo: questionRepo,
		audit:        audit,
	}
}

var _ SurveyService = (*surveyService)(nil)

// ImportWorkbook parses, validates, and persists a survey workbook.
// #BUSINESS_RULE: Validation collects ALL problems before reporting, so an
// analyst fixes the workbook in one round trip instead of error-by-error.
func (s *surveyService) ImportWorkbook(ctx context.Context, r io.Reader, actorUserID primitive.ObjectID, requestID string) (*models.Survey, []string, error) {
	data, err := importer.ParseWorkbook(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse workbook: %w", err)
	}

	if validationErrs := importer.Validate(data); len(validationErrs) > 0 {
		return nil, validationErrs, nil
	}

	survey := &models.Survey{
		Code:        data.Metadata.Code,
		Name:        data.Metadata.Name,
		Description: data.Metadata.Description,
		Version:     data.Metadata.Version,
		Type:        data.Metadata.SurveyType,
		Country:     data.Metadata.Country,
		Regulation:  data.Metadata.Regulation,
		IsBase:      data.Metadata.IsBase,
		IsMandatory: data.Metadata.IsMandatory,
		Algorithm:   data.Algorithm,
	}
	survey.QuestionCount = len(data.Questions)

	if err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, nil, err
	}

	questions := make([]models.Question, len(data.Questions))
	copy(questions, data.Questions)
	for i := range questions {
		questions[i].SurveyID = survey.ID
	}

	if err := s.questionRepo.CreateMany(ctx, questions); err != nil {
		// Orphaned survey doc is cleaned up so a re-import of the same code succeeds
		if delErr := s.surveyRepo.Delete(ctx, survey.ID); delErr != nil {
			log.Printf("Warning: failed to clean up survey %s after question insert failure: %v", survey.Code, delErr)
		}
		return nil, nil, fmt.Errorf("failed to persist questions: %w", err)
	}

	log.Printf("Imported survey %s (v%d) with %d questions", survey.Code, survey.Version, len(questions))
	return survey, nil, nil
}

// GetSurvey returns a survey with its questions
func (s *surveyService) GetSurvey(ctx context.Context, id primitive.ObjectID) (*models.Survey, []models.Question, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.questionRepo.ListBySurvey(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return survey, questions, nil
}

// GetByCode returns a survey by its unique code
func (s *surveyService) GetByCode(ctx context.Context, code string) (*models.Survey, error) {
	return s.surveyRepo.GetByCode(ctx, code)
}

// Activate promotes a draft survey to active
func (s *surveyService) Activate(ctx context.Context, id, actorUserID primitive.ObjectID, requestID string) (*models.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := survey.Activate(); err != nil {
		return nil, err
	}

	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogSurveyActivate(actorUserID, survey.ID, survey.Code, requestID)
	}

	return survey, nil
}

// Archive freezes an active survey from new check-ins
func (s *surveyService) Archive(ctx context.Context, id, actorUserID primitive.ObjectID, requestID string) (*models.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := survey.Archive(); err != nil {
		return nil, err
	}

	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogSurveyArchive(actorUserID, survey.ID, survey.Code, requestID)
	}

	return survey, nil
}

// DeleteDraft deletes a draft survey and its questions
func (s *surveyService) DeleteDraft(ctx context.Context, id primitive.ObjectID) error {
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.questionRepo.DeleteBySurvey(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey questions: %w", err)
	}

	return nil
}

// List lists surveys with optional status filtering
func (s *surveyService) List(ctx context.Context, status *models.SurveyStatus, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Survey], error) {
	return s.surveyRepo.List(ctx, status, opts)
}

// ListActive lists all active surveys
func (s *surveyService) ListActive(ctx context.Context) ([]models.Survey, error) {
	return s.surveyRepo.ListActive(ctx)
}
