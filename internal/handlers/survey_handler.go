package handlers

import (
	"net/http"
	"strings"

	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/services"
	"github.com/gin-gonic/gin"
)

// maxWorkbookSize bounds uploaded survey workbooks (10 MiB)
const maxWorkbookSize = 10 << 20

// SurveyHandler handles survey definition endpoints
type SurveyHandler struct {
	surveyService services.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveyService services.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

// SurveyResponse represents survey data in API responses
type SurveyResponse struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Version       int              `json:"version"`
	Type          string           `json:"type"`
	Country       string           `json:"country,omitempty"`
	Regulation    string           `json:"regulation,omitempty"`
	IsBase        bool             `json:"is_base"`
	IsMandatory   bool             `json:"is_mandatory"`
	Status        string           `json:"status"`
	QuestionCount int              `json:"question_count"`
	Algorithm     models.Algorithm `json:"algorithm"`
}

// ToSurveyResponse converts a Survey model to SurveyResponse
func ToSurveyResponse(survey *models.Survey) SurveyResponse {
	return SurveyResponse{
		ID:            survey.ID.Hex(),
		Code:          survey.Code,
		Name:          survey.Name,
		Description:   survey.Description,
		Version:       survey.Version,
		Type:          strings.ToLower(string(survey.Type)),
		Country:       survey.Country,
		Regulation:    survey.Regulation,
		IsBase:        survey.IsBase,
		IsMandatory:   survey.IsMandatory,
		Status:        strings.ToLower(string(survey.Status)),
		QuestionCount: survey.QuestionCount,
		Algorithm:     survey.Algorithm,
	}
}

// ImportSurveyResponse reports the result of a workbook import
type ImportSurveyResponse struct {
	Survey *SurveyResponse `json:"survey,omitempty"`
	Errors []string        `json:"errors,omitempty"`
}

// ImportSurvey handles POST /api/v1/surveys/import
// @Summary Import a survey workbook
// @Description Parses and validates an XLSX survey workbook. All validation problems are collected and returned together; nothing persists unless the workbook is clean.
// @Tags Surveys
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Survey XLSX workbook"
// @Success 201 {object} ImportSurveyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ImportSurveyResponse
// @Router /surveys/import [post]
func (h *SurveyHandler) ImportSurvey(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Workbook file is required",
		})
		return
	}
	if fileHeader.Size > maxWorkbookSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Workbook exceeds the size limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Could not read the uploaded file",
		})
		return
	}
	defer file.Close()

	userID, _ := middleware.GetUserID(c)
	survey, validationErrs, err := h.surveyService.ImportWorkbook(c.Request.Context(), file, userID, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}
	if len(validationErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, ImportSurveyResponse{Errors: validationErrs})
		return
	}

	resp := ToSurveyResponse(survey)
	c.JSON(http.StatusCreated, ImportSurveyResponse{Survey: &resp})
}

// QuestionResponse represents a question in API responses
type QuestionResponse struct {
	ID             string  `json:"id"`
	Number         int     `json:"number"`
	Domain         string  `json:"domain"`
	Construct      string  `json:"construct,omitempty"`
	Type           string  `json:"type"`
	Text           string  `json:"text"`
	Weight         float64 `json:"weight"`
	Severity       float64 `json:"severity"`
	PersonalWeight float64 `json:"personal_weight"`
	OrgWeight      float64 `json:"org_weight"`
}

// GetSurveyResponse carries a survey with its questions
type GetSurveyResponse struct {
	Survey    SurveyResponse     `json:"survey"`
	Questions []QuestionResponse `json:"questions"`
}

// GetSurvey handles GET /api/v1/surveys/:id
// @Summary Get a survey with its questions
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path string true "Survey ID"
// @Success 200 {object} GetSurveyResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	survey, questions, err := h.surveyService.GetSurvey(c.Request.Context(), id)
	if err != nil {
		respondModelError(c, err)
		return
	}

	questionResponses := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		questionResponses = append(questionResponses, QuestionResponse{
			ID:             q.ID.Hex(),
			Number:         q.Number,
			Domain:         q.Domain,
			Construct:      q.Construct,
			Type:           strings.ToLower(string(q.Type)),
			Text:           q.Text,
			Weight:         q.Weight,
			Severity:       q.Severity,
			PersonalWeight: q.PersonalWeight,
			OrgWeight:      q.OrgWeight,
		})
	}

	c.JSON(http.StatusOK, GetSurveyResponse{
		Survey:    ToSurveyResponse(survey),
		Questions: questionResponses,
	})
}

// ListSurveysResponse is a paginated list of surveys
type ListSurveysResponse struct {
	Items      []SurveyResponse `json:"items"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ListSurveys handles GET /api/v1/surveys
// @Summary List surveys
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (draft, active, archived)"
// @Success 200 {object} ListSurveysResponse
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	var status *models.SurveyStatus
	if s := c.Query("status"); s != "" {
		parsed := models.SurveyStatus(strings.ToUpper(s))
		if !parsed.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Unknown survey status",
			})
			return
		}
		status = &parsed
	}

	opts := paginationFromQuery(c)
	result, err := h.surveyService.List(c.Request.Context(), status, opts)
	if err != nil {
		respondModelError(c, err)
		return
	}

	items := make([]SurveyResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ToSurveyResponse(&result.Items[i]))
	}

	c.JSON(http.StatusOK, ListSurveysResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
	})
}

// ListActiveSurveys handles GET /api/v1/surveys/active
// @Summary List active surveys
// @Description Lists surveys currently open for check-ins. Available to any authenticated employee.
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Success 200 {array} SurveyResponse
// @Router /surveys/active [get]
func (h *SurveyHandler) ListActiveSurveys(c *gin.Context) {
	surveys, err := h.surveyService.ListActive(c.Request.Context())
	if err != nil {
		respondModelError(c, err)
		return
	}

	items := make([]SurveyResponse, 0, len(surveys))
	for i := range surveys {
		items = append(items, ToSurveyResponse(&surveys[i]))
	}

	c.JSON(http.StatusOK, items)
}

// ActivateSurvey handles POST /api/v1/surveys/:id/activate
// @Summary Activate a draft survey
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path string true "Survey ID"
// @Success 200 {object} SurveyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/activate [post]
func (h *SurveyHandler) ActivateSurvey(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	survey, err := h.surveyService.Activate(c.Request.Context(), id, userID, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToSurveyResponse(survey))
}

// ArchiveSurvey handles POST /api/v1/surveys/:id/archive
// @Summary Archive an active survey
// @Description Freezes the survey from new check-ins; historical results remain readable
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path string true "Survey ID"
// @Success 200 {object} SurveyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/archive [post]
func (h *SurveyHandler) ArchiveSurvey(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	survey, err := h.surveyService.Archive(c.Request.Context(), id, userID, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToSurveyResponse(survey))
}

// DeleteSurvey handles DELETE /api/v1/surveys/:id
// @Summary Delete a draft survey
// @Description Deletes a survey and its questions; only drafts can be deleted
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path string true "Survey ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.surveyService.DeleteDraft(c.Request.Context(), id); err != nil {
		respondModelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers survey handler routes
// #SECURITY_CONCERN: Survey management is super-admin only; the active catalog is open to all employees
func (h *SurveyHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	surveys := rg.Group("/surveys", authMiddleware)
	{
		surveys.GET("/active", h.ListActiveSurveys)
		surveys.GET("/:id", h.GetSurvey)

		admin := surveys.Group("", middleware.RequireSuperAdmin())
		{
			admin.POST("/import", h.ImportSurvey)
			admin.GET("", h.ListSurveys)
			admin.POST("/:id/activate", h.ActivateSurvey)
			admin.POST("/:id/archive", h.ArchiveSurvey)
			admin.DELETE("/:id", h.DeleteSurvey)
		}
	}
}
