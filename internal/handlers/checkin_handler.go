package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInHandler handles survey completion endpoints
type CheckInHandler struct {
	checkInService services.CheckInService
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkInService services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// SubmitCheckInRequest represents a completed answer set.
// Answers are keyed by question number.
type SubmitCheckInRequest struct {
	SurveyID string         `json:"survey_id" binding:"required"`
	Answers  map[string]int `json:"answers" binding:"required"`
}

// ResultResponse represents a result in API responses
type ResultResponse struct {
	ID           string             `json:"id"`
	SurveyID     string             `json:"survey_id"`
	GlobalScore  float64            `json:"global_score"`
	DomainScores map[string]float64 `json:"domain_scores"`
	AnswerCount  int                `json:"answer_count"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ToResultResponse converts a Result model to ResultResponse
func ToResultResponse(result *models.Result) ResultResponse {
	return ResultResponse{
		ID:           result.ID.Hex(),
		SurveyID:     result.SurveyID.Hex(),
		GlobalScore:  result.GlobalScore,
		DomainScores: result.DomainScores,
		AnswerCount:  result.AnswerCount(),
		CreatedAt:    result.CreatedAt,
	}
}

// SubmitCheckInResponse carries the scored result and its insights
type SubmitCheckInResponse struct {
	Result   ResultResponse           `json:"result"`
	Insights []services.DomainInsight `json:"insights"`
}

// SubmitCheckIn handles POST /api/v1/checkins
// @Summary Submit a completed survey
// @Description Validates answers against the active survey, computes scores, persists an immutable result, and returns per-domain recommendations
// @Tags CheckIns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitCheckInRequest true "Answer set"
// @Success 201 {object} SubmitCheckInResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkins [post]
func (h *CheckInHandler) SubmitCheckIn(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req SubmitCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Survey ID and answers are required",
		})
		return
	}

	surveyID, err := primitive.ObjectIDFromHex(req.SurveyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid survey ID",
		})
		return
	}

	answers := make(map[int]int, len(req.Answers))
	for key, value := range req.Answers {
		number, err := strconv.Atoi(key)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Answer keys must be question numbers",
			})
			return
		}
		answers[number] = value
	}

	var companyID *primitive.ObjectID
	if id, ok := middleware.GetCompanyID(c); ok {
		companyID = &id
	}

	outcome, err := h.checkInService.SubmitCheckIn(c.Request.Context(), userID, companyID, surveyID, answers)
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SubmitCheckInResponse{
		Result:   ToResultResponse(outcome.Result),
		Insights: outcome.Insights,
	})
}

// GetResult handles GET /api/v1/results/:id
// @Summary Get a result
// @Tags CheckIns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Result ID"
// @Success 200 {object} ResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *CheckInHandler) GetResult(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	result, err := h.checkInService.GetResult(c.Request.Context(), id)
	if err != nil {
		respondModelError(c, err)
		return
	}

	// #SECURITY_CONCERN: Employees only read their own results; admins may read company results
	userID, _ := middleware.GetUserID(c)
	if result.UserID != userID && !middleware.IsSuperAdmin(c) {
		companyID, ok := middleware.GetCompanyID(c)
		sameCompany := ok && result.CompanyID != nil && *result.CompanyID == companyID
		if !middleware.IsCompanyAdmin(c) || !sameCompany {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Cannot read another user's result",
			})
			return
		}
	}

	c.JSON(http.StatusOK, ToResultResponse(result))
}

// ListMyResultsResponse is a paginated list of the caller's results
type ListMyResultsResponse struct {
	Items      []ResultResponse `json:"items"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ListMyResults handles GET /api/v1/results/me
// @Summary List the caller's result history
// @Tags CheckIns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListMyResultsResponse
// @Router /results/me [get]
func (h *CheckInHandler) ListMyResults(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	opts := paginationFromQuery(c)
	result, err := h.checkInService.ListResults(c.Request.Context(), userID, opts)
	if err != nil {
		respondModelError(c, err)
		return
	}

	items := make([]ResultResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ToResultResponse(&result.Items[i]))
	}

	c.JSON(http.StatusOK, ListMyResultsResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
	})
}

// GetLatestResult handles GET /api/v1/results/me/latest
// @Summary Get the caller's most recent result
// @Tags CheckIns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResultResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/me/latest [get]
func (h *CheckInHandler) GetLatestResult(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	result, err := h.checkInService.GetLatestResult(c.Request.Context(), userID)
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToResultResponse(result))
}

// RegisterRoutes registers check-in handler routes
func (h *CheckInHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.POST("/checkins", authMiddleware, h.SubmitCheckIn)

	results := rg.Group("/results", authMiddleware)
	{
		results.GET("/me", h.ListMyResults)
		results.GET("/me/latest", h.GetLatestResult)
		results.GET("/:id", h.GetResult)
	}
}
