package handlers

import (
	"net/http"
	"time"

	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"github.com/ebi360/bs360_backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportingHandler handles aggregate reporting endpoints
type ReportingHandler struct {
	reportingService services.ReportingService
}

// NewReportingHandler creates a new reporting handler
func NewReportingHandler(reportingService services.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingService: reportingService}
}

// sinceFromQuery parses the optional ?since=RFC3339 query parameter
func sinceFromQuery(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "since must be an RFC3339 timestamp",
		})
		return nil, false
	}
	return &parsed, true
}

// GetDashboard handles GET /api/v1/companies/:id/dashboard
// @Summary Company wellbeing dashboard
// @Description Aggregates employee count, participation, and average global and per-domain scores
// @Tags Reporting
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param since query string false "Only include results since this RFC3339 timestamp"
// @Success 200 {object} services.CompanyDashboard
// @Failure 403 {object} ErrorResponse
// @Router /companies/{id}/dashboard [get]
func (h *ReportingHandler) GetDashboard(c *gin.Context) {
	companyID, ok := companyScope(c)
	if !ok {
		return
	}

	since, ok := sinceFromQuery(c)
	if !ok {
		return
	}

	dashboard, err := h.reportingService.CompanyDashboard(c.Request.Context(), companyID, since)
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ListCompanyResultsResponse is a paginated list of company results
type ListCompanyResultsResponse struct {
	Items      []ResultResponse `json:"items"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ListCompanyResults handles GET /api/v1/companies/:id/results
// @Summary List company results
// @Tags Reporting
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param since query string false "Only include results since this RFC3339 timestamp"
// @Param survey_id query string false "Filter by survey"
// @Success 200 {object} ListCompanyResultsResponse
// @Router /companies/{id}/results [get]
func (h *ReportingHandler) ListCompanyResults(c *gin.Context) {
	companyID, ok := companyScope(c)
	if !ok {
		return
	}

	opts := paginationFromQuery(c)

	var result *repository.PaginatedResult[models.Result]

	if surveyHex := c.Query("survey_id"); surveyHex != "" {
		surveyID, err := primitive.ObjectIDFromHex(surveyHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid survey ID",
			})
			return
		}

		result, err = h.reportingService.SurveyResults(c.Request.Context(), companyID, surveyID, opts)
		if err != nil {
			respondModelError(c, err)
			return
		}
	} else {
		since, ok := sinceFromQuery(c)
		if !ok {
			return
		}

		var err error
		result, err = h.reportingService.CompanyResults(c.Request.Context(), companyID, since, opts)
		if err != nil {
			respondModelError(c, err)
			return
		}
	}

	items := make([]ResultResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ToResultResponse(&result.Items[i]))
	}

	c.JSON(http.StatusOK, ListCompanyResultsResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
	})
}

// RegisterRoutes registers reporting handler routes
func (h *ReportingHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	reports := rg.Group("/companies/:id", authMiddleware, middleware.RequireCompanyAdmin())
	{
		reports.GET("/dashboard", h.GetDashboard)
		reports.GET("/results", h.ListCompanyResults)
	}
}
