package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"github.com/ebi360/bs360_backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyHandler handles company management endpoints
type CompanyHandler struct {
	companyService services.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// CompanyResponse represents company data in API responses
type CompanyResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	Plan        string           `json:"plan"`
	Branding    *models.Branding `json:"branding,omitempty"`
	IsDeleted   bool             `json:"is_deleted"`
}

// ToCompanyResponse converts a Company model to CompanyResponse
func ToCompanyResponse(company *models.Company) CompanyResponse {
	resp := CompanyResponse{
		ID:          company.ID.Hex(),
		Name:        company.Name,
		Slug:        company.Slug,
		Description: company.Description,
		Plan:        strings.ToLower(string(company.Plan)),
		IsDeleted:   company.IsDeleted(),
	}
	if company.HasBranding() {
		branding := company.Branding
		resp.Branding = &branding
	}
	return resp
}

// CreateCompanyRequest represents the company creation body
type CreateCompanyRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description,omitempty"`
	Plan        string           `json:"plan,omitempty"`
	Branding    *models.Branding `json:"branding,omitempty"`
}

// CreateCompany handles POST /api/v1/companies
// @Summary Create a company
// @Description Creates a client company with a slug derived from its name
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCompanyRequest true "Company data"
// @Success 201 {object} CompanyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Company name is required",
		})
		return
	}

	userID, _ := middleware.GetUserID(c)

	company, err := h.companyService.CreateCompany(c.Request.Context(), services.CompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Plan:        models.SubscriptionPlan(strings.ToUpper(req.Plan)),
		Branding:    req.Branding,
	}, userID, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ToCompanyResponse(company))
}

// GetCompany handles GET /api/v1/companies/:id
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 200 {object} CompanyResponse
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), id)
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToCompanyResponse(company))
}

// UpdateCompanyRequest represents the company update body
type UpdateCompanyRequest struct {
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Plan        string           `json:"plan,omitempty"`
	Branding    *models.Branding `json:"branding,omitempty"`
}

// UpdateCompany handles PATCH /api/v1/companies/:id
// @Summary Update a company
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param request body UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} CompanyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id} [patch]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	plan := models.SubscriptionPlan("")
	if req.Plan != "" {
		plan = models.SubscriptionPlan(strings.ToUpper(req.Plan))
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), id, services.CompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Plan:        plan,
		Branding:    req.Branding,
	})
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToCompanyResponse(company))
}

// DeleteCompany handles DELETE /api/v1/companies/:id
// @Summary Deactivate a company
// @Description Soft deletes a company; historical results remain
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.companyService.DeactivateCompany(c.Request.Context(), id); err != nil {
		respondModelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCompaniesResponse is a paginated list of companies
type ListCompaniesResponse struct {
	Items      []CompanyResponse `json:"items"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// ListCompanies handles GET /api/v1/companies
// @Summary List companies
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param plan query string false "Filter by subscription plan"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} ListCompaniesResponse
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	var plan *models.SubscriptionPlan
	if p := c.Query("plan"); p != "" {
		parsed := models.SubscriptionPlan(strings.ToUpper(p))
		if !parsed.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Unknown subscription plan",
			})
			return
		}
		plan = &parsed
	}

	opts := paginationFromQuery(c)
	result, err := h.companyService.ListCompanies(c.Request.Context(), plan, opts)
	if err != nil {
		respondModelError(c, err)
		return
	}

	items := make([]CompanyResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ToCompanyResponse(&result.Items[i]))
	}

	c.JSON(http.StatusOK, ListCompaniesResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
	})
}

// RegisterRoutes registers company handler routes
// #SECURITY_CONCERN: Company management is super-admin only except reads of the caller's own company
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	companies := rg.Group("/companies", authMiddleware)
	{
		companies.POST("", middleware.RequireSuperAdmin(), h.CreateCompany)
		companies.GET("", middleware.RequireSuperAdmin(), h.ListCompanies)
		companies.GET("/:id", middleware.RequireCompanyAdmin(), h.GetCompany)
		companies.PATCH("/:id", middleware.RequireSuperAdmin(), h.UpdateCompany)
		companies.DELETE("/:id", middleware.RequireSuperAdmin(), h.DeleteCompany)
	}
}

// parseObjectID parses a path parameter as an ObjectID, responding 400 on failure
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid ID format",
		})
		return primitive.NilObjectID, false
	}
	return id, true
}

// paginationFromQuery reads page/limit query parameters with repository defaults
func paginationFromQuery(c *gin.Context) repository.PaginationOptions {
	opts := repository.DefaultPaginationOptions()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		opts.Limit = limit
	}
	return opts
}
