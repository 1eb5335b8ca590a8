package handlers

import (
	"net/http"
	"strings"

	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmployeeHandler handles employee management endpoints
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employeeService services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// CreateEmployeeRequest represents one employee to create
type CreateEmployeeRequest struct {
	Email    string   `json:"email" binding:"required"`
	FullName string   `json:"full_name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Language string   `json:"language,omitempty"`
}

func (r CreateEmployeeRequest) toInput() services.EmployeeInput {
	roles := make([]models.Role, 0, len(r.Roles))
	for _, role := range r.Roles {
		roles = append(roles, models.Role(strings.ToUpper(role)))
	}
	return services.EmployeeInput{
		Email:    r.Email,
		FullName: r.FullName,
		Roles:    roles,
		Language: r.Language,
	}
}

// companyScope resolves the company the caller may manage.
// #SECURITY_CONCERN: Company admins are locked to their own company; only
// super admins may address another company via the path parameter.
func companyScope(c *gin.Context) (primitive.ObjectID, bool) {
	pathID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid company ID",
		})
		return primitive.NilObjectID, false
	}

	if middleware.IsSuperAdmin(c) {
		return pathID, true
	}

	ownID, ok := middleware.GetCompanyID(c)
	if !ok || ownID != pathID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Cannot manage another company",
		})
		return primitive.NilObjectID, false
	}
	return pathID, true
}

// CreateEmployee handles POST /api/v1/companies/:id/employees
// @Summary Create an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param request body CreateEmployeeRequest true "Employee data"
// @Success 201 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /companies/{id}/employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Email is required",
		})
		return
	}

	profile, err := h.employeeService.CreateEmployee(c.Request.Context(), companyID, req.toInput())
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ToProfileResponse(profile))
}

// BulkCreateRequest represents the bulk employee upload body
type BulkCreateRequest struct {
	Employees []CreateEmployeeRequest `json:"employees" binding:"required"`
}

// BulkCreateResponse reports created rows and per-row errors
type BulkCreateResponse struct {
	Created []ProfileResponse `json:"created"`
	Errors  []string          `json:"errors"`
}

// BulkCreate handles POST /api/v1/companies/:id/employees/bulk
// @Summary Bulk upload employees
// @Description Creates employees row by row; failed rows are reported without rolling back the successful ones
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param request body BulkCreateRequest true "Employees to create"
// @Success 200 {object} BulkCreateResponse
// @Failure 400 {object} ErrorResponse
// @Router /companies/{id}/employees/bulk [post]
func (h *EmployeeHandler) BulkCreate(c *gin.Context) {
	companyID, ok := companyScope(c)
	if !ok {
		return
	}

	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Employees) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "At least one employee is required",
		})
		return
	}

	inputs := make([]services.EmployeeInput, 0, len(req.Employees))
	for _, e := range req.Employees {
		inputs = append(inputs, e.toInput())
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.employeeService.BulkCreate(c.Request.Context(), companyID, inputs, userID, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}

	created := make([]ProfileResponse, 0, len(result.Created))
	for i := range result.Created {
		created = append(created, ToProfileResponse(&result.Created[i]))
	}

	c.JSON(http.StatusOK, BulkCreateResponse{
		Created: created,
		Errors:  result.Errors,
	})
}

// ListEmployeesResponse is a paginated list of employees
type ListEmployeesResponse struct {
	Items      []ProfileResponse `json:"items"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// ListEmployees handles GET /api/v1/companies/:id/employees
// @Summary List company employees
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param include_inactive query bool false "Include deactivated employees"
// @Success 200 {object} ListEmployeesResponse
// @Router /companies/{id}/employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	companyID, ok := companyScope(c)
	if !ok {
		return
	}

	includeInactive := c.Query("include_inactive") == "true"
	opts := paginationFromQuery(c)

	result, err := h.employeeService.ListEmployees(c.Request.Context(), companyID, includeInactive, opts)
	if err != nil {
		respondModelError(c, err)
		return
	}

	items := make([]ProfileResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ToProfileResponse(&result.Items[i]))
	}

	c.JSON(http.StatusOK, ListEmployeesResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       opts.Page,
		Limit:      opts.Limit,
	})
}

// InviteEmployee handles POST /api/v1/companies/:id/employees/:employeeId/invite
// @Summary Invite an employee
// @Description Sends an invitation email with a secure link
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param employeeId path string true "Employee ID"
// @Success 202 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id}/employees/{employeeId}/invite [post]
func (h *EmployeeHandler) InviteEmployee(c *gin.Context) {
	if _, ok := companyScope(c); !ok {
		return
	}

	employeeID, err := primitive.ObjectIDFromHex(c.Param("employeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid employee ID",
		})
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.employeeService.InviteEmployee(c.Request.Context(), employeeID, userID, middleware.GetRequestID(c)); err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Invitation sent"})
}

// UpdateEmployeeRequest represents mutable employee fields
type UpdateEmployeeRequest struct {
	FullName string `json:"full_name,omitempty"`
	Language string `json:"language,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// UpdateEmployee handles PATCH /api/v1/companies/:id/employees/:employeeId
// @Summary Update an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param employeeId path string true "Employee ID"
// @Param request body UpdateEmployeeRequest true "Fields to update"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id}/employees/{employeeId} [patch]
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	if _, ok := companyScope(c); !ok {
		return
	}

	employeeID, err := primitive.ObjectIDFromHex(c.Param("employeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid employee ID",
		})
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	profile, err := h.employeeService.UpdateEmployee(c.Request.Context(), employeeID, req.FullName, req.Language, req.Timezone)
	if err != nil {
		respondModelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToProfileResponse(profile))
}

// DeactivateEmployee handles DELETE /api/v1/companies/:id/employees/:employeeId
// @Summary Deactivate an employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param employeeId path string true "Employee ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id}/employees/{employeeId} [delete]
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	if _, ok := companyScope(c); !ok {
		return
	}

	employeeID, err := primitive.ObjectIDFromHex(c.Param("employeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid employee ID",
		})
		return
	}

	if err := h.employeeService.DeactivateEmployee(c.Request.Context(), employeeID); err != nil {
		respondModelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers employee handler routes
func (h *EmployeeHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	employees := rg.Group("/companies/:id/employees", authMiddleware, middleware.RequireCompanyAdmin())
	{
		employees.POST("", h.CreateEmployee)
		employees.POST("/bulk", h.BulkCreate)
		employees.GET("", h.ListEmployees)
		employees.POST("/:employeeId/invite", h.InviteEmployee)
		employees.PATCH("/:employeeId", h.UpdateEmployee)
		employees.DELETE("/:employeeId", h.DeactivateEmployee)
	}
}
