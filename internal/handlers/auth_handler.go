// Package handlers provides HTTP handlers for API endpoints.
// #IMPLEMENTATION_DECISION: Handlers are thin - delegate business logic to services
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication and role endpoints
// #INTEGRATION_POINT: Frontend auth flow uses these endpoints
type AuthHandler struct {
	authService services.AuthService
	roleService services.RoleService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthService, roleService services.RoleService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		roleService: roleService,
	}
}

// RequestMagicLinkRequest represents the magic link request body
type RequestMagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestMagicLinkResponse represents the magic link response
type RequestMagicLinkResponse struct {
	Message string `json:"message"`
}

// RequestMagicLink handles POST /api/v1/auth/magic-link
// @Summary Request a magic link
// @Description Sends a magic link to the provided email for passwordless authentication
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RequestMagicLinkRequest true "Magic link request"
// @Success 200 {object} RequestMagicLinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/magic-link [post]
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req RequestMagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid email address",
		})
		return
	}

	err := h.authService.RequestMagicLink(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrRateLimitExceeded) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many magic link requests. Please try again later.",
			})
			return
		}

		// #SECURITY_CONCERN: Don't reveal internal errors
		// Log the error internally but return generic success
	}

	// #SECURITY_CONCERN: Always return success to prevent email enumeration
	c.JSON(http.StatusOK, RequestMagicLinkResponse{
		Message: "If an account exists with this email, a magic link has been sent.",
	})
}

// VerifyMagicLinkRequest represents the verify request body
type VerifyMagicLinkRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyMagicLinkResponse represents the verify response
type VerifyMagicLinkResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    int64           `json:"expires_at"`
	ExpiresIn    int64           `json:"expires_in"`
	User         ProfileResponse `json:"user"`
}

// ProfileResponse represents profile data in API responses
type ProfileResponse struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	FullName   string        `json:"full_name,omitempty"`
	CompanyID  string        `json:"company_id,omitempty"`
	Roles      []models.Role `json:"roles"`
	ActiveRole models.Role   `json:"active_role"`
	Language   string        `json:"language,omitempty"`
}

// ToProfileResponse converts a Profile model to ProfileResponse
func ToProfileResponse(profile *models.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:         profile.ID.Hex(),
		Email:      profile.Email,
		FullName:   profile.FullName,
		Roles:      profile.Roles,
		ActiveRole: profile.ActiveRole,
		Language:   profile.Language,
	}
	if profile.CompanyID != nil {
		resp.CompanyID = profile.CompanyID.Hex()
	}
	return resp
}

// VerifyMagicLink handles POST /api/v1/auth/verify
// @Summary Verify a magic link token
// @Description Validates the magic link token and returns access/refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyMagicLinkRequest true "Token verification request"
// @Success 200 {object} VerifyMagicLinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/verify [post]
func (h *AuthHandler) VerifyMagicLink(c *gin.Context) {
	var req VerifyMagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Token is required",
		})
		return
	}

	tokenPair, profile, err := h.authService.VerifyMagicLink(c.Request.Context(), req.Token)
	if err != nil {
		message := "Invalid or expired magic link"
		if errors.Is(err, services.ErrProfileNotFound) || errors.Is(err, services.ErrProfileInactive) {
			message = "Account is not available"
		}

		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: message,
		})
		return
	}

	c.JSON(http.StatusOK, VerifyMagicLinkResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt.Unix(),
		ExpiresIn:    tokenPair.ExpiresIn,
		User:         ToProfileResponse(profile),
	})
}

// RefreshTokenRequest represents the refresh token request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse represents the refresh token response
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh access token
// @Description Uses refresh token to generate new access/refresh token pair with roles re-read from the profile store
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token request"
// @Success 200 {object} RefreshTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Refresh token is required",
		})
		return
	}

	tokenPair, err := h.authService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_refresh_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}

	c.JSON(http.StatusOK, RefreshTokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt.Unix(),
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

// GetMeResponse represents the current user response
type GetMeResponse struct {
	User    ProfileResponse  `json:"user"`
	Company *CompanyResponse `json:"company,omitempty"`
}

// GetMe handles GET /api/v1/auth/me
// @Summary Get current user
// @Description Returns the current authenticated profile and its company
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} GetMeResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	profile, company, err := h.authService.GetUserContext(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Profile not found",
		})
		return
	}

	resp := GetMeResponse{User: ToProfileResponse(profile)}
	if company != nil {
		companyResp := ToCompanyResponse(company)
		resp.Company = &companyResp
	}

	c.JSON(http.StatusOK, resp)
}

// SwitchRoleRequest represents the role switch request body
type SwitchRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SwitchRoleResponse contains the updated profile and fresh tokens
type SwitchRoleResponse struct {
	User         ProfileResponse `json:"user"`
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresAt    int64           `json:"expires_at,omitempty"`
	ExpiresIn    int64           `json:"expires_in,omitempty"`
}

// SwitchRole handles POST /api/v1/auth/switch-role
// @Summary Switch the active role
// @Description Switches the caller's active role. The role must be a member of the caller's role set.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SwitchRoleRequest true "Role switch request"
// @Success 200 {object} SwitchRoleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/switch-role [post]
func (h *AuthHandler) SwitchRole(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	var req SwitchRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Role is required",
		})
		return
	}

	requested := models.Role(strings.ToUpper(req.Role))
	profile, tokenPair, err := h.roleService.SwitchActiveRole(c.Request.Context(), userID, requested, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}

	resp := SwitchRoleResponse{User: ToProfileResponse(profile)}
	if tokenPair != nil {
		resp.AccessToken = tokenPair.AccessToken
		resp.RefreshToken = tokenPair.RefreshToken
		resp.ExpiresAt = tokenPair.ExpiresAt.Unix()
		resp.ExpiresIn = tokenPair.ExpiresIn
	}

	c.JSON(http.StatusOK, resp)
}

// SyncAccess handles POST /api/v1/auth/sync-access
// @Summary Reconcile access claims
// @Description Re-derives the caller's role set from the profile store, repairs stale claims, and issues fresh tokens
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SwitchRoleResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/sync-access [post]
func (h *AuthHandler) SyncAccess(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid session",
		})
		return
	}

	profile, tokenPair, err := h.roleService.SyncAccess(c.Request.Context(), userID, middleware.GetRequestID(c))
	if err != nil {
		respondModelError(c, err)
		return
	}

	resp := SwitchRoleResponse{User: ToProfileResponse(profile)}
	if tokenPair != nil {
		resp.AccessToken = tokenPair.AccessToken
		resp.RefreshToken = tokenPair.RefreshToken
		resp.ExpiresAt = tokenPair.ExpiresAt.Unix()
		resp.ExpiresIn = tokenPair.ExpiresIn
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers auth handler routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		// Public endpoints
		auth.POST("/magic-link", h.RequestMagicLink)
		auth.POST("/verify", h.VerifyMagicLink)
		auth.POST("/refresh", h.RefreshToken)

		// Protected endpoints
		auth.GET("/me", authMiddleware, h.GetMe)
		auth.POST("/switch-role", authMiddleware, h.SwitchRole)
		auth.POST("/sync-access", authMiddleware, h.SyncAccess)
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondModelError maps model sentinel errors onto HTTP status codes
func respondModelError(c *gin.Context, err error) {
	switch {
	case models.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case models.IsConflictError(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case models.IsAuthError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		})
	case models.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}
