// Package middleware provides HTTP middleware for Gin framework.
// #IMPLEMENTATION_DECISION: Middleware chain for authentication, authorization, and logging
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ebi360/bs360_backend/internal/auth"
	"github.com/ebi360/bs360_backend/internal/models"
)

// Context keys for storing authenticated user data
// #INTEGRATION_POINT: Handlers extract user data using these keys
const (
	ContextKeyUserID     = "user_id"
	ContextKeyCompanyID  = "company_id"
	ContextKeyEmail      = "email"
	ContextKeyRoles      = "roles"
	ContextKeyActiveRole = "active_role"
	ContextKeyClaims     = "claims"
)

// Custom errors
var (
	ErrAuthHeaderMissing = errors.New("authorization header is required")
	ErrAuthHeaderFormat  = errors.New("authorization header format must be Bearer {token}")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrForbidden         = errors.New("access denied")
)

// AuthMiddleware validates JWT tokens and extracts user claims
// #IMPLEMENTATION_DECISION: Bearer token authentication
func AuthMiddleware(jwtService auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": ErrAuthHeaderMissing.Error(),
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": ErrAuthHeaderFormat.Error(),
			})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			statusCode := http.StatusUnauthorized
			message := ErrInvalidToken.Error()

			if errors.Is(err, auth.ErrTokenExpired) {
				message = "token has expired"
			}

			c.JSON(statusCode, gin.H{
				"error":   "unauthorized",
				"message": message,
			})
			c.Abort()
			return
		}

		// Store claims in context for downstream handlers
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyCompanyID, claims.CompanyID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRoles, claims.Roles)
		c.Set(ContextKeyActiveRole, claims.ActiveRole)

		c.Next()
	}
}

// OptionalAuthMiddleware extracts user claims if present but doesn't require authentication
// #IMPLEMENTATION_DECISION: For endpoints that behave differently for authenticated users
func OptionalAuthMiddleware(jwtService auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}

		tokenString := parts[1]
		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err == nil {
			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyCompanyID, claims.CompanyID)
			c.Set(ContextKeyEmail, claims.Email)
			c.Set(ContextKeyRoles, claims.Roles)
			c.Set(ContextKeyActiveRole, claims.ActiveRole)
		}

		c.Next()
	}
}

// RequireActiveRole middleware checks if the user's active role is one of the
// allowed roles
// #IMPLEMENTATION_DECISION: Authorization follows the active role lens, not
// the full role set, so a multi-role user only exercises one capability at a time
func RequireActiveRole(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ContextKeyActiveRole)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": ErrForbidden.Error(),
			})
			c.Abort()
			return
		}

		roleStr, ok := roleVal.(string)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": ErrForbidden.Error(),
			})
			c.Abort()
			return
		}
		activeRole := models.Role(strings.ToUpper(roleStr))
		for _, allowed := range allowedRoles {
			if activeRole == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "insufficient role permissions",
		})
		c.Abort()
	}
}

// RequireAnyRole middleware checks if the user holds one of the allowed roles,
// regardless of which role is currently active
func RequireAnyRole(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": ErrForbidden.Error(),
			})
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			for _, held := range claims.Roles {
				if models.Role(strings.ToUpper(held)) == allowed {
					c.Next()
					return
				}
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "insufficient role permissions",
		})
		c.Abort()
	}
}

// RequireSuperAdmin is a shorthand for requiring the super admin active role
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireActiveRole(models.RoleSuperAdmin)
}

// RequireCompanyAdmin is a shorthand for company management endpoints;
// super admins pass as well
func RequireCompanyAdmin() gin.HandlerFunc {
	return RequireActiveRole(models.RoleSuperAdmin, models.RoleCompanyAdmin)
}

// Helper functions for extracting values from context

// GetUserID extracts the user ID from context
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDVal, exists := c.Get(ContextKeyUserID)
	if !exists {
		return primitive.NilObjectID, false
	}

	userIDStr, ok := userIDVal.(string)
	if !ok {
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return userID, true
}

// GetCompanyID extracts the company ID from context
func GetCompanyID(c *gin.Context) (primitive.ObjectID, bool) {
	companyIDVal, exists := c.Get(ContextKeyCompanyID)
	if !exists {
		return primitive.NilObjectID, false
	}

	companyIDStr, ok := companyIDVal.(string)
	if !ok || companyIDStr == "" {
		return primitive.NilObjectID, false
	}

	companyID, err := primitive.ObjectIDFromHex(companyIDStr)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return companyID, true
}

// GetEmail extracts the caller's email from context
func GetEmail(c *gin.Context) (string, bool) {
	emailVal, exists := c.Get(ContextKeyEmail)
	if !exists {
		return "", false
	}

	email, ok := emailVal.(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

// GetActiveRole extracts the active role from context
func GetActiveRole(c *gin.Context) (models.Role, bool) {
	roleVal, exists := c.Get(ContextKeyActiveRole)
	if !exists {
		return "", false
	}

	roleStr, ok := roleVal.(string)
	if !ok {
		return "", false
	}

	return models.Role(strings.ToUpper(roleStr)), true
}

// GetClaims extracts the full JWT claims from context
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	claimsVal, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}

	claims, ok := claimsVal.(*auth.Claims)
	if !ok {
		return nil, false
	}

	return claims, true
}

// IsSuperAdmin checks if the current caller's active role is super admin
func IsSuperAdmin(c *gin.Context) bool {
	role, exists := GetActiveRole(c)
	return exists && role == models.RoleSuperAdmin
}

// IsCompanyAdmin checks if the current caller's active role is company admin
func IsCompanyAdmin(c *gin.Context) bool {
	role, exists := GetActiveRole(c)
	return exists && role == models.RoleCompanyAdmin
}
