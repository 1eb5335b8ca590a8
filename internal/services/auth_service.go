// Package services provides business logic implementations.
// #IMPLEMENTATION_DECISION: Services orchestrate repositories and external services
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ebi360/bs360_backend/internal/auth"
	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
)

// Custom errors for auth service
var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileInactive   = errors.New("profile is inactive")
	ErrInvalidSecureLink = errors.New("invalid or expired secure link")
	ErrRateLimitExceeded = errors.New("rate limit exceeded for magic links")
	ErrInvalidRefresh    = errors.New("invalid refresh token")
)

// AuthService handles authentication logic
// #INTEGRATION_POINT: Used by auth handler for login/logout flows
type AuthService interface {
	// RequestMagicLink sends a magic link to the user's email
	RequestMagicLink(ctx context.Context, email string) error

	// VerifyMagicLink validates a magic link and returns token pair
	VerifyMagicLink(ctx context.Context, identifier string) (*auth.TokenPair, *models.Profile, error)

	// RefreshAccessToken refreshes an access token using a refresh token
	RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)

	// GetUserContext retrieves the caller's profile and company
	GetUserContext(ctx context.Context, userID primitive.ObjectID) (*models.Profile, *models.Company, error)

	// TokenSubjectFor resolves a profile into the claims embedded in its tokens
	TokenSubjectFor(profile *models.Profile) auth.TokenSubject
}

// MailService interface for sending emails
// #INTEGRATION_POINT: External mail service integration
type MailService interface {
	SendMagicLink(ctx context.Context, email, name, magicLink string, branding *models.Branding) error
	SendInvitation(ctx context.Context, email, companyName, inviteLink string, branding *models.Branding) error
}

// RoleResolver resolves the effective role set for an email.
// The allowlist check lives here so token issuance and role switching share
// one source of truth.
type RoleResolver interface {
	// ResolveRoles returns the effective role set for a profile
	ResolveRoles(profile *models.Profile) []models.Role
}

// authService implements AuthService
type authService struct {
	profileRepo    repository.ProfileRepository
	companyRepo    repository.CompanyRepository
	secureLinkRepo repository.SecureLinkRepository
	jwtService     auth.JWTService
	mailService    MailService
	roleResolver   RoleResolver
	magicLinkBase  string
	rateLimitCount int
	rateLimitMins  int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	MagicLinkBaseURL    string
	RateLimitCount      int
	RateLimitWindowMins int
}

// NewAuthService creates a new auth service instance
// #IMPLEMENTATION_DECISION: Constructor injection for testability
func NewAuthService(
	profileRepo repository.ProfileRepository,
	companyRepo repository.CompanyRepository,
	secureLinkRepo repository.SecureLinkRepository,
	jwtService auth.JWTService,
	mailService MailService,
	roleResolver RoleResolver,
	cfg AuthServiceConfig,
) AuthService {
	return &authService{
		profileRepo:    profileRepo,
		companyRepo:    companyRepo,
		secureLinkRepo: secureLinkRepo,
		jwtService:     jwtService,
		mailService:    mailService,
		roleResolver:   roleResolver,
		magicLinkBase:  cfg.MagicLinkBaseURL,
		rateLimitCount: cfg.RateLimitCount,
		rateLimitMins:  cfg.RateLimitWindowMins,
	}
}

// RequestMagicLink sends a magic link to the user's email
// #IMPLEMENTATION_DECISION: Rate limit magic link issuance per email
// #SECURITY_CONCERN: Always return success even for non-existent emails to prevent enumeration
func (s *authService) RequestMagicLink(ctx context.Context, email string) error {
	count, err := s.secureLinkRepo.CountRecentByEmail(ctx, email, s.rateLimitMins)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count >= int64(s.rateLimitCount) {
		return ErrRateLimitExceeded
	}

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil || profile == nil {
		// #SECURITY_CONCERN: Don't reveal if profile exists - return success silently
		return nil //nolint:nilerr // Security: intentional to prevent enumeration
	}

	if !profile.IsActive || profile.IsDeleted() {
		// #SECURITY_CONCERN: Don't reveal profile status
		return nil
	}

	// Invalidate existing links for this email
	if invalidateErr := s.secureLinkRepo.InvalidateAllForEmail(ctx, email); invalidateErr != nil {
		return fmt.Errorf("failed to invalidate existing links: %w", invalidateErr)
	}

	identifier, err := generateSecureIdentifier()
	if err != nil {
		return fmt.Errorf("failed to generate secure identifier: %w", err)
	}

	link := &models.SecureLink{
		SecureIdentifier: identifier,
		Type:             models.SecureLinkTypeAuth,
		Email:            email,
		UserID:           &profile.ID,
		CompanyID:        profile.CompanyID,
	}
	link.BeforeCreate()

	if err := s.secureLinkRepo.Create(ctx, link); err != nil {
		return fmt.Errorf("failed to create secure link: %w", err)
	}

	// Path parameter matches the frontend route /auth/verify/:token
	magicLinkURL := fmt.Sprintf("%s/auth/verify/%s", s.magicLinkBase, identifier)

	branding := s.brandingFor(ctx, profile)
	if err := s.mailService.SendMagicLink(ctx, email, profile.FullName, magicLinkURL, branding); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}

	return nil
}

// VerifyMagicLink validates a magic link and returns tokens
// #IMPLEMENTATION_DECISION: Single-use links - marked as used immediately
func (s *authService) VerifyMagicLink(ctx context.Context, identifier string) (*auth.TokenPair, *models.Profile, error) {
	link, err := s.secureLinkRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, nil, ErrInvalidSecureLink
	}

	if link == nil || !link.CanBeUsed() {
		return nil, nil, ErrInvalidSecureLink
	}

	// Mark as used immediately to prevent race conditions
	if markErr := s.secureLinkRepo.MarkAsUsed(ctx, link.ID); markErr != nil {
		return nil, nil, fmt.Errorf("failed to mark link as used: %w", markErr)
	}

	if link.UserID == nil {
		return nil, nil, ErrProfileNotFound
	}

	profile, err := s.profileRepo.GetByID(ctx, *link.UserID)
	if err != nil || profile == nil {
		return nil, nil, ErrProfileNotFound
	}

	if !profile.IsActive || profile.IsDeleted() {
		return nil, nil, ErrProfileInactive
	}

	if updateErr := s.profileRepo.UpdateLastLogin(ctx, profile.ID); updateErr != nil { //nolint:staticcheck // Log error but don't fail login
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(s.TokenSubjectFor(profile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokenPair, profile, nil
}

// RefreshAccessToken refreshes an access token
// #SECURITY_CONCERN: Refresh tokens should ideally be stored and tracked for rotation
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil || profile == nil {
		return nil, ErrProfileNotFound
	}

	if !profile.IsActive || profile.IsDeleted() {
		return nil, ErrProfileInactive
	}

	// Claims are re-derived from the profile store on every refresh, which is
	// what eventually repairs a stale roles mirror.
	tokenPair, err := s.jwtService.GenerateTokenPair(s.TokenSubjectFor(profile))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokenPair, nil
}

// GetUserContext retrieves the caller's profile and company
func (s *authService) GetUserContext(ctx context.Context, userID primitive.ObjectID) (*models.Profile, *models.Company, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil || profile == nil {
		return nil, nil, ErrProfileNotFound
	}

	var company *models.Company
	if profile.CompanyID != nil {
		company, err = s.companyRepo.GetByID(ctx, *profile.CompanyID)
		if err != nil {
			// Super admins and orphaned profiles have no company context
			company = nil
		}
	}

	return profile, company, nil
}

// TokenSubjectFor resolves a profile into the claims embedded in its tokens.
// #BUSINESS_RULE: Allowlisted identities always resolve to the maximal role
// set, regardless of stored data (see RoleResolver).
func (s *authService) TokenSubjectFor(profile *models.Profile) auth.TokenSubject {
	roles := s.roleResolver.ResolveRoles(profile)

	roleStrings := make([]string, 0, len(roles))
	for _, r := range roles {
		roleStrings = append(roleStrings, r.Lower())
	}

	activeRole := profile.ActiveRole
	if activeRole == "" && len(roles) > 0 {
		activeRole = roles[0]
	}

	companyID := ""
	if profile.CompanyID != nil {
		companyID = profile.CompanyID.Hex()
	}

	return auth.TokenSubject{
		UserID:     profile.ID.Hex(),
		CompanyID:  companyID,
		Email:      profile.Email,
		Roles:      roleStrings,
		ActiveRole: activeRole.Lower(),
	}
}

// brandingFor returns the company branding for mail templates, or nil when
// the profile has no company or the lookup fails
func (s *authService) brandingFor(ctx context.Context, profile *models.Profile) *models.Branding {
	if profile.CompanyID == nil {
		return nil
	}
	company, err := s.companyRepo.GetByID(ctx, *profile.CompanyID)
	if err != nil || !company.HasBranding() {
		return nil
	}
	return &company.Branding
}

// generateSecureIdentifier generates a cryptographically secure random identifier
// #IMPLEMENTATION_DECISION: 32 bytes = 64 hex characters
func generateSecureIdentifier() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
