// Package services provides business logic implementations.
package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ebi360/bs360_backend/internal/models"
	"github.com/ebi360/bs360_backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditService handles audit logging
// #INTEGRATION_POINT: Used by all services for compliance logging
type AuditService interface {
	// Log creates an audit log entry
	Log(ctx context.Context, entry AuditEntry) error

	// LogAsync logs asynchronously (non-blocking)
	LogAsync(entry AuditEntry)

	// ListByResource lists audit logs for a resource
	ListByResource(ctx context.Context, resourceType string, resourceID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.AuditLog], error)

	// ListByCompany lists audit logs for a company
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.AuditLog], error)
}

// AuditEntry represents an audit log entry to be created
type AuditEntry struct {
	ActorUserID    *primitive.ObjectID
	ActorEmail     string
	ActorCompanyID *primitive.ObjectID
	Action         models.AuditAction
	ResourceType   string
	ResourceID     primitive.ObjectID
	Description    string
	Changes        map[string]interface{}
	IPAddress      string
	UserAgent      string
	RequestID      string
}

// auditService implements AuditService
type auditService struct {
	auditRepo repository.AuditRepository
	logChan   chan AuditEntry
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	svc := &auditService{
		auditRepo: auditRepo,
		logChan:   make(chan AuditEntry, 1000), // Buffer for async logging
	}

	// Start async worker
	go svc.asyncWorker()

	return svc
}

// asyncWorker processes audit entries asynchronously
func (s *auditService) asyncWorker() {
	for entry := range s.logChan {
		ctx := context.Background()
		if err := s.Log(ctx, entry); err != nil {
			log.Printf("Failed to log audit entry: %v", err)
		}
	}
}

// Log creates an audit log entry
func (s *auditService) Log(ctx context.Context, entry AuditEntry) error {
	auditLog := &models.AuditLog{
		ActorUserID:    entry.ActorUserID,
		ActorEmail:     entry.ActorEmail,
		ActorCompanyID: entry.ActorCompanyID,
		Action:         entry.Action,
		ResourceType:   entry.ResourceType,
		ResourceID:     entry.ResourceID,
		Description:    entry.Description,
		Changes:        entry.Changes,
		IPAddress:      entry.IPAddress,
		UserAgent:      entry.UserAgent,
		RequestID:      entry.RequestID,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// LogAsync logs asynchronously (non-blocking)
func (s *auditService) LogAsync(entry AuditEntry) {
	select {
	case s.logChan <- entry:
		// Successfully queued
	default:
		// Channel full, log synchronously as fallback
		log.Printf("Audit log channel full, logging synchronously")
		ctx := context.Background()
		if err := s.Log(ctx, entry); err != nil {
			log.Printf("Failed to log audit entry: %v", err)
		}
	}
}

// ListByResource lists audit logs for a resource
func (s *auditService) ListByResource(ctx context.Context, resourceType string, resourceID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.AuditLog], error) {
	return s.auditRepo.ListByResource(ctx, resourceType, resourceID, opts)
}

// ListByCompany lists audit logs for a company
func (s *auditService) ListByCompany(ctx context.Context, companyID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.AuditLog], error) {
	return s.auditRepo.ListByCompany(ctx, companyID, opts)
}

// AuditHelpers provides convenient methods for common audit operations
type AuditHelpers struct {
	service AuditService
}

// NewAuditHelpers creates audit helpers
func NewAuditHelpers(service AuditService) *AuditHelpers {
	return &AuditHelpers{service: service}
}

// LogLogin logs a profile login event
func (h *AuditHelpers) LogLogin(userID primitive.ObjectID, companyID *primitive.ObjectID, email, ipAddress, userAgent, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:    &userID,
		ActorEmail:     email,
		ActorCompanyID: companyID,
		Action:         models.AuditActionLogin,
		ResourceType:   models.ResourceTypeProfile,
		ResourceID:     userID,
		Description:    fmt.Sprintf("User %s logged in", email),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		RequestID:      requestID,
	})
}

// LogRoleSwitch logs an active role change
func (h *AuditHelpers) LogRoleSwitch(userID primitive.ObjectID, companyID *primitive.ObjectID, email string, from, to models.Role, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:    &userID,
		ActorEmail:     email,
		ActorCompanyID: companyID,
		Action:         models.AuditActionSwitchRole,
		ResourceType:   models.ResourceTypeProfile,
		ResourceID:     userID,
		Description:    fmt.Sprintf("Switched active role from %s to %s", from.Lower(), to.Lower()),
		Changes:        map[string]interface{}{"from": from.Lower(), "to": to.Lower()},
		RequestID:      requestID,
	})
}

// LogRoleGrant logs a role grant by a privileged actor
func (h *AuditHelpers) LogRoleGrant(actorUserID, targetUserID primitive.ObjectID, companyID *primitive.ObjectID, granted models.Role, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:    &actorUserID,
		ActorCompanyID: companyID,
		Action:         models.AuditActionGrantRole,
		ResourceType:   models.ResourceTypeProfile,
		ResourceID:     targetUserID,
		Description:    fmt.Sprintf("Granted role %s", granted.Lower()),
		Changes:        map[string]interface{}{"role": granted.Lower()},
		RequestID:      requestID,
	})
}

// LogAccessSync logs a profile/claims reconciliation run
func (h *AuditHelpers) LogAccessSync(userID primitive.ObjectID, companyID *primitive.ObjectID, email string, roles []models.Role, requestID string) {
	lowered := make([]string, 0, len(roles))
	for _, r := range roles {
		lowered = append(lowered, r.Lower())
	}
	h.service.LogAsync(AuditEntry{
		ActorUserID:    &userID,
		ActorEmail:     email,
		ActorCompanyID: companyID,
		Action:         models.AuditActionSyncAccess,
		ResourceType:   models.ResourceTypeProfile,
		ResourceID:     userID,
		Description:    "Reconciled access claims from profile store",
		Changes:        map[string]interface{}{"roles": lowered},
		RequestID:      requestID,
	})
}

// LogCompanyCreate logs company creation
func (h *AuditHelpers) LogCompanyCreate(actorUserID, companyID primitive.ObjectID, name, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:  &actorUserID,
		Action:       models.AuditActionCreate,
		ResourceType: models.ResourceTypeCompany,
		ResourceID:   companyID,
		Description:  fmt.Sprintf("Created company: %s", name),
		RequestID:    requestID,
	})
}

// LogSurveyActivate logs a survey activation
func (h *AuditHelpers) LogSurveyActivate(actorUserID, surveyID primitive.ObjectID, code, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:  &actorUserID,
		Action:       models.AuditActionActivate,
		ResourceType: models.ResourceTypeSurvey,
		ResourceID:   surveyID,
		Description:  fmt.Sprintf("Activated survey: %s", code),
		RequestID:    requestID,
	})
}

// LogSurveyArchive logs a survey archive
func (h *AuditHelpers) LogSurveyArchive(actorUserID, surveyID primitive.ObjectID, code, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:  &actorUserID,
		Action:       models.AuditActionArchive,
		ResourceType: models.ResourceTypeSurvey,
		ResourceID:   surveyID,
		Description:  fmt.Sprintf("Archived survey: %s", code),
		RequestID:    requestID,
	})
}

// LogEmployeeInvite logs an employee invitation
func (h *AuditHelpers) LogEmployeeInvite(actorUserID primitive.ObjectID, companyID *primitive.ObjectID, targetID primitive.ObjectID, email, requestID string) {
	h.service.LogAsync(AuditEntry{
		ActorUserID:    &actorUserID,
		ActorCompanyID: companyID,
		Action:         models.AuditActionInvite,
		ResourceType:   models.ResourceTypeProfile,
		ResourceID:     targetID,
		Description:    fmt.Sprintf("Invited employee: %s", email),
		RequestID:      requestID,
	})
}
