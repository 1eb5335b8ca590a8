package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction represents the type of action in an audit log
type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionDelete     AuditAction = "DELETE"
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionInvite     AuditAction = "INVITE"
	AuditActionActivate   AuditAction = "ACTIVATE"
	AuditActionArchive    AuditAction = "ARCHIVE"
	AuditActionSwitchRole AuditAction = "SWITCH_ROLE"
	AuditActionGrantRole  AuditAction = "GRANT_ROLE"
	AuditActionSyncAccess AuditAction = "SYNC_ACCESS"
)

// MarshalJSON converts AuditAction to lowercase for JSON serialization
func (a AuditAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(a)))
}

// UnmarshalJSON converts lowercase JSON to AuditAction
func (a *AuditAction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = AuditAction(strings.ToUpper(s))
	return nil
}

// IsValid checks if the AuditAction is a valid value
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete, AuditActionLogin,
		AuditActionInvite, AuditActionActivate, AuditActionArchive,
		AuditActionSwitchRole, AuditActionGrantRole, AuditActionSyncAccess:
		return true
	}
	return false
}

// ResourceType constants for audit logging
const (
	ResourceTypeCompany    = "company"
	ResourceTypeProfile    = "profile"
	ResourceTypeSurvey     = "survey"
	ResourceTypeQuestion   = "question"
	ResourceTypeResult     = "result"
	ResourceTypeSecureLink = "secure_link"
)

// AuditLog represents an activity audit trail entry
// #DATA_ASSUMPTION: Audit logs are append-only, never modified or deleted
// #BUSINESS_RULE: Every role mutation (grant, switch, sync) leaves an audit entry
type AuditLog struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Actor (who performed the action)
	ActorUserID    *primitive.ObjectID `bson:"actor_user_id,omitempty" json:"actor_user_id,omitempty"`
	ActorEmail     string              `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	ActorCompanyID *primitive.ObjectID `bson:"actor_company_id,omitempty" json:"actor_company_id,omitempty"`

	// Action
	Action       AuditAction        `bson:"action" json:"action"`
	ResourceType string             `bson:"resource_type" json:"resource_type"`
	ResourceID   primitive.ObjectID `bson:"resource_id" json:"resource_id"`

	// Context
	Description string                 `bson:"description" json:"description"`
	Changes     map[string]interface{} `bson:"changes,omitempty" json:"changes,omitempty"`

	// Request metadata
	IPAddress string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"`

	// Timestamp
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CollectionName returns the MongoDB collection name for audit logs
func (AuditLog) CollectionName() string {
	return "audit_logs"
}

// BeforeCreate sets default values before inserting a new audit log
func (a *AuditLog) BeforeCreate() {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = time.Now().UTC()

	if a.Changes == nil {
		a.Changes = map[string]interface{}{}
	}
}
