// Package models defines all MongoDB document models for the Bs360 wellbeing platform
// #SCHEMA_IMPLEMENTATION: Using MongoDB with BSON ObjectID primary keys
package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionPlan represents the commercial plan of a client company
// #IMPLEMENTATION_DECISION: UPPERCASE in Go code, lowercase in JSON serialization
type SubscriptionPlan string

const (
	SubscriptionPlanBasic      SubscriptionPlan = "BASIC"
	SubscriptionPlanPro        SubscriptionPlan = "PRO"
	SubscriptionPlanEnterprise SubscriptionPlan = "ENTERPRISE"
)

// MarshalJSON converts SubscriptionPlan to lowercase for JSON serialization
func (sp SubscriptionPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(sp)))
}

// UnmarshalJSON converts lowercase JSON to SubscriptionPlan
func (sp *SubscriptionPlan) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*sp = SubscriptionPlan(strings.ToUpper(s))
	return nil
}

// IsValid checks if the SubscriptionPlan is a valid value
func (sp SubscriptionPlan) IsValid() bool {
	switch sp {
	case SubscriptionPlanBasic, SubscriptionPlanPro, SubscriptionPlanEnterprise:
		return true
	}
	return false
}

// Branding contains per-company white-label customization
// #NORMALIZATION_DECISION: Embedded as 1:1 relationship, always read with the company
type Branding struct {
	PrimaryColor   string `bson:"primary_color,omitempty" json:"primary_color,omitempty"`
	SecondaryColor string `bson:"secondary_color,omitempty" json:"secondary_color,omitempty"`
	FontFamily     string `bson:"font_family,omitempty" json:"font_family,omitempty"`
	LogoURL        string `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
}

// CompanySettings contains company-specific configuration
type CompanySettings struct {
	DefaultLanguage      string `bson:"default_language" json:"default_language"`
	NotificationsEnabled bool   `bson:"notifications_enabled" json:"notifications_enabled"`
	CheckInReminderHour  int    `bson:"checkin_reminder_hour" json:"checkin_reminder_hour"`
}

// DefaultCompanySettings returns default settings for a new company
func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		DefaultLanguage:      "es",
		NotificationsEnabled: true,
		CheckInReminderHour:  9,
	}
}

// Company represents a client organization whose employees use the platform
// #DATA_ASSUMPTION: Slug generated from name, must be URL-safe lowercase alphanumeric with hyphens
// #CARDINALITY_ASSUMPTION: Company 1:N Profiles - one company has many employees
type Company struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	// Contact Information
	ContactEmail string `bson:"contact_email" json:"contact_email"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`

	// Subscription and branding
	Plan     SubscriptionPlan `bson:"plan" json:"plan"`
	Branding Branding         `bson:"branding" json:"branding"`
	Settings CompanySettings  `bson:"settings" json:"settings"`

	// Audit fields with soft delete support
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for companies
func (Company) CollectionName() string {
	return "companies"
}

// IsDeleted returns true if the company has been soft deleted
func (c *Company) IsDeleted() bool {
	return c.DeletedAt != nil
}

// BeforeCreate sets default values before inserting a new company
func (c *Company) BeforeCreate() {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	if c.Plan == "" {
		c.Plan = SubscriptionPlanBasic
	}
	if c.Settings.DefaultLanguage == "" {
		c.Settings = DefaultCompanySettings()
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (c *Company) BeforeUpdate() {
	c.UpdatedAt = time.Now().UTC()
}

// SoftDelete marks the company as deleted
func (c *Company) SoftDelete() {
	now := time.Now().UTC()
	c.DeletedAt = &now
	c.UpdatedAt = now
}

// HasBranding returns true if the company has customized any branding field
func (c *Company) HasBranding() bool {
	return c.Branding.PrimaryColor != "" || c.Branding.SecondaryColor != "" ||
		c.Branding.FontFamily != "" || c.Branding.LogoURL != ""
}
