// Package services provides business logic implementations.
// mail_service.go implements email delivery via the template mail API.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ebi360/bs360_backend/internal/config"
	"github.com/ebi360/bs360_backend/internal/models"
)

// TemplateEmailRequest represents a template-based email request to the mail API.
// #INTEGRATION_POINT: Maps to POST /email/template endpoint
type TemplateEmailRequest struct {
	Recipient  string                 `json:"recipient"`
	Subject    string                 `json:"subject"`
	Template   string                 `json:"template"`
	Variables  map[string]interface{} `json:"variables"`
	Project    string                 `json:"project,omitempty"`
	SenderName string                 `json:"sender_name,omitempty"`
}

// EmailResponse represents the API response after sending an email.
type EmailResponse struct {
	Message     string `json:"message"`
	ReceptionID string `json:"reception_id"`
}

// MailErrorResponse represents an error response from the mail API.
type MailErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPMailService implements MailService using HTTP calls to the mail API.
// #INTEGRATION_POINT: Real mail service for production
type HTTPMailService struct {
	config *config.MailConfig
	client *http.Client
}

// NewHTTPMailService creates a new HTTP mail service.
func NewHTTPMailService(cfg *config.MailConfig) *HTTPMailService {
	return &HTTPMailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ MailService = (*HTTPMailService)(nil)

// SendMagicLink sends a magic link email via the Spanish login template.
// Branding is optional; without it the template falls back to platform defaults.
func (m *HTTPMailService) SendMagicLink(ctx context.Context, email, name, magicLink string, branding *models.Branding) error {
	variables := map[string]interface{}{
		"full_name":  name,
		"login_link": magicLink,
	}
	applyBranding(variables, branding)

	return m.sendTemplateEmail(ctx, email, m.config.LoginLinkMailES, "Tu enlace de acceso a Bs360", variables)
}

// SendInvitation sends an employee invitation email via the Spanish invite template.
func (m *HTTPMailService) SendInvitation(ctx context.Context, email, companyName, inviteLink string, branding *models.Branding) error {
	variables := map[string]interface{}{
		"company_name": companyName,
		"invite_link":  inviteLink,
	}
	applyBranding(variables, branding)

	subject := fmt.Sprintf("%s te invita a Bs360", companyName)
	return m.sendTemplateEmail(ctx, email, m.config.InviteMailES, subject, variables)
}

// applyBranding injects company branding variables when present
func applyBranding(variables map[string]interface{}, branding *models.Branding) {
	if branding == nil {
		return
	}
	if branding.LogoURL != "" {
		variables["logo_url"] = branding.LogoURL
	}
	if branding.PrimaryColor != "" {
		variables["primary_color"] = branding.PrimaryColor
	}
}

// sendTemplateEmail sends a template-based email to the mail API.
func (m *HTTPMailService) sendTemplateEmail(ctx context.Context, recipient, template, subject string, variables map[string]interface{}) error {
	req := TemplateEmailRequest{
		Recipient:  recipient,
		Subject:    subject,
		Template:   template,
		Variables:  variables,
		Project:    m.config.Project,
		SenderName: m.config.SenderName,
	}

	url := m.config.BaseURL + "/email/template"

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", m.config.APIKey)

	log.Printf("[MAIL] Sending template email: recipient=%s, template=%s, subject=%s", recipient, template, subject)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		log.Printf("[MAIL] HTTP request failed: %v", err)
		return fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	// The mail API returns 202 Accepted on success
	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)

		var errorResp MailErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil {
			log.Printf("[MAIL] API error (status %d): %s - %s", resp.StatusCode, errorResp.Error, errorResp.Message)
			return fmt.Errorf("mail API error: %s - %s", errorResp.Error, errorResp.Message)
		}

		log.Printf("[MAIL] API error (status %d): %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("mail API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResp EmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&emailResp); err != nil {
		log.Printf("[MAIL] Failed to decode success response: %v", err)
		return fmt.Errorf("failed to decode mail API response: %w", err)
	}

	log.Printf("[MAIL] Email sent successfully: recipient=%s, reception_id=%s", recipient, emailResp.ReceptionID)
	return nil
}

// MockMailService logs emails instead of sending them.
// #IMPLEMENTATION_DECISION: Used in development and in tests
type MockMailService struct {
	SentMagicLinks  []string
	SentInvitations []string
}

// NewMockMailService creates a new mock mail service.
func NewMockMailService() *MockMailService {
	return &MockMailService{}
}

var _ MailService = (*MockMailService)(nil)

// SendMagicLink records the magic link instead of sending it.
func (m *MockMailService) SendMagicLink(ctx context.Context, email, name, magicLink string, branding *models.Branding) error {
	m.SentMagicLinks = append(m.SentMagicLinks, email)
	log.Printf("[MOCK MAIL] Magic link for %s (%s): %s", email, name, magicLink)
	return nil
}

// SendInvitation records the invitation instead of sending it.
func (m *MockMailService) SendInvitation(ctx context.Context, email, companyName, inviteLink string, branding *models.Branding) error {
	m.SentInvitations = append(m.SentInvitations, email)
	log.Printf("[MOCK MAIL] Invitation for %s from %s: %s", email, companyName, inviteLink)
	return nil
}
