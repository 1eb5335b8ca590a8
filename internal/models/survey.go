package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveyType classifies a survey's origin
// #IMPLEMENTATION_DECISION: BASE for platform surveys, REGULATORY for country-specific
// compliance surveys, CUSTOM for client-authored ones
type SurveyType string

const (
	SurveyTypeBase       SurveyType = "BASE"
	SurveyTypeRegulatory SurveyType = "REGULATORY"
	SurveyTypeCustom     SurveyType = "CUSTOM"
)

// MarshalJSON converts SurveyType to lowercase for JSON serialization
func (st SurveyType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(st)))
}

// UnmarshalJSON converts lowercase JSON to SurveyType
func (st *SurveyType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*st = SurveyType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the SurveyType is a valid value
func (st SurveyType) IsValid() bool {
	switch st {
	case SurveyTypeBase, SurveyTypeRegulatory, SurveyTypeCustom:
		return true
	}
	return false
}

// SurveyStatus represents the lifecycle status of a survey
// #IMPLEMENTATION_DECISION: DRAFT -> ACTIVE -> ARCHIVED lifecycle
type SurveyStatus string

const (
	SurveyStatusDraft    SurveyStatus = "DRAFT"
	SurveyStatusActive   SurveyStatus = "ACTIVE"
	SurveyStatusArchived SurveyStatus = "ARCHIVED"
)

// MarshalJSON converts SurveyStatus to lowercase for JSON serialization
func (ss SurveyStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(ss)))
}

// UnmarshalJSON converts lowercase JSON to SurveyStatus
func (ss *SurveyStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*ss = SurveyStatus(strings.ToUpper(s))
	return nil
}

// IsValid checks if the SurveyStatus is a valid value
func (ss SurveyStatus) IsValid() bool {
	switch ss {
	case SurveyStatusDraft, SurveyStatusActive, SurveyStatusArchived:
		return true
	}
	return false
}

// ScoringMethod identifies the scoring variant of a survey algorithm
// #IMPLEMENTATION_DECISION: Tagged variant instead of shape-sniffing the algorithm JSON;
// WEIGHTED_AVERAGE is the only implemented variant, new methods are added as new tags
type ScoringMethod string

// ScoringMethodWeightedAverage computes per-domain weighted means normalized to [0,10]
const ScoringMethodWeightedAverage ScoringMethod = "WEIGHTED_AVERAGE"

// MarshalJSON converts ScoringMethod to lowercase for JSON serialization
func (sm ScoringMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(sm)))
}

// UnmarshalJSON converts lowercase JSON to ScoringMethod
func (sm *ScoringMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*sm = ScoringMethod(strings.ToUpper(s))
	return nil
}

// IsValid checks if the ScoringMethod is a valid value
func (sm ScoringMethod) IsValid() bool {
	return sm == ScoringMethodWeightedAverage
}

// AlgorithmDomain groups survey questions into a named thematic domain
// #DATA_ASSUMPTION: Questions lists question numbers (not ObjectIDs) so the algorithm
// JSON stays portable across imports of the same survey
type AlgorithmDomain struct {
	Name      string  `bson:"name" json:"name"`
	Weight    float64 `bson:"weight" json:"weight"`
	Questions []int   `bson:"questions" json:"questions"`
}

// EffectiveWeight returns the domain weight, defaulting to 1 when unset
func (d AlgorithmDomain) EffectiveWeight() float64 {
	if d.Weight == 0 {
		return 1
	}
	return d.Weight
}

// Algorithm is the scoring descriptor embedded in a survey
// #BUSINESS_RULE: Domain weights need not sum to 1; the weighted average normalizes.
// Recommendations keys are "{domain}_{level}" or "{domain}".
type Algorithm struct {
	ScoringMethod   ScoringMethod      `bson:"scoring_method" json:"scoring_method"`
	Domains         []AlgorithmDomain  `bson:"domains" json:"domains"`
	Thresholds      map[string]float64 `bson:"thresholds,omitempty" json:"thresholds,omitempty"`
	Recommendations map[string]string  `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// DomainByName returns the domain with the given name, or nil
func (a *Algorithm) DomainByName(name string) *AlgorithmDomain {
	for i := range a.Domains {
		if a.Domains[i].Name == name {
			return &a.Domains[i]
		}
	}
	return nil
}

// ReferencesQuestion returns true if any domain lists the given question number
func (a *Algorithm) ReferencesQuestion(number int) bool {
	for _, d := range a.Domains {
		for _, q := range d.Questions {
			if q == number {
				return true
			}
		}
	}
	return false
}

// Survey represents a wellbeing survey definition with its embedded scoring algorithm
// #DATA_ASSUMPTION: Surveys are immutable once active (import a new version instead)
// #CARDINALITY_ASSUMPTION: Survey 1:N Questions, Survey 1:N Results
type Survey struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Identity
	Code        string `bson:"code" json:"code"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Version     int    `bson:"version" json:"version"`

	// Classification
	Type        SurveyType `bson:"type" json:"type"`
	Country     string     `bson:"country,omitempty" json:"country,omitempty"`
	Regulation  string     `bson:"regulation,omitempty" json:"regulation,omitempty"`
	IsBase      bool       `bson:"is_base" json:"is_base"`
	IsMandatory bool       `bson:"is_mandatory" json:"is_mandatory"`

	// Lifecycle
	Status SurveyStatus `bson:"status" json:"status"`

	// Scoring configuration
	Algorithm Algorithm `bson:"algorithm" json:"algorithm"`

	// Statistics (denormalized for dashboard)
	// #NORMALIZATION_DECISION: QuestionCount denormalized for dashboard performance
	QuestionCount int `bson:"question_count" json:"question_count"`

	// Audit fields
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	ActivatedAt *time.Time `bson:"activated_at,omitempty" json:"activated_at,omitempty"`
	ArchivedAt  *time.Time `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for surveys
func (Survey) CollectionName() string {
	return "surveys"
}

// BeforeCreate sets default values before inserting a new survey
func (s *Survey) BeforeCreate() {
	now := time.Now().UTC()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Status = SurveyStatusDraft

	if s.Version == 0 {
		s.Version = 1
	}
	if s.Algorithm.ScoringMethod == "" {
		s.Algorithm.ScoringMethod = ScoringMethodWeightedAverage
	}
	if s.Algorithm.Domains == nil {
		s.Algorithm.Domains = []AlgorithmDomain{}
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (s *Survey) BeforeUpdate() {
	s.UpdatedAt = time.Now().UTC()
}

// Activate promotes a draft survey to active
func (s *Survey) Activate() error {
	if s.Status != SurveyStatusDraft {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	s.Status = SurveyStatusActive
	s.ActivatedAt = &now
	s.UpdatedAt = now
	return nil
}

// Archive freezes an active survey from new assignments
// #BUSINESS_RULE: Archiving does not touch historical results
func (s *Survey) Archive() error {
	if s.Status != SurveyStatusActive {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	s.Status = SurveyStatusArchived
	s.ArchivedAt = &now
	s.UpdatedAt = now
	return nil
}

// IsDraft returns true if the survey is in draft status
func (s *Survey) IsDraft() bool {
	return s.Status == SurveyStatusDraft
}

// IsActive returns true if the survey is active
func (s *Survey) IsActive() bool {
	return s.Status == SurveyStatusActive
}

// IsArchived returns true if the survey is archived
func (s *Survey) IsArchived() bool {
	return s.Status == SurveyStatusArchived
}

// CanBeEdited returns true if the survey can be edited (draft only)
func (s *Survey) CanBeEdited() bool {
	return s.IsDraft()
}

// CanBeDeleted returns true if the survey can be deleted (draft only)
func (s *Survey) CanBeDeleted() bool {
	return s.IsDraft()
}

// AcceptsResponses returns true if new check-ins may be recorded against this survey
func (s *Survey) AcceptsResponses() bool {
	return s.IsActive()
}
