package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionType distinguishes the perspective a question measures
// #IMPLEMENTATION_DECISION: PERSONAL measures personal experience, ORGANIZATIONAL measures
// organizational factors, MIXED blends both (exempt from the weight-pair invariant)
type QuestionType string

const (
	QuestionTypePersonal       QuestionType = "PERSONAL"
	QuestionTypeOrganizational QuestionType = "ORGANIZATIONAL"
	QuestionTypeMixed          QuestionType = "MIXED"
)

// MarshalJSON converts QuestionType to lowercase for JSON serialization
func (qt QuestionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qt)))
}

// UnmarshalJSON converts lowercase JSON to QuestionType
func (qt *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qt = QuestionType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionType is a valid value
func (qt QuestionType) IsValid() bool {
	switch qt {
	case QuestionTypePersonal, QuestionTypeOrganizational, QuestionTypeMixed:
		return true
	}
	return false
}

// WeightPairTolerance is the allowed deviation of personal_weight + org_weight from 1.0
const WeightPairTolerance = 0.001

// Question represents a single survey question with its scoring coefficients
// #DATA_ASSUMPTION: Number is the display/sequence number referenced by algorithm domains,
// unique within a survey
type Question struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SurveyID primitive.ObjectID `bson:"survey_id" json:"survey_id"`

	Number    int          `bson:"number" json:"number"`
	Domain    string       `bson:"domain" json:"domain"`
	Construct string       `bson:"construct,omitempty" json:"construct,omitempty"`
	Type      QuestionType `bson:"type" json:"type"`
	Text      string       `bson:"text" json:"text"`

	// Scoring coefficients
	Weight         float64 `bson:"weight" json:"weight"`
	Severity       float64 `bson:"severity" json:"severity"`
	PersonalWeight float64 `bson:"personal_weight" json:"personal_weight"`
	OrgWeight      float64 `bson:"org_weight" json:"org_weight"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for questions
func (Question) CollectionName() string {
	return "questions"
}

// BeforeCreate sets default values before inserting a new question
func (q *Question) BeforeCreate() {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now

	if q.Weight == 0 {
		q.Weight = 1
	}
	if q.Severity == 0 {
		q.Severity = 1
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (q *Question) BeforeUpdate() {
	q.UpdatedAt = time.Now().UTC()
}

// HasValidWeightPair checks personal_weight + org_weight against the 1.0 invariant.
// MIXED questions are exempt.
// #BUSINESS_RULE: Enforced at import validation, not at runtime
func (q *Question) HasValidWeightPair() bool {
	if q.Type == QuestionTypeMixed {
		return true
	}
	return math.Abs(q.PersonalWeight+q.OrgWeight-1.0) <= WeightPairTolerance
}

// IsPersonal returns true for personal-experience questions
func (q *Question) IsPersonal() bool {
	return q.Type == QuestionTypePersonal
}

// IsOrganizational returns true for organizational-factor questions
func (q *Question) IsOrganizational() bool {
	return q.Type == QuestionTypeOrganizational
}
