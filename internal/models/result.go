package models

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinAnswerValue and MaxAnswerValue bound valid check-in responses
const (
	MinAnswerValue = 1
	MaxAnswerValue = 5
)

// IsValidAnswerValue reports whether v is an acceptable response value
func IsValidAnswerValue(v int) bool {
	return v >= MinAnswerValue && v <= MaxAnswerValue
}

// Result is an immutable snapshot of one completed survey or check-in
// #DATA_ASSUMPTION: Results are append-only history, never updated or deleted;
// concurrent completions by the same user both persist
// #NORMALIZATION_DECISION: CompanyID denormalized so company reporting never joins profiles
// #NORMALIZATION_DECISION: Answers keyed by question number as string (BSON maps need string keys)
type Result struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	SurveyID  primitive.ObjectID  `bson:"survey_id" json:"survey_id"`
	CompanyID *primitive.ObjectID `bson:"company_id,omitempty" json:"company_id,omitempty"`

	GlobalScore  float64            `bson:"global_score" json:"global_score"`
	DomainScores map[string]float64 `bson:"domain_scores" json:"domain_scores"`
	Answers      map[string]int     `bson:"answers" json:"answers"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CollectionName returns the MongoDB collection name for results
func (Result) CollectionName() string {
	return "results"
}

// BeforeCreate sets default values before inserting a new result
func (r *Result) BeforeCreate() {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now().UTC()

	if r.DomainScores == nil {
		r.DomainScores = map[string]float64{}
	}
	if r.Answers == nil {
		r.Answers = map[string]int{}
	}
}

// SetAnswers stores an answer set keyed by question number
func (r *Result) SetAnswers(answers map[int]int) {
	r.Answers = make(map[string]int, len(answers))
	for number, value := range answers {
		r.Answers[strconv.Itoa(number)] = value
	}
}

// AnswerSet returns the stored answers keyed by question number.
// Entries with non-numeric keys are skipped.
func (r *Result) AnswerSet() map[int]int {
	answers := make(map[int]int, len(r.Answers))
	for key, value := range r.Answers {
		number, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		answers[number] = value
	}
	return answers
}

// DomainScore returns the score for a domain and whether it is present
func (r *Result) DomainScore(domain string) (float64, bool) {
	score, ok := r.DomainScores[domain]
	return score, ok
}

// AnswerCount returns the number of answered questions
func (r *Result) AnswerCount() int {
	return len(r.Answers)
}
