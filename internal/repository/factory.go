// Package repository provides data access layer factories
// #IMPLEMENTATION_DECISION: Factory functions wrap raw MongoDB constructors for our database.Client
package repository

import (
	"github.com/ebi360/bs360_backend/internal/database"
)

// NewCompanyRepository creates a new company repository using our database client
func NewCompanyRepository(client *database.Client) CompanyRepository {
	return NewMongoCompanyRepository(client.Database())
}

// NewProfileRepository creates a new profile repository using our database client
func NewProfileRepository(client *database.Client) ProfileRepository {
	return NewMongoProfileRepository(client.Database())
}

// NewSurveyRepository creates a new survey repository using our database client
func NewSurveyRepository(client *database.Client) SurveyRepository {
	return NewMongoSurveyRepository(client.Database())
}

// NewQuestionRepository creates a new question repository using our database client
func NewQuestionRepository(client *database.Client) QuestionRepository {
	return NewMongoQuestionRepository(client.Database())
}

// NewResultRepository creates a new result repository using our database client
func NewResultRepository(client *database.Client) ResultRepository {
	return NewMongoResultRepository(client.Database())
}

// NewSecureLinkRepository creates a new secure link repository using our database client
func NewSecureLinkRepository(client *database.Client) SecureLinkRepository {
	return NewMongoSecureLinkRepository(client.Database())
}

// NewAuditRepository creates a new audit repository using our database client
func NewAuditRepository(client *database.Client) AuditRepository {
	return NewMongoAuditRepository(client.Database())
}
