package models

import "errors"

// Model validation and operation errors
var (
	// General errors
	ErrNotFound                = errors.New("resource not found")
	ErrAlreadyExists           = errors.New("resource already exists")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// Company errors
	ErrCompanyNotFound   = errors.New("company not found")
	ErrCompanyDeleted    = errors.New("company has been deleted")
	ErrInvalidPlan       = errors.New("invalid subscription plan")
	ErrSlugAlreadyExists = errors.New("company slug already exists")

	// Profile errors
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileDeleted     = errors.New("profile has been deleted")
	ErrProfileInactive    = errors.New("profile is inactive")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleNotPermitted   = errors.New("requested role is not permitted for this profile")

	// Secure link errors
	ErrSecureLinkNotFound = errors.New("secure link not found")
	ErrSecureLinkExpired  = errors.New("secure link has expired")
	ErrSecureLinkUsed     = errors.New("secure link has already been used")
	ErrSecureLinkInvalid  = errors.New("secure link is invalid")

	// Survey errors
	ErrSurveyNotFound      = errors.New("survey not found")
	ErrSurveyNotDraft      = errors.New("survey is not in draft status")
	ErrSurveyNotActive     = errors.New("survey is not active")
	ErrSurveyArchived      = errors.New("survey has been archived")
	ErrSurveyCodeExists    = errors.New("survey code already exists")
	ErrInvalidSurveyType   = errors.New("invalid survey type")
	ErrInvalidAlgorithm    = errors.New("invalid scoring algorithm")

	// Question errors
	ErrQuestionNotFound      = errors.New("question not found")
	ErrInvalidQuestionType   = errors.New("invalid question type")
	ErrUnknownQuestionNumber = errors.New("question number not defined in survey")

	// Answer/result errors
	ErrResultNotFound     = errors.New("result not found")
	ErrInvalidAnswerValue = errors.New("answer value must be between 1 and 5")
	ErrEmptyAnswerSet     = errors.New("answer set is empty")

	// Audit log errors
	ErrAuditLogNotFound = errors.New("audit log not found")
)

// IsNotFoundError returns true if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrSecureLinkNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrAuditLogNotFound)
}

// IsValidationError returns true if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrInvalidPlan) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidSurveyType) ||
		errors.Is(err, ErrInvalidAlgorithm) ||
		errors.Is(err, ErrInvalidQuestionType) ||
		errors.Is(err, ErrUnknownQuestionNumber) ||
		errors.Is(err, ErrInvalidAnswerValue) ||
		errors.Is(err, ErrEmptyAnswerSet)
}

// IsAuthError returns true if the error is an authentication/authorization error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrRoleNotPermitted) ||
		errors.Is(err, ErrProfileInactive) ||
		errors.Is(err, ErrProfileDeleted) ||
		errors.Is(err, ErrSecureLinkExpired) ||
		errors.Is(err, ErrSecureLinkUsed) ||
		errors.Is(err, ErrSecureLinkInvalid)
}

// IsConflictError returns true if the error is a conflict/duplicate error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrSlugAlreadyExists) ||
		errors.Is(err, ErrEmailAlreadyExists) ||
		errors.Is(err, ErrSurveyCodeExists)
}
