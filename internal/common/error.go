// Package common defines shared sentinel errors and random helpers used by
// every GradeKeeper layer. Callers should use errors.Is to match the errors.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound         = errors.New("not found")
	ErrorAlreadyExists    = errors.New("already exists")
	ErrorReservedIdentity = errors.New("reserved identity")
	ErrorPersistence      = errors.New("persistence failure")

	// Authentication and authorization.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("you are not allowed to do that")

	// Input validation.
	ErrorValidation   = errors.New("validation error")
	ErrorInvalidGrade = errors.New("grade must be between 0 and 6")

	// Password reset flow.
	ErrorSuperUserReset = errors.New("the super-user password cannot be reset")
	ErrorWrongCode      = errors.New("wrong code")
	ErrorCodeExpired    = errors.New("code expired")
	ErrorTicketUsed     = errors.New("reset ticket already used")
)
