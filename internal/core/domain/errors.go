package domain

import "errors"

// Core error taxonomy. Every failure surfaced by the services wraps one of
// these sentinels so callers can branch with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("resource not found")
	ErrConsistency       = errors.New("derived field recompute failed")
)

// Common errors
var (
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
)

// Member errors
var (
	ErrMemberNotFound          = errors.New("member not found")
	ErrMemberAlreadyRegistered = errors.New("user already has a member record")
	ErrMemberNotActive         = errors.New("member is not active")
)

// Loan errors
var (
	ErrLoanNotFound    = errors.New("loan not found")
	ErrPaymentNotFound = errors.New("loan payment not found")
)

// Savings errors
var (
	ErrTransactionNotFound = errors.New("savings transaction not found")
	ErrInsufficientSavings = errors.New("withdrawal exceeds savings balance")
)
