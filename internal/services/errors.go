package services

import (
	"errors"
	"fmt"

	apperrors "github.com/elearnhq/progression-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Quiz specific errors
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrQuizSecretMismatch  = errors.New("quiz access secret does not match")
	ErrQuizNotEditable     = errors.New("quiz cannot be modified - has existing attempts")
	ErrQuestionInvalid     = errors.New("invalid question content for type")
	ErrClassroomNotFound   = errors.New("classroom not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptAccessDenied = errors.New("access denied to attempt")

	// Ledger specific errors
	ErrLedgerNotFound      = errors.New("progress ledger not found")
	ErrLedgerExists        = errors.New("progress ledger already provisioned")
	ErrNegativePoints      = errors.New("points amount must be non-negative")
	ErrStudentNotFound     = errors.New("student not found")
	ErrEmptyBadgeID        = errors.New("badge id must not be empty")
	ErrAttendanceForbidden = errors.New("only the classroom teacher can mark attendance")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrLedgerNotFound) ||
		errors.Is(err, ErrClassroomNotFound) ||
		errors.Is(err, ErrStudentNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrQuizSecretMismatch) ||
		errors.Is(err, ErrAttemptAccessDenied) ||
		errors.Is(err, ErrAttendanceForbidden) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrNegativePoints) ||
		errors.Is(err, ErrEmptyBadgeID) ||
		errors.Is(err, ErrQuestionInvalid) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrLedgerExists) ||
		errors.Is(err, ErrQuizNotEditable)
}
