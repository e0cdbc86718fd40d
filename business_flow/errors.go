// Package businessflow contains the core business logic and use cases of the lead tracker
package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrAdminRequired         = errors.New("admin role required")
	ErrAdminPasswordMismatch = errors.New("admin password does not match")

	// Campaign-related errors
	ErrCampaignNotFound            = errors.New("campaign not found")
	ErrCampaignNameRequired        = errors.New("campaign name is required")
	ErrCampaignTypeRequired        = errors.New("campaign type is required")
	ErrCampaignTypeInvalid         = errors.New("campaign type is invalid")
	ErrCampaignDescriptionRequired = errors.New("campaign description is required")
	ErrCampaignStartDateRequired   = errors.New("campaign start date is required")
	ErrCampaignEndDateRequired     = errors.New("campaign end date is required")
	ErrInvalidCampaignDate         = errors.New("campaign date must be YYYY-MM-DD")
	ErrInvalidDateRange            = errors.New("end date must not be before start date")
	ErrCampaignUpdateRequired      = errors.New("at least one field must be provided for update")
	ErrConfirmNameMismatch         = errors.New("confirmation does not match campaign name")
	ErrCampaignAccessDenied        = errors.New("campaign access denied")
	ErrCampaignIDMismatch          = errors.New("every campaign_id in the upload must equal the allocated campaign id")
	ErrAssignedICColumnMissing     = errors.New("upload has no assigned_ic column")
	ErrCampaignIDColumnMissing     = errors.New("upload has no campaign_id column")
	ErrInvalidLeadUpload           = errors.New("lead upload could not be read")
	ErrLeadUploadEmpty             = errors.New("lead upload has no rows")

	// Lead-related errors
	ErrLeadNotFound     = errors.New("lead not found")
	ErrLeadAccessDenied = errors.New("lead is not assigned to you in this campaign")
	ErrNoContactEdits   = errors.New("no contact edits submitted")

	// Coordination errors
	ErrCoordinatorClosed = errors.New("store coordinator is closed")
	ErrLockNotAcquired   = errors.New("store lock not acquired")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// ContactValidationError rejects a batch of contact edits. Each slice holds lead ids.
type ContactValidationError struct {
	RequiredViolations  []string
	ForbiddenViolations []string
	InvalidStatus       []string
	Malformed           []string
}

func (e *ContactValidationError) Error() string {
	var parts []string
	if len(e.RequiredViolations) > 0 {
		parts = append(parts, fmt.Sprintf("contact date and time required for %s", strings.Join(e.RequiredViolations, ", ")))
	}
	if len(e.ForbiddenViolations) > 0 {
		parts = append(parts, fmt.Sprintf("contact date and time must be empty for %s", strings.Join(e.ForbiddenViolations, ", ")))
	}
	if len(e.InvalidStatus) > 0 {
		parts = append(parts, fmt.Sprintf("unknown status for %s", strings.Join(e.InvalidStatus, ", ")))
	}
	if len(e.Malformed) > 0 {
		parts = append(parts, fmt.Sprintf("malformed contact date or time for %s", strings.Join(e.Malformed, ", ")))
	}
	if len(parts) == 0 {
		return "contact edits rejected"
	}
	return "contact edits rejected: " + strings.Join(parts, "; ")
}

// Empty reports whether no rule was violated
func (e *ContactValidationError) Empty() bool {
	return len(e.RequiredViolations) == 0 &&
		len(e.ForbiddenViolations) == 0 &&
		len(e.InvalidStatus) == 0 &&
		len(e.Malformed) == 0
}

// AsContactValidationError extracts the validation error from a wrapped chain
func AsContactValidationError(err error) (*ContactValidationError, bool) {
	var cve *ContactValidationError
	if errors.As(err, &cve) {
		return cve, true
	}
	return nil, false
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsAdminRequired(err error) bool {
	return errors.Is(err, ErrAdminRequired)
}

func IsAdminPasswordMismatch(err error) bool {
	return errors.Is(err, ErrAdminPasswordMismatch)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

// IsCampaignValidation groups the field-level campaign form errors
func IsCampaignValidation(err error) bool {
	return errors.Is(err, ErrCampaignNameRequired) ||
		errors.Is(err, ErrCampaignTypeRequired) ||
		errors.Is(err, ErrCampaignTypeInvalid) ||
		errors.Is(err, ErrCampaignDescriptionRequired) ||
		errors.Is(err, ErrCampaignStartDateRequired) ||
		errors.Is(err, ErrCampaignEndDateRequired) ||
		errors.Is(err, ErrInvalidCampaignDate) ||
		errors.Is(err, ErrCampaignUpdateRequired)
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

func IsConfirmNameMismatch(err error) bool {
	return errors.Is(err, ErrConfirmNameMismatch)
}

func IsCampaignIDMismatch(err error) bool {
	return errors.Is(err, ErrCampaignIDMismatch)
}

// IsInvalidLeadUpload groups every reason an uploaded lead file is refused
func IsInvalidLeadUpload(err error) bool {
	return errors.Is(err, ErrInvalidLeadUpload) ||
		errors.Is(err, ErrAssignedICColumnMissing) ||
		errors.Is(err, ErrCampaignIDColumnMissing) ||
		errors.Is(err, ErrLeadUploadEmpty)
}

func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func IsLeadAccessDenied(err error) bool {
	return errors.Is(err, ErrLeadAccessDenied)
}

func IsNoContactEdits(err error) bool {
	return errors.Is(err, ErrNoContactEdits)
}

func IsContactValidation(err error) bool {
	_, ok := AsContactValidationError(err)
	return ok
}

func IsCoordinatorClosed(err error) bool {
	return errors.Is(err, ErrCoordinatorClosed)
}

func IsLockNotAcquired(err error) bool {
	return errors.Is(err, ErrLockNotAcquired)
}
