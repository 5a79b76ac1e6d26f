package cashdrawer

import "github.com/erp/cashdrawer/internal/domain/shared"

// Error codes for the cash drawer domain. Validation and authorization
// failures are distinct so the edge can re-prompt instead of re-rendering.
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeAuthorization          = "AUTHORIZATION_ERROR"
	ErrCodeChangeInfeasible       = "CHANGE_INFEASIBLE"
	ErrCodePersistence            = "PERSISTENCE_ERROR"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeRegisterNotFound       = "REGISTER_NOT_FOUND"
	ErrCodeDuplicateSubmission    = "DUPLICATE_SUBMISSION"
)

// NewValidationError creates a validation failure with the domain code
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeValidation, message)
}

// NewAuthorizationError creates an authorization failure with the domain code
func NewAuthorizationError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeAuthorization, message)
}

// ErrConcurrentModification is returned when a register mutation loses an
// optimistic-lock race
var ErrConcurrentModification = shared.NewDomainError(
	ErrCodeConcurrentModification,
	"Register was modified by another operation, re-read and retry",
)
