package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrInvalidCount rejects denomination counts that are not non-negative
// integers. Wrapped with the offending denomination where it is raised.
var ErrInvalidCount = NewDomainError("INVALID_COUNT", "Denomination counts must be non-negative integers")
