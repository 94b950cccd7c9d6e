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

// Common domain errors
var (
	ErrNotFound       = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists  = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput   = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrAuthFailed     = NewDomainError("AUTH_FAILED", "Provider credential missing or invalid")
	ErrUpstreamFailed = NewDomainError("UPSTREAM_FAILED", "Provider request failed")
	ErrValidation     = NewDomainError("VALIDATION_FAILED", "Row failed validation")
	ErrConflict       = NewDomainError("CONFLICT", "Natural key conflict outside upsert path")
	ErrConfigMissing  = NewDomainError("CONFIG_MISSING", "Required configuration is missing")
)
