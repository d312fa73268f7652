package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized          = errors.New("authentication required")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrTokenInvalid          = errors.New("invalid token")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrSigningKeyUnavailable = errors.New("signing key unavailable")
	ErrAccountNotApproved    = errors.New("account is not active")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed  = errors.New("validation failed")
	ErrBadRequest        = errors.New("bad request")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Entity errors
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrFacultyNotFound     = errors.New("faculty not found")
	ErrChatNotFound        = errors.New("chat not found")
	ErrMessageNotFound     = errors.New("chat message not found")
	ErrIssueNotFound       = errors.New("issue not found")
	ErrFeedbackNotFound    = errors.New("feedback not found")
	ErrInstructionNotFound = errors.New("chatbot instruction not found")
)

// notFoundErrors lists entity errors that map onto ErrResourceNotFound.
var notFoundErrors = []error{
	ErrAccountNotFound,
	ErrStudentNotFound,
	ErrAdminNotFound,
	ErrFacultyNotFound,
	ErrChatNotFound,
	ErrMessageNotFound,
	ErrIssueNotFound,
	ErrFeedbackNotFound,
	ErrInstructionNotFound,
}

// IsNotFound reports whether err is a generic or entity-specific not found error.
func IsNotFound(err error) bool {
	return Is(err, ErrResourceNotFound, notFoundErrors...)
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for a rejected payload with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
