// Package apperror defines the error taxonomy shared by every talenthub package.
// Services return *AppError values; the HTTP layer turns them into a status code and
// a small JSON body without ever exposing the wrapped cause to the caller.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error. The HTTP status is derived from it.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the persistence store
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError means no identity could be resolved (missing, malformed, expired or forged credential)
	AuthError
	// UnauthorizedError means an identity was resolved but the guard denied the operation
	UnauthorizedError
	// NotFoundError represents a missing resource or a missing profile for a resolved identity
	NotFoundError
	// ValidationError represents malformed input or a failed state precondition
	ValidationError
	// BadRequestError represents a request that could not be parsed at all
	BadRequestError
	// InternalError represents a generic internal server error
	InternalError
	// ExternalServiceError represents an error from an external service
	ExternalServiceError
	// MigrationError represents an error during database migrations
	MigrationError
	// ConflictError represents a uniqueness violation, e.g. a duplicate application
	ConflictError
	// RateLimitError is returned when a caller exceeds a request budget
	RateLimitError
	// TimeoutError is returned when a store call on a mutating path ran out of time.
	// The caller may retry.
	TimeoutError
)

// Public messages. Authentication failures always carry the same text so a caller
// cannot tell a forged token from an expired one.
const (
	MsgUnauthenticated    = "unauthorized"
	MsgInvalidCredentials = "invalid phone or password"
	MsgInternal           = "internal server error"
	MsgTimeout            = "the operation timed out, please retry"
	MsgRateLimited        = "too many requests"
)

// AppError is the error type every service returns.
// Message is safe to show to API clients; Err is the underlying cause and is only logged.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
}

// Error returns the string representation of the error, including the cause.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so errors.Is / errors.As can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case UnauthorizedError:
		// 401 is "who are you?", 403 is "I know who you are and the answer is no".
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	case ExternalServiceError:
		return http.StatusBadGateway
	case DatabaseError, ConfigError, MigrationError, InternalError, TimeoutError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether repeating the same request may succeed.
func (e *AppError) Retryable() bool {
	return e.Type == TimeoutError
}

// NewAppError creates a new AppError. Prefer the typed constructors below.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError (for authentication issues).
// The message is kept for logs; ToResponse always renders MsgUnauthenticated.
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewUnauthenticated is the canonical 401 returned by the session middleware.
func NewUnauthenticated() *AppError {
	return NewAppError(AuthError, MsgUnauthenticated, nil)
}

// NewInvalidCredentials is the 401 returned by login for an unknown phone or a wrong password.
func NewInvalidCredentials() *AppError {
	return NewAppError(AuthError, MsgInvalidCredentials, nil)
}

// NewUnauthorizedError creates a new UnauthorizedError (for authorization issues, 403)
func NewUnauthorizedError(message string, underlyingError error) *AppError {
	return NewAppError(UnauthorizedError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewExternalServiceError creates a new ExternalServiceError
func NewExternalServiceError(message string, underlyingError error) *AppError {
	return NewAppError(ExternalServiceError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError() *AppError {
	return NewAppError(RateLimitError, MsgRateLimited, nil)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string, underlyingError error) *AppError {
	return NewAppError(TimeoutError, message, underlyingError)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error" example:"job not found"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ToResponse converts an AppError to the client-facing body.
// 401 and 5xx responses use fixed texts; the rest surface Message as-is.
func (e *AppError) ToResponse() ErrorResponse {
	switch {
	case e.Type == AuthError:
		// Login may say "invalid phone or password"; nothing else reveals why auth failed.
		if e.Message == MsgInvalidCredentials {
			return ErrorResponse{Error: MsgInvalidCredentials}
		}
		return ErrorResponse{Error: MsgUnauthenticated}
	case e.Type == TimeoutError:
		return ErrorResponse{Error: MsgTimeout, Retryable: true}
	case e.StatusCode() >= http.StatusInternalServerError && e.Type != ExternalServiceError:
		return ErrorResponse{Error: MsgInternal}
	default:
		return ErrorResponse{Error: e.Message}
	}
}

// FromError finds an *AppError anywhere in err's chain.
// Context deadline errors that were never classified are promoted to TimeoutError.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("deadline exceeded", err), true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool { return Is(err, NotFoundError) }

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool { return Is(err, AuthError) }

// IsUnauthorizedError checks if an error is an UnauthorizedError (authorization problem)
func IsUnauthorizedError(err error) bool { return Is(err, UnauthorizedError) }

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool { return Is(err, ValidationError) }

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool { return Is(err, ConflictError) }

// IsTimeout checks if an error is a Timeout error
func IsTimeout(err error) bool { return Is(err, TimeoutError) }
