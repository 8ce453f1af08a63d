package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when input fails format rules.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotConfirmed is returned when logging into an account that still
	// holds a confirmation token.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	// ErrInvalidToken is returned when a refresh or confirmation token is
	// absent, mismatched or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidOrExpiredToken is returned when a password-reset token is
	// absent, mismatched or expired.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrUserNotFound is returned by administrative operations on unknown ids.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstreamUnavailable is returned by the deactivation bridge when the
	// products collaborator cannot be reached. It is logged, never surfaced
	// as a failure of the deactivation itself.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailNotConfirmed):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "EMAIL_NOT_CONFIRMED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_OR_EXPIRED_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
