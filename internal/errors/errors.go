package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdvertNotFound is returned when an advert is not found.
	ErrAdvertNotFound = errors.New("advert not found")
	// ErrNoMessages is returned when a conversation has no messages.
	ErrNoMessages = errors.New("no messages between users")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email address already exists")
	// ErrAdvertUnavailable is returned when collecting an advert that has
	// expired, been deleted, or already been collected.
	ErrAdvertUnavailable = errors.New("advert is no longer available")
	// ErrOwnAdvert is returned when a user tries to collect their own advert.
	ErrOwnAdvert = errors.New("cannot collect your own advert")
	// ErrForbidden is returned when the requester's role does not permit the
	// operation.
	ErrForbidden = errors.New("forbidden")
	// ErrAccountDeactivated is returned when a deactivated account attempts
	// to log in.
	ErrAccountDeactivated = errors.New("account no longer exists")
	// ErrAlreadyDeactivated is returned when deactivating an account whose
	// role is already off.
	ErrAlreadyDeactivated = errors.New("account already deactivated")
	// ErrRoleEscalation is returned when a detail change would grant admin to
	// a non-admin.
	ErrRoleEscalation = errors.New("role cannot be changed to admin")
	// ErrEmptyMessage is returned when message contents are empty.
	ErrEmptyMessage = errors.New("message contents must not be empty")
	// ErrMessageTooLong is returned when message contents exceed the bound.
	ErrMessageTooLong = errors.New("message contents too long")
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

// MapErrorToHTTP maps domain errors to HTTP errors. Validation errors are
// handled at the handler edge; state conflicts map to 409 so callers can
// distinguish them from plain bad requests.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrAdvertNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ADVERT_NOT_FOUND")
	case errors.Is(err, ErrNoMessages):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NO_MESSAGES")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrAdvertUnavailable):
		return NewHTTPError(http.StatusConflict, err.Error(), "ADVERT_UNAVAILABLE")
	case errors.Is(err, ErrOwnAdvert):
		return NewHTTPError(http.StatusConflict, err.Error(), "OWN_ADVERT")
	case errors.Is(err, ErrAlreadyDeactivated):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_DEACTIVATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrRoleEscalation):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ROLE_ESCALATION")
	case errors.Is(err, ErrAccountDeactivated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "ACCOUNT_DEACTIVATED")
	case errors.Is(err, ErrEmptyMessage):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMPTY_MESSAGE")
	case errors.Is(err, ErrMessageTooLong):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MESSAGE_TOO_LONG")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
