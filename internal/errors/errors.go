package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when an operation needs a principal and none is present.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUserNotFound is returned when a login username does not resolve to an account.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailNotConfirmed is returned when the account email has not been confirmed yet.
	ErrEmailNotConfirmed = errors.New("your email address has not been confirmed yet")
	// ErrAccountInactive is returned when the account is marked passive.
	ErrAccountInactive = errors.New("user status is passive")
	// ErrInvalidCredentials is returned when the password does not match or the account is locked out.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrMissingToken is returned when a guarded request carries no token.
	ErrMissingToken = errors.New("you should login first")
	// ErrInvalidToken is returned when a token fails parsing or validation.
	ErrInvalidToken = errors.New("token is invalid")
	// ErrForbidden is returned when the principal lacks the required claim or role.
	ErrForbidden = errors.New("you are not authorized to access this page")
	// ErrModerationUnavailable marks a failed moderation backend call. It never reaches clients.
	ErrModerationUnavailable = errors.New("moderation backend unavailable")

	// ErrUserAlreadyExists is returned when the username or email is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidActivationCode is returned when the activation code does not match.
	ErrInvalidActivationCode = errors.New("invalid activation code")
	// ErrInvalidResetToken is returned when a password reset token is unknown, used or expired.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")
	// ErrInvalidCommentStatus is returned for a status outside the comment state set.
	ErrInvalidCommentStatus = errors.New("invalid comment status")
	// ErrRecipientNotFound is returned when a message receiver email has no account.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrInvalidOAuthState is returned when a federated login callback state is unknown.
	ErrInvalidOAuthState = errors.New("invalid oauth state")
	// ErrProviderDisabled is returned when federated login is not configured.
	ErrProviderDisabled = errors.New("external login provider is not configured")
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

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrUserNotFound, http.StatusUnauthorized, "USER_NOT_FOUND"},
	{ErrEmailNotConfirmed, http.StatusUnauthorized, "EMAIL_NOT_CONFIRMED"},
	{ErrAccountInactive, http.StatusUnauthorized, "ACCOUNT_INACTIVE"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrMissingToken, http.StatusUnauthorized, "MISSING_TOKEN"},
	{ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
	{ErrInvalidActivationCode, http.StatusBadRequest, "INVALID_ACTIVATION_CODE"},
	{ErrInvalidResetToken, http.StatusBadRequest, "INVALID_RESET_TOKEN"},
	{ErrInvalidCommentStatus, http.StatusBadRequest, "INVALID_COMMENT_STATUS"},
	{ErrRecipientNotFound, http.StatusBadRequest, "RECIPIENT_NOT_FOUND"},
	{ErrInvalidOAuthState, http.StatusBadRequest, "INVALID_OAUTH_STATE"},
	{ErrProviderDisabled, http.StatusNotFound, "PROVIDER_DISABLED"},
}

// MapErrorToHTTP maps domain errors (possibly wrapped) to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
