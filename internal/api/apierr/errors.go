package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/services/leaderboard"
	"github.com/mcoot/leaderboard-go/internal/services/score"
	"github.com/mcoot/leaderboard-go/internal/services/session"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotLoggedIn        = "NOT_LOGGED_IN"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}


// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrNegativeScore),
		errors.Is(err, model.ErrScoreTooLarge),
		errors.Is(err, model.ErrInvalidGameID),
		errors.Is(err, identity.ErrInvalidUsername),
		errors.Is(err, identity.ErrPasswordTooLong):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: err.Error()}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeUsernameExists, Message: "Username already exists"}}

	// Authentication
	case errors.Is(err, identity.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid username or password"}}
	case errors.Is(err, session.ErrNotLoggedIn),
		errors.Is(err, score.ErrUnauthenticated):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeNotLoggedIn, Message: "Not logged in"}}

	// Collaborators
	case errors.Is(err, call.ErrServiceUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeServiceUnavailable, Message: "Service temporarily unavailable"}}
	case errors.Is(err, leaderboard.ErrQueryFailed):
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Could not load leaderboard"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewValidationError creates an invalid request error carrying field detail
func NewValidationError(message, detail string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message, Detail: detail}}
}

// NewNotLoggedInError creates a not-logged-in error
func NewNotLoggedInError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeNotLoggedIn, Message: "Not logged in"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
