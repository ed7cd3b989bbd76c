package handler

import (
	"net/http"

	"github.com/mcoot/leaderboard-go/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewValidationError creates an invalid request error with field detail
func NewValidationError(message, detail string) error {
	return apierr.NewValidationError(message, detail)
}
