package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUsernameTaken    = errors.New("username already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Score errors
	ErrScoreNotFound = errors.New("score not found")
	ErrNegativeScore = errors.New("score must not be negative")
	ErrScoreTooLarge = errors.New("score is too large")
	ErrInvalidGameID = errors.New("invalid game id")
)
