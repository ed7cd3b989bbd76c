package model

import "time"

// Session is a server-held proof that a client authenticated as an identity
type Session struct {
	Token         string
	IdentityID    IdentityID
	Username      string
	Authenticated bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the session is past its fixed expiry
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Valid reports whether the session can gate an authenticated action
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Authenticated && s.IdentityID != "" && !s.Expired(now)
}
