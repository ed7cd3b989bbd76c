package model

import "time"

// IdentityID uniquely identifies a registered user across the system
type IdentityID string

// Identity is a registered user, independent of any login session
type Identity struct {
	ID           IdentityID
	Username     string // unique, immutable after registration
	Subject      string // provider-facing identifier derived from Username
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}
