// Package auth implements email/password authentication and the
// session middleware guarding the API.
package auth

import "time"

// User is an account that owns ledger, pricing and drug data.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
