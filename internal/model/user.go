// Package model defines the data structures used throughout the application.
package model

import "time"

// Sex values as stored and as accepted from clients. Each prediction model
// has its own numeric encoding for sex (see internal/predictor); the model
// layer keeps the human-readable form.
const (
	SexMale   = "male"
	SexFemale = "female"
)

// User represents a registered account.
//
// The username is the external identifier (unique, chosen at sign-up) and the
// foreign key used by health records and the audit log. We still generate an
// internal xid so primary keys stay uniform across tables.
//
// Users are immutable once created: there is no update or delete path, only
// sign-up. PasswordHash is a bcrypt digest; the plaintext never reaches the
// repository, and the hash is never serialized to JSON.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
