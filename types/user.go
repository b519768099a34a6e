package types

import "time"

// User represents an account in the system.
// Accounts are created at signup and immutable afterwards; there are no
// update or delete paths.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Username is the display name chosen at signup.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Uniqueness is enforced by the
	// store at creation time.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
