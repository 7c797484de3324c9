package types

import "time"

// Column bounds enforced by both validation and the users table schema.
const (
	MaxEmailLen    = 120
	MaxPasswordLen = 128
	MaxFullNameLen = 80
	MaxRoleLen     = 10
)

// DefaultRole is assigned to every newly created account. Role is not
// caller-settable at creation time.
const DefaultRole = "user"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's email address, stored normalized and unique.
	Email string `json:"email" db:"email"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name" db:"full_name"`

	// Role indicates the user's authorization level within the system
	// (e.g., "admin", "user").
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
