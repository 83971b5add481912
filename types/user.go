package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Optional; unique when set.
	Email string `json:"email,omitempty" db:"email"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name,omitempty" db:"full_name"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Active indicates whether the account may log in.
	Active bool `json:"active" db:"active"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Groups holds the user's group memberships, eager-loaded from
	// storage. Authorization decisions read this field only; the session
	// token never carries it.
	Groups []Group `json:"groups,omitempty"`
}

// InGroup reports whether the user is a member of the named group.
// The match is exact and case-sensitive.
func (u User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
