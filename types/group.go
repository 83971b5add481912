package types

// AdminGroup is the distinguished group whose membership grants all
// administrative capabilities.
const AdminGroup = "administrators"

// Group represents a named set of users.
type Group struct {
	// ID is the unique identifier of the group.
	ID int `json:"id" db:"id"`

	// Name is the unique name of the group.
	Name string `json:"name" db:"name"`

	// Members holds the usernames of the group's members when
	// eager-loaded from storage.
	Members []string `json:"members,omitempty"`
}
