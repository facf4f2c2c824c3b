package models

import "time"

// Role is the coarse permission tier a principal acts under.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDataManager Role = "data_manager"
	RoleViewer      Role = "viewer"
)

// Principal carries the claims of an authenticated actor. It is produced by
// the authentication collaborator and trusted as given; nothing in this
// module validates credentials. Immutable per request.
type Principal struct {
	ID          string   `json:"id" validate:"required"`
	Username    string   `json:"username" validate:"required"`
	Role        Role     `json:"role" validate:"required,oneof=admin data_manager viewer"`
	Location    string   `json:"location" validate:"required"`
	Permissions []string `json:"permissions,omitempty"`
}

// AccessibleLocations returns the locations this principal may act in.
// Permissions defaults to the home location when absent.
func (p Principal) AccessibleLocations() []string {
	if len(p.Permissions) == 0 {
		return []string{p.Location}
	}
	return p.Permissions
}

// User is a directory record. The directory exists so role-changing and
// deleting operations can enforce the surviving-admin invariant; credential
// material lives with the excluded auth collaborator.
type User struct {
	ID          string    `json:"id" validate:"required"`
	Username    string    `json:"username" validate:"required,min=2,max=64"`
	Role        Role      `json:"role" validate:"required,oneof=admin data_manager viewer"`
	Location    string    `json:"location" validate:"required"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Principal derives the request-scoped claims for this user.
func (u User) Principal() Principal {
	return Principal{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Location:    u.Location,
		Permissions: u.Permissions,
	}
}

// UserCollection is the on-disk shape of the user directory.
type UserCollection struct {
	Users      []User `json:"users" validate:"dive"`
	TotalCount int    `json:"totalCount"`
}
