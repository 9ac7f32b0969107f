package domain

import "time"

// Role is the application-level role stored on a profile.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleEditor     Role = "editor"
	RoleAuthor     Role = "author"
	RoleReader     Role = "reader"
)

// DefaultSignUpRole is attached to every self-service registration.
const DefaultSignUpRole = RoleAuthor

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleEditor, RoleAuthor, RoleReader:
		return true
	}
	return false
}

// Profile is the application user record kept in the provider's profiles table.
type Profile struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Avatar   string    `json:"avatar,omitempty"`
	Bio      string    `json:"bio,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	IsActive bool      `json:"is_active"`
}

// Permissions are the capability flags derived from a profile's role.
type Permissions struct {
	CanEdit     bool `json:"can_edit"`
	CanModerate bool `json:"can_moderate"`
	CanAdmin    bool `json:"can_admin"`
}

// PermissionsFor derives the flags for p. A nil profile grants nothing.
func PermissionsFor(p *Profile) Permissions {
	if p == nil {
		return Permissions{}
	}
	staff := p.Role == RoleSuperAdmin || p.Role == RoleEditor
	return Permissions{
		CanEdit:     staff,
		CanModerate: staff,
		CanAdmin:    p.Role == RoleSuperAdmin,
	}
}

// SignUpMetadata is attached to the provider account on registration. The
// profile row is created from it by a trigger on the provider side.
type SignUpMetadata struct {
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role"`
}

// RegisterResult is returned to registration callers instead of an error.
type RegisterResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
