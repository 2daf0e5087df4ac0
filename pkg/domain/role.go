package domain

import dErrors "civicpulse/pkg/domain-errors"

// Role identifies the permission tier of an identity.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

// Supported roles, ordered citizen < moderator < admin.
const (
	RoleCitizen   Role = "citizen"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// roleOrder is the single source of truth for valid roles and their ranking.
var roleOrder = map[Role]int{
	RoleCitizen:   1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ParseRole constructs a Role from external input (JWT claims, DB rows).
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	_, ok := roleOrder[r]
	return ok
}

// AtLeast reports whether this role ranks at or above other.
// Unknown roles rank below every known role.
func (r Role) AtLeast(other Role) bool {
	ro, ok := roleOrder[r]
	if !ok {
		return false
	}
	oo, ok := roleOrder[other]
	if !ok {
		return true
	}
	return ro >= oo
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
