package models

import (
	"strings"
	"time"

	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
)

// User is an authenticated identity. Registration is owned by an external
// collaborator; this core only reads users and increments their points.
type User struct {
	ID          domain.UserID `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name,omitempty"`
	Role        domain.Role   `json:"role"`
	Points      int           `json:"points"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewUser constructs a User and validates its invariants.
func NewUser(id domain.UserID, email string, role domain.Role, now time.Time) (*User, error) {
	email = strings.TrimSpace(email)
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return &User{
		ID:        id,
		Email:     email,
		Role:      role,
		Points:    0,
		CreatedAt: now,
	}, nil
}
