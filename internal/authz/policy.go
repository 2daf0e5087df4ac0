// Package authz is the single authorization choke point. Every use case asks
// this policy instead of comparing role strings at call sites.
package authz

import "civicpulse/pkg/domain"

// Action is a permission-gated operation.
type Action string

const (
	ActionSubmitReport   Action = "submit_report"
	ActionVote           Action = "vote"
	ActionChangeStatus   Action = "change_status"
	ActionViewAdminQueue Action = "view_admin_queue"
)

// Allows reports whether an identity with the given role may perform action.
// Pure function, no side effects.
//
// Any authenticated role may submit and vote; status changes and the admin
// queue require moderator or above. The empty role (anonymous) and unknown
// roles are denied everything.
func Allows(role domain.Role, action Action) bool {
	if !role.IsValid() {
		return false
	}
	switch action {
	case ActionSubmitReport, ActionVote:
		return true
	case ActionChangeStatus, ActionViewAdminQueue:
		return role.AtLeast(domain.RoleModerator)
	default:
		return false
	}
}
