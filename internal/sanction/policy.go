package sanction

import (
	"tribune/internal/user"
	dErrors "tribune/pkg/domain-errors"
)

// Pure permission decisions for the moderation hierarchy. Issuance is
// decentralized (moderators act daily) but revocation is centralized:
// undoing moderation is higher-risk and rarer, and the hierarchy must
// prevent peer-level retaliation.

// CanIssue decides whether an actor may sanction a target. Admins are
// immune; moderators are protected from everyone but admins.
func CanIssue(actor, target user.Role) error {
	if !actor.IsStaff() {
		return dErrors.New(dErrors.CodeForbidden, "only moderators and administrators can apply sanctions")
	}
	if target == user.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "administrators cannot be sanctioned")
	}
	if target == user.RoleModerator && actor != user.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only administrators can sanction moderators")
	}
	return nil
}

// CanRevoke decides whether an actor may revoke sanctions. Admin only,
// regardless of who issued the sanction or who the target is.
func CanRevoke(actor user.Role) error {
	if actor != user.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only administrators can revoke sanctions")
	}
	return nil
}
