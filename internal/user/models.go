// Package user holds the account model and the store contract the
// moderation core needs from the wider platform.
package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. The hierarchy is
// admin > moderator > user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role carries any moderation privileges.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// ModerationFlags is the per-account projection of the active sanction set.
// It is a cache: every field must be re-derivable from the user's currently
// active sanctions (see sanction.ReconcileFromActiveSet).
type ModerationFlags struct {
	IsBanned      bool       `json:"is_banned"`
	BannedAt      *time.Time `json:"banned_at,omitempty"`
	BannedBy      *uuid.UUID `json:"banned_by,omitempty"`
	BanReason     string     `json:"ban_reason,omitempty"`
	IsSilenced    bool       `json:"is_silenced"`
	SilencedUntil *time.Time `json:"silenced_until,omitempty"`
	WarningsCount int        `json:"warnings_count"`
	LastWarningAt *time.Time `json:"last_warning_at,omitempty"`
}

// User is the subset of the account record relevant to moderation.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Role     Role      `json:"role"`

	Flags ModerationFlags `json:"flags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
