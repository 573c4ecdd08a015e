// Package sanction implements the moderation sanction lifecycle: issuing
// disciplinary actions, reversing them, expiring them on a schedule, and
// keeping each user's derived account flags consistent with their active
// sanction set.
package sanction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the closed set of sanction categories.
type Kind string

const (
	KindWarning        Kind = "warning"
	KindSilence        Kind = "silence"
	KindRestriction    Kind = "restriction"
	KindTempSuspension Kind = "temp_suspension"
	KindPermanentBan   Kind = "permanent_ban"
	KindIPBan          Kind = "ip_ban"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindWarning, KindSilence, KindRestriction, KindTempSuspension, KindPermanentBan, KindIPBan:
		return true
	}
	return false
}

// IsBan reports whether the kind projects onto the user's ban flags.
func (k Kind) IsBan() bool {
	return k == KindTempSuspension || k == KindPermanentBan
}

// ProjectsFlags reports whether an expiring sanction of this kind requires
// the owning user's account flags to be reconciled. Warnings are permanent
// counters and bans of kind permanent_ban never expire, so neither needs
// time-based reconciliation.
func (k Kind) ProjectsFlags() bool {
	return k == KindTempSuspension || k == KindSilence || k == KindRestriction
}

// Severity is a coarse impact rating attached to every sanction.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether the severity is one of the known values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// DefaultSeverity is the total mapping from kind to its default severity,
// used when the issuing moderator gives no explicit override.
func DefaultSeverity(k Kind) Severity {
	switch k {
	case KindWarning:
		return SeverityLow
	case KindSilence:
		return SeverityMedium
	case KindRestriction:
		return SeverityMedium
	case KindTempSuspension:
		return SeverityHigh
	case KindPermanentBan:
		return SeverityCritical
	case KindIPBan:
		return SeverityCritical
	}
	// Unreachable for valid kinds; callers validate before defaulting.
	return SeverityLow
}

// Sanction is one disciplinary action issued against a user. Once inactive
// it is immutable except for its own revocation metadata, and is retained
// indefinitely as an audit record.
type Sanction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ModeratorID uuid.UUID `json:"moderator_id"`
	Kind        Kind      `json:"kind"`
	Reason      string    `json:"reason"`

	// DurationHours is nil for sanctions issued without a duration.
	DurationHours *int `json:"duration_hours,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	// ExpiresAt is nil iff the sanction is permanent.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	IsActive    bool           `json:"is_active"`
	Severity    Severity       `json:"severity"`
	IsAutomatic bool           `json:"is_automatic"`
	Evidence    map[string]any `json:"evidence,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Revocation triple: populated together or not at all.
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	RevokedBy    *uuid.UUID `json:"revoked_by,omitempty"`
	RevokeReason string     `json:"revoke_reason,omitempty"`
}

// IsPermanent reports whether the sanction never expires on its own.
func (s *Sanction) IsPermanent() bool {
	return s.ExpiresAt == nil
}

// IsExpiredAt reports whether the sanction's expiry has passed at t.
func (s *Sanction) IsExpiredAt(t time.Time) bool {
	return s.ExpiresAt != nil && !t.Before(*s.ExpiresAt)
}

// IsInForceAt reports whether the sanction is currently binding: active and
// not yet time-expired.
func (s *Sanction) IsInForceAt(t time.Time) bool {
	return s.IsActive && !s.IsExpiredAt(t)
}

// IsRevoked reports whether the sanction was explicitly lifted.
func (s *Sanction) IsRevoked() bool {
	return s.RevokedAt != nil
}

// DurationString renders the sanction's duration for display: "permanent"
// when no duration was set, otherwise hours or whole days.
func (s *Sanction) DurationString() string {
	if s.DurationHours == nil {
		return "permanent"
	}
	h := *s.DurationHours
	if h >= 24 && h%24 == 0 {
		days := h / 24
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}

// Remaining is a breakdown of the time left on a temporary sanction.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// RemainingAt returns the remaining-time breakdown at t, or nil when the
// sanction is permanent, already expired, or no longer active.
func (s *Sanction) RemainingAt(t time.Time) *Remaining {
	if s.ExpiresAt == nil || !s.IsInForceAt(t) {
		return nil
	}
	left := s.ExpiresAt.Sub(t)
	if left <= 0 {
		return nil
	}
	return &Remaining{
		Days:    int(left.Hours()) / 24,
		Hours:   int(left.Hours()) % 24,
		Minutes: int(left.Minutes()) % 60,
	}
}

// View is a sanction decorated with display fields for query responses.
type View struct {
	Sanction
	Duration  string     `json:"duration"`
	Remaining *Remaining `json:"remaining,omitempty"`
}

// NewView builds the display form of a sanction at time t.
func NewView(s Sanction, t time.Time) View {
	return View{
		Sanction:  s,
		Duration:  s.DurationString(),
		Remaining: s.RemainingAt(t),
	}
}
